package usecase

import (
	"time"

	"go.uber.org/fx"

	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	dispatch "github.com/creatorbridge/maestro/pkg/automation/core/dispatch"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
	preference "github.com/creatorbridge/maestro/pkg/automation/core/preference"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

// NewEngineProvider builds the bulk dispatch engine from the automation
// configuration.
func NewEngineProvider(cfg *config.AutomationConfig, recorder metrics.MetricRecorder) *dispatch.Engine {
	return dispatch.NewEngine(time.Duration(cfg.DispatchIntervalMs)*time.Millisecond, recorder)
}

// serviceParams collects the Fx-injected dependencies of the service,
// including the listener groups contributed by the listener modules.
type serviceParams struct {
	fx.In
	Repo             repository.SessionRepository
	Registry         *capability.Registry
	Resolver         *preference.Resolver
	Engine           *dispatch.Engine
	Publisher        *listener.StatePublisher
	SessionListeners []listener.SessionExecutionListener `group:"session_listeners"`
	StageListeners   []listener.StageExecutionListener   `group:"stage_listeners"`
	Recorder         metrics.MetricRecorder
	Tracer           metrics.Tracer
	Config           *config.AutomationConfig
}

// newAutomationServiceProvider adapts the Fx parameter struct to the service
// constructor.
func newAutomationServiceProvider(p serviceParams) *DefaultAutomationService {
	return NewDefaultAutomationService(ServiceDeps{
		Repo:             p.Repo,
		Registry:         p.Registry,
		Resolver:         p.Resolver,
		Engine:           p.Engine,
		Publisher:        p.Publisher,
		SessionListeners: p.SessionListeners,
		StageListeners:   p.StageListeners,
		Recorder:         p.Recorder,
		Tracer:           p.Tracer,
		Config:           p.Config,
	})
}

// Module provides the automation service and its supporting components to Fx.
var Module = fx.Options(
	fx.Provide(preference.NewResolver),
	fx.Provide(NewEngineProvider),
	fx.Provide(fx.Annotate(
		newAutomationServiceProvider,
		fx.As(new(AutomationService)),
	)),
)
