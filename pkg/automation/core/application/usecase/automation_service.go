package usecase

import (
	"context"
	"errors"
	"sync"

	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	dispatch "github.com/creatorbridge/maestro/pkg/automation/core/dispatch"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	repository "github.com/creatorbridge/maestro/pkg/automation/core/domain/repository"
	metrics "github.com/creatorbridge/maestro/pkg/automation/core/metrics"
	pipeline "github.com/creatorbridge/maestro/pkg/automation/core/pipeline"
	preference "github.com/creatorbridge/maestro/pkg/automation/core/preference"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
	exception "github.com/creatorbridge/maestro/pkg/automation/support/util/exception"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

const moduleName = "automation_service"

// activeRun tracks one in-flight session's controller and completion signal.
type activeRun struct {
	controller *pipeline.Controller
	done       chan struct{}
}

// DefaultAutomationService is the default implementation of AutomationService.
// Each started session runs as its own goroutine; the service keeps a registry
// of active controllers so cancel, advance and preference calls can reach them.
type DefaultAutomationService struct {
	repo      repository.SessionRepository
	registry  *capability.Registry
	resolver  *preference.Resolver
	engine    *dispatch.Engine
	publisher *listener.StatePublisher

	sessionListeners []listener.SessionExecutionListener
	stageListeners   []listener.StageExecutionListener
	recorder         metrics.MetricRecorder
	tracer           metrics.Tracer
	cfg              *config.AutomationConfig

	mu     sync.Mutex
	active map[string]*activeRun
}

var _ AutomationService = (*DefaultAutomationService)(nil)

// ServiceDeps bundles the collaborators of the automation service.
type ServiceDeps struct {
	Repo             repository.SessionRepository
	Registry         *capability.Registry
	Resolver         *preference.Resolver
	Engine           *dispatch.Engine
	Publisher        *listener.StatePublisher
	SessionListeners []listener.SessionExecutionListener
	StageListeners   []listener.StageExecutionListener
	Recorder         metrics.MetricRecorder
	Tracer           metrics.Tracer
	Config           *config.AutomationConfig
}

// NewDefaultAutomationService creates a new DefaultAutomationService.
func NewDefaultAutomationService(deps ServiceDeps) *DefaultAutomationService {
	return &DefaultAutomationService{
		repo:             deps.Repo,
		registry:         deps.Registry,
		resolver:         deps.Resolver,
		engine:           deps.Engine,
		publisher:        deps.Publisher,
		sessionListeners: deps.SessionListeners,
		stageListeners:   deps.StageListeners,
		recorder:         deps.Recorder,
		tracer:           deps.Tracer,
		cfg:              deps.Config,
		active:           make(map[string]*activeRun),
	}
}

// StartAutomation validates the request, atomically claims the campaign and
// launches the pipeline in its own goroutine.
func (s *DefaultAutomationService) StartAutomation(ctx context.Context, campaignID, userID string, mode model.SessionMode, observer listener.StateObserver) (string, error) {
	if campaignID == "" {
		return "", exception.Newf(moduleName, exception.KindConfig, "campaignID must not be empty")
	}
	if userID == "" {
		return "", exception.Newf(moduleName, exception.KindConfig, "userID must not be empty")
	}
	if _, err := model.ParseSessionMode(string(mode)); err != nil {
		return "", exception.New(moduleName, "invalid session mode", err, exception.KindConfig)
	}

	session := model.NewAutomationSession(campaignID, userID, mode)

	// Create-if-absent-else-reject claim keyed by campaignID.
	if err := s.repo.SaveSession(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionAlreadyRunning) {
			return "", exception.New(moduleName, "campaign already has a running session", err, exception.KindConflict)
		}
		return "", exception.New(moduleName, "failed to persist new session", err, exception.KindFatal)
	}

	if observer != nil && s.publisher != nil {
		s.publisher.Subscribe(forSession(session.ID, observer))
	}

	controller := pipeline.NewController(session, pipeline.ControllerDeps{
		Repo:             s.repo,
		Registry:         s.registry,
		Resolver:         s.resolver,
		Engine:           s.engine,
		Publisher:        s.publisher,
		SessionListeners: s.sessionListeners,
		StageListeners:   s.stageListeners,
		Recorder:         s.recorder,
		Tracer:           s.tracer,
		Config:           s.cfg,
	})

	run := &activeRun{controller: controller, done: make(chan struct{})}
	s.mu.Lock()
	s.active[session.ID] = run
	s.mu.Unlock()

	logger.Infof("Starting automation session '%s' for campaign '%s' (mode: %s).", session.ID, campaignID, mode)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.active, session.ID)
			s.mu.Unlock()
			close(run.done)
		}()
		// The run carries its own context; the caller's may end long before
		// the session does.
		if err := controller.Run(context.Background()); err != nil {
			logger.Errorf("Automation session '%s' failed: %v", session.ID, err)
		}
	}()

	return session.ID, nil
}

// CancelAutomation requests cooperative cancellation of a running session.
func (s *DefaultAutomationService) CancelAutomation(ctx context.Context, sessionID string) error {
	run, ok := s.lookup(sessionID)
	if !ok {
		session, err := s.repo.FindSessionByID(ctx, sessionID)
		if err != nil {
			return exception.New(moduleName, "cannot cancel unknown session", err, exception.KindConfig)
		}
		if session.Status.IsTerminal() {
			logger.Warnf("Session '%s' is already terminal (%s); cancel is a no-op.", sessionID, session.Status)
			return nil
		}
		return exception.Newf(moduleName, exception.KindFatal, "session '%s' is not registered with this process", sessionID)
	}
	run.controller.Cancel()
	return nil
}

// AdvanceManualStage releases a halted MANUAL session. A session that is not
// halted ignores the call.
func (s *DefaultAutomationService) AdvanceManualStage(ctx context.Context, sessionID string) error {
	run, ok := s.lookup(sessionID)
	if !ok {
		return exception.Newf(moduleName, exception.KindConfig, "no active session '%s'", sessionID)
	}
	run.controller.AdvanceManual()
	return nil
}

// SetCreatorPreferences merges contact preferences into a running session.
func (s *DefaultAutomationService) SetCreatorPreferences(ctx context.Context, sessionID string, prefs []model.CreatorContactPreference) error {
	run, ok := s.lookup(sessionID)
	if !ok {
		return exception.Newf(moduleName, exception.KindConfig, "no active session '%s'", sessionID)
	}
	run.controller.ApplyPreferences(prefs)
	return nil
}

// GetAutomationStatus loads the current session record from the audit store.
func (s *DefaultAutomationService) GetAutomationStatus(ctx context.Context, sessionID string) (*model.AutomationSession, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, exception.New(moduleName, "failed to load session", err, exception.KindFatal)
	}
	return session, nil
}

// ComputeReport derives the performance report from the latest session record.
func (s *DefaultAutomationService) ComputeReport(ctx context.Context, sessionID string) (*model.Report, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, exception.New(moduleName, "failed to load session for report", err, exception.KindFatal)
	}
	return model.ComputeReport(session), nil
}

// GetReport derives the performance report of a campaign's most recent
// session, whatever state that session is in.
func (s *DefaultAutomationService) GetReport(ctx context.Context, campaignID string) (*model.Report, error) {
	session, err := s.repo.FindLatestSessionByCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, exception.New(moduleName, "campaign has no sessions", err, exception.KindConfig)
		}
		return nil, exception.New(moduleName, "failed to load latest session for report", err, exception.KindFatal)
	}
	return model.ComputeReport(session), nil
}

// GetHistory lists all sessions for a campaign, most recent first.
func (s *DefaultAutomationService) GetHistory(ctx context.Context, campaignID string) ([]*model.AutomationSession, error) {
	sessions, err := s.repo.FindSessionsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, exception.New(moduleName, "failed to load session history", err, exception.KindFatal)
	}
	return sessions, nil
}

// AwaitCompletion blocks until the session goroutine finishes or the context
// ends. For sessions not active in this process it returns the stored record
// immediately.
func (s *DefaultAutomationService) AwaitCompletion(ctx context.Context, sessionID string) (*model.AutomationSession, error) {
	run, ok := s.lookup(sessionID)
	if ok {
		select {
		case <-run.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.GetAutomationStatus(ctx, sessionID)
}

func (s *DefaultAutomationService) lookup(sessionID string) (*activeRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.active[sessionID]
	return run, ok
}

// forSession filters publisher snapshots down to one session for a
// caller-supplied observer.
func forSession(sessionID string, observer listener.StateObserver) listener.StateObserver {
	return listener.StateObserverFunc(func(state *model.CampaignState) {
		if state.SessionID == sessionID {
			observer.OnStateChanged(state)
		}
	})
}
