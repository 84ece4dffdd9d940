package listener

import (
	"go.uber.org/fx"

	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
)

// NewStatePublisherProvider builds the state publisher from the automation
// configuration and ties its shutdown to the Fx lifecycle.
func NewStatePublisherProvider(lc fx.Lifecycle, cfg *config.AutomationConfig) *StatePublisher {
	publisher := NewStatePublisher(cfg.ObserverBufferSize)
	lc.Append(fx.StopHook(func() {
		publisher.Close()
	}))
	return publisher
}

// Module provides the state publisher to Fx.
var Module = fx.Options(
	fx.Provide(NewStatePublisherProvider),
)
