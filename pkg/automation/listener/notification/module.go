// Package notification provides end-of-run notification listeners.
package notification

import (
	"go.uber.org/fx"

	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

// Module provides the notifier and its listener adapter to Fx.
var Module = fx.Options(
	fx.Provide(NewLogNotifier),
	fx.Provide(fx.Annotate(
		NewNotifyingSessionListener,
		fx.As(new(listener.SessionExecutionListener)),
		fx.ResultTags(`group:"session_listeners"`),
	)),
)
