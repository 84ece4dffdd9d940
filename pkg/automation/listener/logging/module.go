// Package logging provides listeners that mirror session and stage lifecycle
// events into the engine log.
package logging

import (
	"go.uber.org/fx"

	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
)

// Module provides the logging listeners to Fx.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLoggingSessionListener,
		fx.As(new(listener.SessionExecutionListener)),
		fx.ResultTags(`group:"session_listeners"`),
	)),
	fx.Provide(fx.Annotate(
		NewLoggingStageListener,
		fx.As(new(listener.StageExecutionListener)),
		fx.ResultTags(`group:"stage_listeners"`),
	)),
)
