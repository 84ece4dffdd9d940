package logger

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// FxLogger adapts Fx lifecycle events to the package logger so that DI wiring
// noise shares the same level filtering as the rest of the engine.
type FxLogger struct{}

// NewFxLogger creates a new FxLogger.
func NewFxLogger() fxevent.Logger {
	return &FxLogger{}
}

// LogEvent routes Fx events to the appropriate log level.
func (l *FxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			Errorf("Fx: OnStart hook failed for %s: %v", e.FunctionName, e.Err)
		}
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			Errorf("Fx: OnStop hook failed for %s: %v", e.FunctionName, e.Err)
		}
	case *fxevent.Provided:
		if e.Err != nil {
			Errorf("Fx: failed to provide %v: %v", e.OutputTypeNames, e.Err)
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			Errorf("Fx: invoke of %s failed: %v", e.FunctionName, e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			Errorf("Fx: application start failed: %v", e.Err)
		} else {
			Debugf("Fx: application started.")
		}
	case *fxevent.Stopped:
		if e.Err != nil {
			Errorf("Fx: application stop failed: %v", e.Err)
		}
	default:
		// Remaining events are wiring chatter; keep them at DEBUG.
	}
}

// Module provides the Fx event logger.
var Module = fx.Options(
	fx.WithLogger(NewFxLogger),
)
