package fx

import (
	"go.uber.org/fx/fxevent"

	appLog "eventcal/internal/log"
)

// eventLogger routes fx's lifecycle events into the application log.
// Successful steps are debug noise; failures are errors.
type eventLogger struct{}

func (eventLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.Provided:
		if e.Err != nil {
			appLog.Error("fx: provide failed", e.Err, "constructor", e.ConstructorName)
			return
		}
		appLog.Debug("fx: provided", "constructor", e.ConstructorName, "types", e.OutputTypeNames)
	case *fxevent.Invoked:
		if e.Err != nil {
			appLog.Error("fx: invoke failed", e.Err, "function", e.FunctionName)
			return
		}
		appLog.Debug("fx: invoked", "function", e.FunctionName)
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			appLog.Error("fx: start hook failed", e.Err, "caller", e.CallerName)
		}
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			appLog.Error("fx: stop hook failed", e.Err, "caller", e.CallerName)
		}
	case *fxevent.Started:
		if e.Err != nil {
			appLog.Error("fx: start failed", e.Err)
			return
		}
		appLog.Debug("fx: started")
	case *fxevent.Stopped:
		if e.Err != nil {
			appLog.Error("fx: stop failed", e.Err)
		}
	case *fxevent.RollingBack:
		appLog.Error("fx: rolling back", e.StartErr)
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			appLog.Error("fx: logger init failed", e.Err)
		}
	}
}
