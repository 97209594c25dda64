package events

import "context"

var Emit = func(ctx context.Context, evt ChatEvent) {
	logEvent(stamp(ctx, evt))
}

// SetCustomEmitter routes events to f in addition to the debug log. Passing
// nil restores logging only.
func SetCustomEmitter(f func(ctx context.Context, evt ChatEvent)) {
	if f == nil {
		Emit = func(ctx context.Context, evt ChatEvent) {
			logEvent(stamp(ctx, evt))
		}
		return
	}
	Emit = func(ctx context.Context, evt ChatEvent) {
		evt = stamp(ctx, evt)
		logEvent(evt)
		f(ctx, evt)
	}
}

func stamp(ctx context.Context, evt ChatEvent) ChatEvent {
	if evt.RequestID == "" {
		evt.RequestID = RequestFromContext(ctx)
	}
	return evt
}
