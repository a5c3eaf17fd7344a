package progress

import (
	"context"
	"time"
)

// Event is a one-way progress notification: no acknowledgement, no
// backpressure. Percentage runs 0-100 over the whole pipeline.
type Event struct {
	Stage      string    `json:"stage"`
	Message    string    `json:"message"`
	Percentage int       `json:"percentage"`
	Timestamp  time.Time `json:"timestamp"`
}

// Emitter receives progress events during a run.
type Emitter interface {
	Emit(ev Event)
}

// Func adapts a plain callback to an Emitter.
type Func func(ev Event)

func (f Func) Emit(ev Event) {
	if f != nil {
		f(ev)
	}
}

type emitterKey struct{}

// WithEmitter attaches an emitter to the context.
func WithEmitter(ctx context.Context, e Emitter) context.Context {
	return context.WithValue(ctx, emitterKey{}, e)
}

// EmitterFrom retrieves the emitter from context, or a no-op emitter.
func EmitterFrom(ctx context.Context) Emitter {
	if e, ok := ctx.Value(emitterKey{}).(Emitter); ok && e != nil {
		return e
	}
	return noop{}
}

// Emit builds an event with the current time and hands it to the context's
// emitter.
func Emit(ctx context.Context, stage, message string, percentage int) {
	EmitterFrom(ctx).Emit(Event{
		Stage:      stage,
		Message:    message,
		Percentage: percentage,
		Timestamp:  time.Now(),
	})
}

type noop struct{}

func (noop) Emit(Event) {}

// ChannelEmitter sends events to a channel without blocking; events are
// dropped when the receiver lags.
type ChannelEmitter struct {
	Ch chan<- Event
}

func (e *ChannelEmitter) Emit(ev Event) {
	select {
	case e.Ch <- ev:
	default:
	}
}

// Recorder collects events in order, for tests and the CLI summary.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(ev Event) { r.Events = append(r.Events, ev) }

// Stages returns the stage names in emission order.
func (r *Recorder) Stages() []string {
	out := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Stage)
	}
	return out
}
