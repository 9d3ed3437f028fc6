package layout

import (
	"context"
	"errors"
	"fmt"
)

type EventKind string

const (
	EventIterationCompleted EventKind = "iteration_completed"
	EventLayoutCanceled     EventKind = "layout_canceled"
	EventLayoutCompleted    EventKind = "layout_completed"
	// EventLayoutFailed ends a stream whose run stopped on an invariant
	// violation. Only Err is set.
	EventLayoutFailed EventKind = "layout_failed"
)

type Event struct {
	Kind   EventKind
	Result Result
	Err    error
}

// Observer receives run notifications on the goroutine executing the run. Nil
// callbacks are skipped. Exactly one of LayoutCanceled and LayoutCompleted
// fires per run, after the last IterationCompleted.
type Observer struct {
	IterationCompleted func(Result)
	LayoutCanceled     func(Result)
	LayoutCompleted    func(Result)
}

func (o Observer) notify(kind EventKind, result Result) {
	var fn func(Result)
	switch kind {
	case EventIterationCompleted:
		fn = o.IterationCompleted
	case EventLayoutCanceled:
		fn = o.LayoutCanceled
	case EventLayoutCompleted:
		fn = o.LayoutCompleted
	}
	if fn != nil {
		fn(result)
	}
}

// Stream runs the engine on a new goroutine and delivers every notification on
// the returned channel, which is closed once the run ends. A run stopped by an
// invariant violation ends with an EventLayoutFailed event. After ctx is
// canceled, events the consumer is not waiting for are dropped, so a consumer
// may cancel and stop reading without blocking the run.
func (e *Engine) Stream(ctx context.Context) <-chan Event {
	return stream(ctx, e.Run)
}

func stream(ctx context.Context, run func(context.Context, Observer) (Summary, error)) <-chan Event {
	if ctx == nil {
		ctx = context.Background()
	}
	events := make(chan Event)
	emit := func(event Event) {
		select {
		case events <- event:
		case <-ctx.Done():
			select {
			case events <- event:
			default:
			}
		}
	}
	send := func(kind EventKind) func(Result) {
		return func(r Result) { emit(Event{Kind: kind, Result: r}) }
	}
	go func() {
		defer close(events)
		_, err := run(ctx, Observer{
			IterationCompleted: send(EventIterationCompleted),
			LayoutCanceled:     send(EventLayoutCanceled),
			LayoutCompleted:    send(EventLayoutCompleted),
		})
		if err != nil {
			emit(Event{Kind: EventLayoutFailed, Err: err})
		}
	}()
	return events
}

// Job tracks a run that may execute in the background.
type Job struct {
	done    chan struct{}
	summary Summary
	err     error
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the run ends.
func (j *Job) Wait() (Summary, error) {
	<-j.done
	return j.summary, j.err
}

// Start runs the engine on its own goroutine.
func (e *Engine) Start(ctx context.Context, obs Observer) *Job {
	job := &Job{done: make(chan struct{})}
	go func() {
		defer close(job.done)
		job.summary, job.err = e.Run(ctx, obs)
	}()
	return job
}

// Execute honors Config.Background: it either starts the run in the background
// or runs it to completion before returning an already finished job.
func (e *Engine) Execute(ctx context.Context, obs Observer) *Job {
	if e.cfg.Background {
		return e.Start(ctx, obs)
	}
	job := &Job{done: make(chan struct{})}
	job.summary, job.err = e.Run(ctx, obs)
	close(job.done)
	return job
}

func recoverInvariant(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if violation, ok := r.(error); ok && errors.Is(violation, ErrInvariant) {
		*err = violation
		return
	}
	panic(r)
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}
