package builder

import (
	"context"
	"sync/atomic"
)

// Future is a handle on a scheduled task.
type Future struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool

	task     Task
	deferred bool

	done   chan struct{}
	result *Result
	err    error
}

func newFuture(task Task, deferred bool) *Future {
	ctx, cancel := context.WithCancel(context.Background())
	return &Future{
		ctx:      ctx,
		cancel:   cancel,
		task:     task,
		deferred: deferred,
		done:     make(chan struct{}),
	}
}

// Cancel asks the task to stop. A cancelled task never yields a result.
// Cancelling a finished future has no effect.
func (f *Future) Cancel() {
	f.cancelled.Store(true)
	f.cancel()
}

// IsCancelled reports whether Cancel was called.
func (f *Future) IsCancelled() bool {
	return f.cancelled.Load()
}

// Done is closed once the task finished, failed or was skipped.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) isDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the task outcome. It must only be called after Done is
// closed. Results of deferred tasks are delivered through
// Builder.AsyncResults instead and are always nil here.
func (f *Future) Result() (*Result, error) {
	return f.result, f.err
}

func (f *Future) complete(res *Result, err error) {
	f.result = res
	f.err = err
	f.cancel()
	close(f.done)
}
