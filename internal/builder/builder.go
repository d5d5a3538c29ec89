package builder

import (
	"iter"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gammazero/deque"
)

const (
	ErrTypeTaskPanic     = "build-task-panic"
	ErrTypeTaskCancelled = "build-task-cancelled"
	ErrTypeStopped       = "builder-stopped"
)

// tasksPerWorker is how many tasks may wait in the queue per worker before
// the scheduling budget drops to zero.
const tasksPerWorker = 2

// Builder runs build tasks on a fixed set of worker goroutines.
//
// Tasks scheduled with Schedule are urgent: they run before deferred ones and
// their result is only available through the returned Future. Results of
// deferred tasks are queued and collected with AsyncResults.
type Builder struct {
	mu   sync.Mutex
	cond *sync.Cond

	urgent   deque.Deque[*Future]
	deferred deque.Deque[*Future]
	results  deque.Deque[*Result]

	running int
	workers int
	stopped bool

	wg sync.WaitGroup
}

// New starts a builder with the given number of workers (at least one).
func New(workers int) *Builder {
	workers = max(workers, 1)

	b := &Builder{workers: workers}
	b.cond = sync.NewCond(&b.mu)

	b.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go b.worker()
	}

	logs.WithTag("workers", workers).Debug("chunk builder started")
	return b
}

// Workers returns the number of worker goroutines.
func (b *Builder) Workers() int {
	return b.workers
}

// Schedule queues an urgent task.
func (b *Builder) Schedule(task Task) *Future {
	return b.enqueue(task, false)
}

// ScheduleDeferred queues a task whose result is delivered through
// AsyncResults.
func (b *Builder) ScheduleDeferred(task Task) *Future {
	return b.enqueue(task, true)
}

func (b *Builder) enqueue(task Task, deferred bool) *Future {
	f := newFuture(task, deferred)

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		f.complete(nil, errors.New("builder is stopped").WithType(ErrTypeStopped))
		return f
	}
	if deferred {
		b.deferred.PushBack(f)
	} else {
		b.urgent.PushBack(f)
	}
	queued := b.urgent.Len() + b.deferred.Len()
	b.mu.Unlock()

	instrumentQueueDepth(queued)
	b.cond.Signal()
	return f
}

func (b *Builder) worker() {
	defer b.wg.Done()

	for {
		b.mu.Lock()
		for !b.stopped && b.urgent.Len() == 0 && b.deferred.Len() == 0 {
			b.cond.Wait()
		}
		if b.stopped {
			b.mu.Unlock()
			return
		}
		f := b.popLocked()
		b.mu.Unlock()

		b.run(f)
	}
}

// popLocked takes the next task and counts it as running.
func (b *Builder) popLocked() *Future {
	var f *Future
	if b.urgent.Len() > 0 {
		f = b.urgent.PopFront()
	} else {
		f = b.deferred.PopFront()
	}
	b.running++
	instrumentQueueDepth(b.urgent.Len() + b.deferred.Len())
	return f
}

// run executes a popped task and settles its future. Deferred results are
// queued before the task stops counting as running, so IsIdle never reports
// true while a result is still in flight.
func (b *Builder) run(f *Future) {
	res, err := b.execute(f)

	var delivered *Result
	if res != nil && f.deferred {
		delivered = res
		res = nil
	}

	b.mu.Lock()
	if delivered != nil {
		b.results.PushBack(delivered)
	}
	b.running--
	b.mu.Unlock()

	f.complete(res, err)
}

func (b *Builder) execute(f *Future) (res *Result, err error) {
	if f.IsCancelled() {
		instrumentTask(taskOutcomeCancelled, 0)
		return nil, errors.New("build task cancelled").WithType(ErrTypeTaskCancelled)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.New("build task panicked").
				WithType(ErrTypeTaskPanic).
				WithTag("panic", r)
			logs.Error(err)
			instrumentTask(taskOutcomeFailed, time.Since(start))
		}
	}()

	res, err = f.task.Execute(f.ctx)
	switch {
	case err != nil:
		if res != nil {
			res.Release()
			res = nil
		}
		if f.IsCancelled() {
			instrumentTask(taskOutcomeCancelled, time.Since(start))
		} else {
			instrumentTask(taskOutcomeFailed, time.Since(start))
		}
		return nil, err

	case f.IsCancelled():
		if res != nil {
			res.Release()
		}
		instrumentTask(taskOutcomeCancelled, time.Since(start))
		return nil, errors.New("build task cancelled").WithType(ErrTypeTaskCancelled)
	}

	instrumentTask(taskOutcomeCompleted, time.Since(start))
	return res, nil
}

// AsyncResults drains the results of deferred tasks that are ready now.
func (b *Builder) AsyncResults() iter.Seq[*Result] {
	return func(yield func(*Result) bool) {
		for {
			b.mu.Lock()
			if b.results.Len() == 0 {
				b.mu.Unlock()
				return
			}
			r := b.results.PopFront()
			b.mu.Unlock()

			if !yield(r) {
				return
			}
		}
	}
}

// StealTask runs one queued task on the calling goroutine. It reports false
// when there was nothing to run.
func (b *Builder) StealTask() bool {
	b.mu.Lock()
	if b.stopped || (b.urgent.Len() == 0 && b.deferred.Len() == 0) {
		b.mu.Unlock()
		return false
	}
	f := b.popLocked()
	b.mu.Unlock()

	b.run(f)
	return true
}

// IsIdle reports whether no task is queued or running.
func (b *Builder) IsIdle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.urgent.Len() == 0 && b.deferred.Len() == 0 && b.running == 0
}

// SchedulingBudget returns how many more tasks should be queued this frame.
func (b *Builder) SchedulingBudget() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return max(b.workers*tasksPerWorker-(b.urgent.Len()+b.deferred.Len()), 0)
}

// QueueLen returns the number of tasks waiting for a worker.
func (b *Builder) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.urgent.Len() + b.deferred.Len()
}

// Shutdown stops the workers after their current task. Queued tasks are
// cancelled and pending results are released.
func (b *Builder) Shutdown() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true

	var abandoned []*Future
	for b.urgent.Len() > 0 {
		abandoned = append(abandoned, b.urgent.PopFront())
	}
	for b.deferred.Len() > 0 {
		abandoned = append(abandoned, b.deferred.PopFront())
	}
	b.mu.Unlock()

	b.cond.Broadcast()
	b.wg.Wait()

	for _, f := range abandoned {
		f.Cancel()
		f.complete(nil, errors.New("builder is stopped").WithType(ErrTypeStopped))
	}

	b.mu.Lock()
	for b.results.Len() > 0 {
		b.results.PopFront().Release()
	}
	b.mu.Unlock()

	instrumentQueueDepth(0)
	logs.Debug("chunk builder stopped")
}
