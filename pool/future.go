package pool

import (
	"context"
	"sync"
	"time"
)

// Future is the consumer half of a task's one-shot result channel.
//
// The worker that runs the task is the only producer and publishes exactly
// once. After that every read returns the stored value and error without
// blocking, from any number of goroutines.
type Future[R any] struct {
	id    uint64
	done  chan struct{}
	once  sync.Once
	value R
	err   error
}

func newFuture[R any](id uint64) *Future[R] {
	return &Future[R]{
		id:   id,
		done: make(chan struct{}),
	}
}

// resolve is the producer side. Only the first call has an effect; it
// reports whether this call published the outcome. Safe on a nil receiver,
// which stands for a fire-and-forget task.
func (f *Future[R]) resolve(value R, err error) bool {
	if f == nil {
		return false
	}

	published := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		published = true
		close(f.done)
	})
	return published
}

// ID returns the ID the pool assigned to the task at submission.
func (f *Future[R]) ID() uint64 {
	return f.id
}

// Get blocks until the task has finished and returns its result.
// A task that panicked yields an error wrapping ErrTaskPanicked.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext is like Get but gives up when ctx is done, returning
// ctx.Err(). Giving up does not cancel the task.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout is like Get but waits at most timeout, returning
// context.DeadlineExceeded when it expires.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// TryGet returns the result without blocking. ready is false while the task
// is still queued or running.
func (f *Future[R]) TryGet() (value R, err error, ready bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero R
		return zero, nil, false
	}
}

// Done returns a channel that is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result is available.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
