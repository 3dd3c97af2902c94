package pool

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/utkarsh5026/threadpool/internal/cpu"
)

var (
	// ErrInvalidThreadCount is returned by New for a non-positive thread count.
	ErrInvalidThreadCount = errors.New("thread count must be positive")

	// ErrPoolStopped is returned when submitting to, or stopping, a pool that
	// has already been stopped.
	ErrPoolStopped = errors.New("thread pool is stopped")

	// ErrShutdownTimeout is returned by StopTimeout when the workers did not
	// finish in time. They keep draining in the background.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrTaskPanicked wraps the error delivered for a task that panicked.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrNilTask is returned when a nil function is submitted.
	ErrNilTask = errors.New("task function is nil")

	// ErrAffinity wraps CPU pinning failures during construction.
	ErrAffinity = cpu.ErrAffinity
)

// panicError converts a recovered panic value into an error carrying the
// stack of the panicking goroutine.
func panicError(r any) error {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return fmt.Errorf("%w: %v\nstack trace:\n%s", ErrTaskPanicked, r, buf[:n])
}
