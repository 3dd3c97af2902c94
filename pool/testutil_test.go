package pool

import (
	"context"
	"errors"
	"testing"
	"time"
)

// disciplineConfig defines a test configuration for an execution discipline
type disciplineConfig struct {
	name string
	opts []Option
}

// getAllDisciplines returns every execution discipline to test
func getAllDisciplines() []disciplineConfig {
	return []disciplineConfig{
		{
			name: "Eager",
			opts: []Option{WithDiscipline(Eager)},
		},
		{
			name: "Deferred",
			opts: []Option{WithDiscipline(Deferred)},
		},
	}
}

// runDisciplineTest runs testFunc once per discipline, each with a fresh
// pool of workerCount workers that is stopped when the subtest ends.
func runDisciplineTest(t *testing.T, workerCount int, testFunc func(t *testing.T, p *ThreadPool), additionalOpts ...Option) {
	t.Helper()

	for _, d := range getAllDisciplines() {
		t.Run(d.name, func(t *testing.T) {
			opts := append(append([]Option{}, d.opts...), additionalOpts...)
			p := newTestPool(t, workerCount, opts...)
			testFunc(t, p)
		})
	}
}

// newTestPool creates a pool with a short idle wait and stops it on cleanup
// unless the test already did.
func newTestPool(t *testing.T, workerCount int, opts ...Option) *ThreadPool {
	t.Helper()

	opts = append([]Option{WithIdleWait(5*time.Millisecond, 5*time.Millisecond)}, opts...)
	p, err := New(workerCount, opts...)
	if err != nil {
		t.Fatalf("New(%d): %v", workerCount, err)
	}

	t.Cleanup(func() {
		_ = p.StopTimeout(5 * time.Second)
	})
	return p
}

// waitQuiescent polls until the queue is empty and no worker is running.
func waitQuiescent(t *testing.T, p *ThreadPool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.QueueLen() == 0 && p.RunningCount() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("pool not quiescent after %v: queued=%d running=%d", timeout, p.QueueLen(), p.RunningCount())
}

// mustGet reads a future with a timeout so a lost task fails the test instead
// of hanging it.
func mustGet[R any](t *testing.T, f *Future[R]) (R, error) {
	t.Helper()

	v, err := f.GetWithTimeout(5 * time.Second)
	if errors.Is(err, context.DeadlineExceeded) && !f.IsReady() {
		t.Fatalf("future %d not resolved in time", f.ID())
	}
	return v, err
}
