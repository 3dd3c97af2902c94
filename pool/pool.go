package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/utkarsh5026/threadpool/internal/algorithms"
	"github.com/utkarsh5026/threadpool/internal/barrier"
	"github.com/utkarsh5026/threadpool/internal/metrics"
	"github.com/utkarsh5026/threadpool/internal/queue"
	"golang.org/x/sync/errgroup"
)

// ThreadPool is a fixed set of workers, each running on its own OS thread,
// that execute submitted tasks from a shared FIFO queue.
//
// The worker count is fixed at construction. Submission never blocks. Stop
// lets the workers finish every task accepted before it was called, then
// joins them; afterwards the pool rejects new work with ErrPoolStopped.
type ThreadPool struct {
	conf    *config
	workers []*worker
	queue   *queue.TaskQueue[workItem]

	// mu orders Submit's check-and-push against Stop's flag flip so no task
	// can be pushed after the workers have drained the queue.
	mu      sync.RWMutex
	running atomic.Bool

	wake    chan struct{} // notify one idle worker
	stopCh  chan struct{} // closed by Stop: notify all
	done    chan struct{} // closed when every worker has been joined
	startup *barrier.Barrier
	group   errgroup.Group

	startErrMu sync.Mutex
	startErrs  []error

	alive     atomic.Int32
	taskIDs   atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64

	backoff algorithms.Backoff
	clock   quartz.Clock
	logger  *slog.Logger
	metrics *metrics.Pool
}

// Stats is a point-in-time snapshot of a pool. Counts read from different
// workers are not taken atomically with one another.
type Stats struct {
	Workers   int
	Idle      int
	Running   int
	Alive     int
	Queued    int
	Submitted uint64
	Completed uint64
	Failed    uint64
}

// New starts a pool of threadCount workers and returns once every worker is
// running.
//
// With WithPinToCPU, a worker that cannot be pinned aborts construction: the
// other workers are stopped and joined, and the returned error wraps
// ErrAffinity.
//
// Example:
//
//	p, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//
//	sum, _ := pool.SubmitFunc(p, func() int { return 1 + 2 })
//	v, err := sum.Get()
func New(threadCount int, opts ...Option) (*ThreadPool, error) {
	if threadCount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreadCount, threadCount)
	}

	cfg := newConfig(opts...)

	p := &ThreadPool{
		conf:    cfg,
		queue:   queue.New[workItem](),
		wake:    make(chan struct{}, threadCount),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		startup: barrier.New(threadCount + 1),
		backoff: algorithms.NewBackoff(cfg.idleBackoff, cfg.idleInitial, cfg.idleMax, cfg.idleJitter),
		clock:   cfg.clock,
		logger:  cfg.logger,
	}
	if cfg.metricsEnabled {
		p.metrics = metrics.NewPool(cfg.metricsRegistry, cfg.metricsName)
	}

	p.running.Store(true)
	p.metrics.Start(threadCount)

	p.workers = make([]*worker, threadCount)
	for i := range threadCount {
		w := newWorker(i, p)
		p.workers[i] = w
		p.group.Go(w.run)
	}

	go func() {
		_ = p.group.Wait()
		close(p.done)
	}()

	p.startup.ArriveAndWait()

	if err := p.startErr(); err != nil {
		p.shutdown()
		<-p.done
		return nil, err
	}

	p.logger.Debug("thread pool started",
		"workers", threadCount,
		"discipline", cfg.discipline.String(),
		"pinned", cfg.pinToCPU,
	)
	return p, nil
}

// enqueue assigns the next task ID, pushes the item built for it and wakes
// one idle worker. It never blocks on the workers.
func (p *ThreadPool) enqueue(build func(id uint64) workItem) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running.Load() {
		return ErrPoolStopped
	}

	id := p.taskIDs.Add(1)
	item := build(id)

	p.metrics.Submit()
	p.queue.Push(item)
	signal(p.wake)
	return nil
}

// Stop stops accepting tasks, lets the workers finish everything already
// queued, and blocks until all worker threads have exited.
//
// Only the first call stops the pool; later calls return ErrPoolStopped
// immediately.
func (p *ThreadPool) Stop() error {
	return p.StopTimeout(0)
}

// StopTimeout is Stop with a bound on the wait. If the workers have not all
// exited after timeout it returns ErrShutdownTimeout; they keep draining in
// the background. A non-positive timeout waits forever.
func (p *ThreadPool) StopTimeout(timeout time.Duration) error {
	if !p.shutdown() {
		return ErrPoolStopped
	}

	if err := waitUntil(p.done, timeout); err != nil {
		p.logger.Warn("thread pool stop timed out", "timeout", timeout, "queued", p.queue.Len())
		return err
	}

	p.logger.Debug("thread pool stopped", "completed", p.completed.Load())
	return nil
}

// shutdown clears the run flag and wakes every worker. It reports whether
// this call was the one that stopped the pool.
func (p *ThreadPool) shutdown() bool {
	p.mu.Lock()
	stopped := p.running.CompareAndSwap(true, false)
	p.mu.Unlock()

	if stopped {
		close(p.stopCh)
	}
	return stopped
}

// Done returns a channel that is closed once every worker has been joined.
func (p *ThreadPool) Done() <-chan struct{} {
	return p.done
}

// Size returns the number of workers the pool was created with.
func (p *ThreadPool) Size() int {
	return len(p.workers)
}

// IdleCount returns how many workers are waiting for work.
func (p *ThreadPool) IdleCount() int {
	return p.countState(stateIdle)
}

// RunningCount returns how many workers are executing a task.
// IdleCount()+RunningCount() equals Size() whenever the pool is quiescent and
// not stopped.
func (p *ThreadPool) RunningCount() int {
	return p.countState(stateRunning)
}

// QueueLen returns the number of tasks waiting to be picked up.
func (p *ThreadPool) QueueLen() int {
	return p.queue.Len()
}

// Stats returns a snapshot of the pool's counters.
func (p *ThreadPool) Stats() Stats {
	s := Stats{
		Workers:   len(p.workers),
		Alive:     int(p.alive.Load()),
		Queued:    p.queue.Len(),
		Submitted: p.taskIDs.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
	for _, w := range p.workers {
		switch w.loadState() {
		case stateIdle:
			s.Idle++
		case stateRunning:
			s.Running++
		}
	}
	return s
}

func (p *ThreadPool) countState(s workerState) int {
	n := 0
	for _, w := range p.workers {
		if w.loadState() == s {
			n++
		}
	}
	return n
}

func (p *ThreadPool) recordStartErr(err error) {
	p.startErrMu.Lock()
	p.startErrs = append(p.startErrs, err)
	p.startErrMu.Unlock()
}

func (p *ThreadPool) startErr() error {
	p.startErrMu.Lock()
	defer p.startErrMu.Unlock()
	return errors.Join(p.startErrs...)
}
