package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/utkarsh5026/threadpool/internal/cpu"
)

// pinThread binds the calling OS thread to a core. Tests replace it to
// simulate pinning failures.
var pinThread = cpu.PinCurrentThread

type workerState int32

const (
	stateIdle workerState = iota
	stateRunning
	stateStopped
)

func (s workerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// worker owns one OS thread for its whole life. Its state is written only by
// its own goroutine and read without locks by the accounting queries.
type worker struct {
	id    int
	pool  *ThreadPool
	state atomic.Int32
}

func newWorker(id int, p *ThreadPool) *worker {
	w := &worker{id: id, pool: p}
	w.setState(stateIdle)
	return w
}

func (w *worker) setState(s workerState) {
	w.state.Store(int32(s))
}

func (w *worker) loadState() workerState {
	return workerState(w.state.Load())
}

// run is the worker's goroutine. It locks the goroutine to its OS thread and
// never unlocks it, so the runtime destroys that thread when run returns.
func (w *worker) run() error {
	runtime.LockOSThread()

	p := w.pool
	p.alive.Add(1)
	defer p.alive.Add(-1)

	if p.conf.pinToCPU {
		core := cpu.CoreFor(w.id)
		if err := pinThread(core); err != nil {
			err = fmt.Errorf("worker %d: %w", w.id, err)
			p.recordStartErr(err)
			p.logger.Error("failed to pin worker", "worker", w.id, "core", core, "error", err)
			w.exit()
			p.startup.ArriveAndWait()
			return err
		}
	}

	p.startup.ArriveAndWait()
	p.logger.Debug("worker started", "worker", w.id)

	round := 0
	for p.running.Load() {
		if item, ok := p.queue.Pop(); ok {
			w.execute(item)
			round = 0
			continue
		}
		w.idleWait(round)
		round++
	}

	// Items accepted before Stop still run.
	drained := 0
	for {
		item, ok := p.queue.Pop()
		if !ok {
			break
		}
		w.execute(item)
		drained++
	}

	w.exit()
	p.logger.Debug("worker stopped", "worker", w.id, "drained", drained)
	return nil
}

func (w *worker) exit() {
	w.setState(stateStopped)
	w.pool.metrics.Stopped()
}

// idleWait blocks until a submission signals, the pool stops, or the idle
// timer fires. Any of the three just sends the worker back to re-check the
// queue and the run flag, so spurious wakeups are harmless.
func (w *worker) idleWait(round int) {
	p := w.pool
	timer := p.clock.NewTimer(p.backoff.NextDelay(round), "worker", "idle")
	defer timer.Stop()

	select {
	case <-p.wake:
	case <-p.stopCh:
	case <-timer.C:
	}
}

// execute runs one dequeued item. The item publishes its result before the
// worker goes back to idle.
func (w *worker) execute(item workItem) {
	p := w.pool
	w.setState(stateRunning)
	p.metrics.Begin()

	if p.conf.rateLimiter != nil {
		// Background: a draining pool still honours the limit.
		_ = p.conf.rateLimiter.Wait(context.Background())
	}

	info := TaskInfo{ID: item.ID(), WorkerID: w.id}
	if p.conf.beforeTaskStart != nil {
		p.conf.beforeTaskStart(info)
	}

	start := p.clock.Now()
	err := item.run()
	elapsed := p.clock.Since(start)

	if p.conf.onTaskEnd != nil {
		p.conf.onTaskEnd(info, err)
	}

	panicked := errors.Is(err, ErrTaskPanicked)
	p.completed.Add(1)
	if err != nil {
		p.failed.Add(1)
		if item.detached() {
			p.logger.Warn("fire-and-forget task failed", "task", info.ID, "worker", w.id, "error", err)
		} else {
			p.logger.Debug("task failed", "task", info.ID, "worker", w.id, "error", err)
		}
	}
	p.metrics.End(elapsed, err, panicked)

	w.setState(stateIdle)
}
