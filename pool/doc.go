// Package pool provides a fixed-size thread pool that runs heterogeneous
// functions and hands back a Future for each result.
//
// Every worker is a goroutine locked to its own OS thread for the pool's
// lifetime. Workers take tasks from one shared FIFO queue, so a single
// submitter's tasks start in the order they were submitted.
//
// # Basic Usage
//
//	p, err := pool.New(4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//
//	add := func(a, b int) int { return a + b }
//	f, _ := pool.SubmitFunc(p, func() int { return add(2, -5) })
//	sum, err := f.Get() // -3, nil
//
// # Submitting Work
//
// Go methods cannot have type parameters, so value-returning submissions are
// package-level functions:
//
//   - Submit(p, func() (R, error)): result and error
//   - SubmitFunc(p, func() R): result only
//   - p.Exec(func() error): error only
//   - p.Go(func()): fire-and-forget, no Future
//
// Arguments are bound by capturing them in the closure; capture a pointer to
// share a variable with the task.
//
// # Futures
//
// A Future is resolved exactly once by the worker that ran the task. Get
// blocks until then; GetWithContext and GetWithTimeout bound the wait;
// TryGet, IsReady and Done never block. Reading a resolved Future again
// returns the same value.
//
// # Execution Disciplines
//
//   - Eager (default): the queued item is the task closure itself.
//   - Deferred: the queued item is an unstarted lazy computation that the
//     worker forces.
//
// Both run each task exactly once on exactly one worker.
//
// # Stopping
//
// Stop drains: every task accepted before Stop runs to completion, then all
// worker threads exit and are joined. Submitting afterwards, or calling Stop
// again, returns ErrPoolStopped.
//
// # Error Handling
//
// A task's error, or a panic converted to an error wrapping ErrTaskPanicked,
// is delivered only through that task's Future. It never stops the worker or
// affects other tasks.
//
// # Configuration Options
//
//   - WithPinToCPU(true): pin worker i to core i mod NumCPU; failure aborts New
//   - WithDiscipline(d): Eager or Deferred
//   - WithIdleWait(initial, max), WithIdleJitter(f): idle re-check interval
//   - WithRateLimit(tasksPerSecond, burst): throttle task starts
//   - WithBeforeTaskStart(fn), WithOnTaskEnd(fn): lifecycle hooks
//   - WithLogger(l): *slog.Logger for lifecycle events
//   - WithMetrics(reg, name): Prometheus metrics
//   - WithClock(c): quartz clock, mostly for tests
package pool
