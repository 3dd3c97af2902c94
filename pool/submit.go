package pool

// Submit queues fn and returns a Future for its result. Arguments are bound
// by capturing them in the closure:
//
//	f, err := pool.Submit(p, func() (int, error) {
//	    return strconv.Atoi(s)
//	})
//	n, err := f.Get()
//
// Submit never waits for a worker. It returns ErrPoolStopped once Stop has
// been called and ErrNilTask for a nil fn. A panic inside fn is delivered
// through the Future as an error wrapping ErrTaskPanicked.
func Submit[R any](p *ThreadPool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	var fut *Future[R]
	err := p.enqueue(func(id uint64) workItem {
		fut = newFuture[R](id)
		return newWorkItem(p.conf.discipline, id, fn, fut)
	})
	if err != nil {
		return nil, err
	}
	return fut, nil
}

// SubmitFunc is Submit for functions that cannot fail.
func SubmitFunc[R any](p *ThreadPool, fn func() R) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (R, error) {
		return fn(), nil
	})
}

// Exec queues fn, which produces no value, and returns a Future that
// resolves to fn's error.
func (p *ThreadPool) Exec(fn func() error) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

// Go queues fn without allocating a Future. Nobody can observe the outcome:
// a panic in fn is recovered, counted in Stats.Failed and logged, but never
// returned to the caller. Use Exec when a failure must be seen.
func (p *ThreadPool) Go(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	return p.enqueue(func(id uint64) workItem {
		return newWorkItem[struct{}](p.conf.discipline, id, func() (struct{}, error) {
			fn()
			return struct{}{}, nil
		}, nil)
	})
}
