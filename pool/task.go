package pool

import "sync"

// workItem is the type-erased unit the queue stores. Whatever the callable's
// signature, the worker only ever sees a zero-argument run.
type workItem interface {
	// ID returns the task ID assigned at submission.
	ID() uint64

	// run executes the task and publishes its outcome to the task's future,
	// if it has one. The returned error is the task's own outcome and is only
	// used for hooks, metrics and logging.
	run() error

	// detached reports whether nobody holds a future for this task.
	detached() bool
}

// call invokes fn, turning a panic into an error wrapping ErrTaskPanicked.
func call[R any](fn func() (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn()
}

func newWorkItem[R any](d Discipline, id uint64, fn func() (R, error), fut *Future[R]) workItem {
	if d == Deferred {
		return newDeferredTask(id, fn, fut)
	}
	return newEagerTask(id, fn, fut)
}

// eagerTask is the closure itself: invoking fn publishes to the future.
type eagerTask struct {
	id     uint64
	noSink bool
	fn     func() error
}

func newEagerTask[R any](id uint64, fn func() (R, error), fut *Future[R]) *eagerTask {
	return &eagerTask{
		id:     id,
		noSink: fut == nil,
		fn: func() error {
			v, err := call(fn)
			fut.resolve(v, err)
			return err
		},
	}
}

func (t *eagerTask) ID() uint64     { return t.id }
func (t *eagerTask) run() error     { return t.fn() }
func (t *eagerTask) detached() bool { return t.noSink }

// lazy is a computation that does not start until it is forced, and runs at
// most once no matter how often it is forced.
type lazy[R any] struct {
	once  sync.Once
	fn    func() (R, error)
	value R
	err   error
}

func (l *lazy[R]) force() (R, error) {
	l.once.Do(func() {
		l.value, l.err = call(l.fn)
		l.fn = nil
	})
	return l.value, l.err
}

// deferredTask carries an unstarted lazy computation. The worker forces it
// and forwards the outcome to the submitter's future.
type deferredTask[R any] struct {
	id     uint64
	thunk  *lazy[R]
	future *Future[R]
}

func newDeferredTask[R any](id uint64, fn func() (R, error), fut *Future[R]) *deferredTask[R] {
	return &deferredTask[R]{
		id:     id,
		thunk:  &lazy[R]{fn: fn},
		future: fut,
	}
}

func (t *deferredTask[R]) ID() uint64 { return t.id }

func (t *deferredTask[R]) run() error {
	v, err := t.thunk.force()
	t.future.resolve(v, err)
	return err
}

func (t *deferredTask[R]) detached() bool { return t.future == nil }
