package pool

import (
	"log/slog"
	"time"

	"github.com/coder/quartz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/utkarsh5026/threadpool/internal/algorithms"
	"golang.org/x/time/rate"
)

const (
	// defaultIdleWait is how long an idle worker sleeps before re-checking the
	// queue when no submission wakes it.
	defaultIdleWait = 100 * time.Millisecond
)

// Discipline selects how submitted work is packaged for the workers.
type Discipline int

const (
	// Eager enqueues the task closure itself; the worker calls it directly.
	Eager Discipline = iota

	// Deferred enqueues an unstarted lazy computation; the worker forces it to
	// completion. Nothing observable changes at the submission boundary.
	Deferred
)

func (d Discipline) String() string {
	switch d {
	case Eager:
		return "eager"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// TaskInfo identifies a task to the lifecycle hooks.
type TaskInfo struct {
	// ID is assigned at submission and increases monotonically per pool.
	ID uint64

	// WorkerID is the index of the worker executing the task.
	WorkerID int
}

// Option is a functional option for configuring a ThreadPool.
type Option func(*config)

type config struct {
	pinToCPU   bool
	discipline Discipline
	logger     *slog.Logger
	clock      quartz.Clock

	idleInitial time.Duration
	idleMax     time.Duration
	idleBackoff algorithms.BackoffType
	idleJitter  float64

	rateLimiter *rate.Limiter

	beforeTaskStart func(TaskInfo)
	onTaskEnd       func(TaskInfo, error)

	metricsEnabled  bool
	metricsRegistry prometheus.Registerer
	metricsName     string
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		discipline:  Eager,
		idleInitial: defaultIdleWait,
		idleMax:     defaultIdleWait,
		idleBackoff: algorithms.BackoffExponential,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = defaultLogger()
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	return cfg
}

// WithPinToCPU pins worker i to core i mod runtime.NumCPU(). A pinning
// failure makes New return an error wrapping ErrAffinity.
func WithPinToCPU(pin bool) Option {
	return func(cfg *config) {
		cfg.pinToCPU = pin
	}
}

// WithDiscipline selects the execution discipline. Defaults to Eager.
func WithDiscipline(d Discipline) Option {
	return func(cfg *config) {
		if d == Eager || d == Deferred {
			cfg.discipline = d
		}
	}
}

// WithLogger sets the logger used for worker lifecycle events and for
// failures of fire-and-forget tasks. If not specified, records are discarded
// unless the package is built with -tags debug.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithClock replaces the clock used for idle timers and task timing.
func WithClock(c quartz.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithIdleWait sets the idle wait of a worker that finds the queue empty.
// The wait starts at initial and doubles on every consecutive empty round up
// to maxWait; executing a task resets it. Defaults to a fixed 100ms.
func WithIdleWait(initial, maxWait time.Duration) Option {
	return func(cfg *config) {
		if initial > 0 {
			cfg.idleInitial = initial
			cfg.idleMax = max(maxWait, initial)
		}
	}
}

// WithIdleJitter spreads idle waits by ±factor so idle workers do not wake
// in lockstep. factor is clamped to [0, 1].
func WithIdleJitter(factor float64) Option {
	return func(cfg *config) {
		if factor > 0 {
			cfg.idleBackoff = algorithms.BackoffJittered
			cfg.idleJitter = factor
		}
	}
}

// WithRateLimit caps how many tasks per second the pool starts.
// tasksPerSecond specifies the sustained rate and burst the number of tasks
// that may start back to back. Submission itself never blocks; workers wait
// for a token before running a dequeued task.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithBeforeTaskStart registers a hook called on the worker right before a
// task runs.
func WithBeforeTaskStart(fn func(TaskInfo)) Option {
	return func(cfg *config) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd registers a hook called on the worker after a task returns,
// with the task's error (nil on success).
func WithOnTaskEnd(fn func(TaskInfo, error)) Option {
	return func(cfg *config) {
		cfg.onTaskEnd = fn
	}
}

// WithMetrics exports Prometheus metrics for the pool under the label
// pool=name. A nil registerer uses prometheus.DefaultRegisterer.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(cfg *config) {
		cfg.metricsEnabled = true
		cfg.metricsRegistry = reg
		cfg.metricsName = name
	}
}
