// Package metrics provides Prometheus instrumentation for thread pools.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "threadpool"
	subsystem = "pool"
)

// Pool holds the metric instances of a single pool. Every pool registers its
// series under a constant "pool" label, so several pools may share one
// registerer.
//
// All methods are safe to call on a nil *Pool, which records nothing.
type Pool struct {
	Workers   prometheus.Gauge
	Idle      prometheus.Gauge
	Running   prometheus.Gauge
	Queued    prometheus.Gauge
	Submitted prometheus.Counter
	Completed prometheus.Counter
	Failed    prometheus.Counter
	Panicked  prometheus.Counter
	Duration  prometheus.Histogram
}

// NewPool registers the metrics of the pool called name with reg. A nil reg
// uses prometheus.DefaultRegisterer. Registering the same name twice reuses
// the series already registered.
func NewPool(reg prometheus.Registerer, name string) *Pool {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg = prometheus.WrapRegistererWith(prometheus.Labels{"pool": name}, reg)

	return &Pool{
		Workers: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers",
			Help:      "Number of worker threads owned by the pool",
		})),
		Idle: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers_idle",
			Help:      "Number of workers waiting for work",
		})),
		Running: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers_running",
			Help:      "Number of workers executing a task",
		})),
		Queued: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_queued",
			Help:      "Number of tasks waiting in the queue",
		})),
		Submitted: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks accepted by the pool",
		})),
		Completed: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks that finished executing, successfully or not",
		})),
		Failed: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_failed_total",
			Help:      "Total number of tasks that returned an error or panicked",
		})),
		Panicked: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_panicked_total",
			Help:      "Total number of tasks that panicked",
		})),
		Duration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "task_duration_seconds",
			Help:      "Time spent executing a task",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 12),
		})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Start records the pool's worker count; all workers begin idle.
func (p *Pool) Start(workers int) {
	if p == nil {
		return
	}
	p.Workers.Set(float64(workers))
	p.Idle.Set(float64(workers))
	p.Running.Set(0)
}

// Stopped records that a worker has exited while idle.
func (p *Pool) Stopped() {
	if p == nil {
		return
	}
	p.Idle.Dec()
}

// Submit records a task entering the queue.
func (p *Pool) Submit() {
	if p == nil {
		return
	}
	p.Submitted.Inc()
	p.Queued.Inc()
}

// Begin records a worker moving from idle to running on a dequeued task.
func (p *Pool) Begin() {
	if p == nil {
		return
	}
	p.Queued.Dec()
	p.Idle.Dec()
	p.Running.Inc()
}

// End records a worker returning to idle after a task finished.
func (p *Pool) End(d time.Duration, err error, panicked bool) {
	if p == nil {
		return
	}
	p.Running.Dec()
	p.Idle.Inc()
	p.Completed.Inc()
	p.Duration.Observe(d.Seconds())
	if err != nil {
		p.Failed.Inc()
	}
	if panicked {
		p.Panicked.Inc()
	}
}
