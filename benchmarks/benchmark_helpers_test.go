package benchmarks

import (
	"sort"
	"testing"
	"time"

	"github.com/utkarsh5026/threadpool/pool"
)

// disciplineConfig defines a benchmark configuration for an execution discipline
type disciplineConfig struct {
	name string
	opts []pool.Option
}

// getAllDisciplines returns every execution discipline for benchmarking
func getAllDisciplines() []disciplineConfig {
	return []disciplineConfig{
		{name: "Eager", opts: []pool.Option{pool.WithDiscipline(pool.Eager)}},
		{name: "Deferred", opts: []pool.Option{pool.WithDiscipline(pool.Deferred)}},
	}
}

// runDisciplineBenchmark runs benchFunc as a sub-benchmark per discipline
func runDisciplineBenchmark(b *testing.B, benchFunc func(b *testing.B, d disciplineConfig)) {
	b.Helper()
	for _, d := range getAllDisciplines() {
		b.Run(d.name, func(b *testing.B) {
			benchFunc(b, d)
		})
	}
}

func newBenchPool(b *testing.B, workers int, opts ...pool.Option) *pool.ThreadPool {
	b.Helper()

	p, err := pool.New(workers, opts...)
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	b.Cleanup(func() { _ = p.Stop() })
	return p
}

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations, task int) int {
	result := 0
	for i := 0; i < iterations; i++ {
		result += i * task
	}
	return result
}

// submitAndWait submits n tasks built by work and waits for all of them.
func submitAndWait(b *testing.B, p *pool.ThreadPool, n int, work func(task int) int) {
	futures := make([]*pool.Future[int], n)
	for i := range n {
		f, err := pool.SubmitFunc(p, func() int { return work(i) })
		if err != nil {
			b.Fatalf("submit failed: %v", err)
		}
		futures[i] = f
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			b.Fatalf("task failed: %v", err)
		}
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})
	idx := int(float64(len(latencies)-1) * p)
	return latencies[idx]
}
