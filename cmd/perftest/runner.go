package main

import (
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/threadpool/pool"
)

// RunResult holds the outcome of one whiteboard run.
type RunResult struct {
	Method     pool.Discipline
	Iteration  int
	Tasks      int
	SubmitTime time.Duration
	TotalTime  time.Duration
	Bad        []int // slots not written exactly once
	Err        error
}

// Passed reports whether every slot was written exactly once.
func (r RunResult) Passed() bool {
	return r.Err == nil && len(r.Bad) == 0
}

// TasksPerSec is the end-to-end throughput from first submit to last result.
func (r RunResult) TasksPerSec() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return float64(r.Tasks) / r.TotalTime.Seconds()
}

// whiteboard has one slot per task. Each task increments only its own slot,
// so after a correct run every slot holds exactly 1.
type whiteboard struct {
	slots []atomic.Int32
}

func newWhiteboard(n int) *whiteboard {
	return &whiteboard{slots: make([]atomic.Int32, n)}
}

func (w *whiteboard) mark(id int) {
	w.slots[id].Add(1)
}

// verify returns the slots that were not written exactly once.
func (w *whiteboard) verify() []int {
	var bad []int
	for i := range w.slots {
		if w.slots[i].Load() != 1 {
			bad = append(bad, i)
		}
	}
	return bad
}

// shuffledIDs returns 0..n-1 in random order so tasks do not touch slots
// sequentially.
func shuffledIDs(n int, rng *rand.Rand) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	rng.Shuffle(n, func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

type runner struct {
	count   int
	workers int
	opts    []pool.Option
	rng     *rand.Rand
}

func newRunner(count, workers int, seed int64, opts ...pool.Option) *runner {
	return &runner{
		count:   count,
		workers: workers,
		opts:    opts,
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404 -- shuffle order only
	}
}

// Run builds a fresh pool with the given discipline, submits one task per
// whiteboard slot, waits for every future and checks the board.
func (r *runner) Run(method pool.Discipline, iteration int) RunResult {
	res := RunResult{Method: method, Iteration: iteration, Tasks: r.count}

	ids := shuffledIDs(r.count, r.rng)
	board := newWhiteboard(r.count)

	opts := append([]pool.Option{pool.WithDiscipline(method)}, r.opts...)
	p, err := pool.New(r.workers, opts...)
	if err != nil {
		res.Err = fmt.Errorf("create pool: %w", err)
		return res
	}

	start := time.Now()
	futures := make([]*pool.Future[struct{}], 0, r.count)
	for _, id := range ids {
		f, err := p.Exec(func() error {
			board.mark(id)
			return nil
		})
		if err != nil {
			res.Err = fmt.Errorf("submit task %d: %w", id, err)
			_ = p.Stop()
			return res
		}
		futures = append(futures, f)
	}
	res.SubmitTime = time.Since(start)

	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			res.Err = fmt.Errorf("task %d: %w", f.ID(), err)
			break
		}
	}
	res.TotalTime = time.Since(start)

	if err := p.Stop(); err != nil && res.Err == nil {
		res.Err = fmt.Errorf("stop pool: %w", err)
	}

	res.Bad = board.verify()
	return res
}

// methodsFor expands the -method flag.
func methodsFor(name string) ([]pool.Discipline, error) {
	switch name {
	case "eager", "lambda":
		return []pool.Discipline{pool.Eager}, nil
	case "deferred", "async":
		return []pool.Discipline{pool.Deferred}, nil
	case "both":
		return []pool.Discipline{pool.Eager, pool.Deferred}, nil
	default:
		return nil, fmt.Errorf("unknown method %q (want eager, deferred or both)", name)
	}
}

// median returns the run with the median total time.
func median(results []RunResult) RunResult {
	sorted := make([]RunResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TotalTime < sorted[j].TotalTime
	})
	return sorted[len(sorted)/2]
}
