// Package algorithms holds the idle-wait backoff used by pool workers.
//
// A worker that finds the queue empty sleeps on a timed wait before it looks
// again. The backoff decides how long that wait is after a given number of
// consecutive empty rounds.
package algorithms

import (
	"math/rand"
	"sync"
	"time"
)

const (
	maxShift = 62 // keeps 1<<round from overflowing int64
)

// BackoffType selects the idle backoff algorithm.
type BackoffType int

const (
	// BackoffExponential doubles the wait each empty round up to the maximum.
	BackoffExponential BackoffType = iota
	// BackoffJittered is BackoffExponential with a random ±jitter spread so idle
	// workers do not wake in lockstep.
	BackoffJittered
)

// Backoff computes the idle wait for a worker.
type Backoff interface {
	// NextDelay returns the wait after round consecutive empty polls.
	// round is 0-indexed; a negative round returns 0.
	NextDelay(round int) time.Duration
}

// NewBackoff builds the backoff for the given type. A maxDelay below
// initialDelay is raised to initialDelay.
func NewBackoff(kind BackoffType, initialDelay, maxDelay time.Duration, jitterFactor float64) Backoff {
	maxDelay = max(maxDelay, initialDelay)

	switch kind {
	case BackoffJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)
	default:
		return newExponentialBackoff(initialDelay, maxDelay)
	}
}

// exponentialBackoff waits initialDelay * 2^round, capped at maxDelay.
// With initialDelay == maxDelay it degenerates to a fixed poll interval.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newExponentialBackoff(initialDelay, maxDelay time.Duration) *exponentialBackoff {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

func (eb *exponentialBackoff) NextDelay(round int) time.Duration {
	return calcExponentialDelay(round, eb.initialDelay, eb.maxDelay)
}

// jitteredBackoff multiplies the exponential delay by (1 ± jitterFactor).
//
// With jitterFactor=0.1 a base of 100ms becomes a value in [90ms, 110ms].
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64
	rng                    *rand.Rand
	mu                     sync.Mutex
}

func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter needs no crypto rand
	}
}

func (jb *jitteredBackoff) NextDelay(round int) time.Duration {
	if round < 0 {
		return 0
	}

	base := calcExponentialDelay(round, jb.initialDelay, jb.maxDelay)

	jb.mu.Lock()
	multiplier := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	jb.mu.Unlock()

	return clamp(time.Duration(float64(base)*multiplier), 0, jb.maxDelay)
}

func calcExponentialDelay(round int, initialDelay, maxDelay time.Duration) time.Duration {
	if round < 0 {
		return 0
	}
	if round >= maxShift {
		return maxDelay
	}

	if initialDelay > maxDelay>>uint(round) {
		return maxDelay
	}
	return time.Duration(int64(1)<<uint(round)) * initialDelay
}

func clamp[T int | int64 | float64 | time.Duration](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
