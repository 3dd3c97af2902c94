// Package barrier implements the one-shot startup rendezvous used by the
// pool constructor and its workers.
package barrier

import "sync"

// Barrier releases every waiter once threshold goroutines have arrived.
//
// It is single use. Arrivals after the release return immediately, and a
// threshold that is never reached blocks its waiters forever, so callers
// must guarantee exactly threshold arrivals.
type Barrier struct {
	mu        sync.Mutex
	cond      *sync.Cond
	arrived   int
	threshold int
	released  bool
}

// New creates a Barrier that opens after threshold arrivals.
// A threshold below 1 is treated as 1.
func New(threshold int) *Barrier {
	b := &Barrier{threshold: max(threshold, 1)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// ArriveAndWait records an arrival and blocks until the barrier opens.
// The arrival that reaches the threshold opens the barrier and returns
// without blocking.
func (b *Barrier) ArriveAndWait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.arrived++
	if b.arrived >= b.threshold {
		b.released = true
		b.cond.Broadcast()
		return
	}

	for !b.released {
		b.cond.Wait()
	}
}

// Arrived reports how many goroutines have arrived so far.
func (b *Barrier) Arrived() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.arrived
}

// Released reports whether the barrier has opened.
func (b *Barrier) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
