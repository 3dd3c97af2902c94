package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_PopEmpty(t *testing.T) {
	q := New[int]()

	v, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, 0, q.Len())
}

func TestTaskQueue_FIFO(t *testing.T) {
	q := New[string]()
	for _, s := range []string{"a", "b", "c", "d"} {
		q.Push(s)
	}
	require.Equal(t, 4, q.Len())

	var got []string
	for {
		s, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, s)
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestTaskQueue_GrowsPastInitialCapacity(t *testing.T) {
	q := New[int]()
	const n = 10_000

	for i := range n {
		q.Push(i)
	}
	require.Equal(t, n, q.Len())

	for i := range n {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestTaskQueue_FuncItems(t *testing.T) {
	q := New[func()]()
	called := false
	q.Push(func() { called = true })

	fn, ok := q.Pop()
	require.True(t, ok)
	fn()
	assert.True(t, called)
}

func TestTaskQueue_ConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 8
		perProd   = 2_000
	)

	q := New[int]()
	var wg sync.WaitGroup

	for p := range producers {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range perProd {
				q.Push(p*perProd + i)
			}
		}(p)
	}
	wg.Wait()

	seen := make([]int, producers*perProd)
	var mu sync.Mutex
	var cwg sync.WaitGroup
	for range 4 {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, ok := q.Pop()
				if !ok {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}
	cwg.Wait()

	for i, c := range seen {
		if c != 1 {
			t.Fatalf("item %d popped %d times, want 1", i, c)
		}
	}
}

func TestTaskQueue_PerProducerOrder(t *testing.T) {
	type item struct{ producer, seq int }

	q := New[item]()
	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := range 500 {
				q.Push(item{producer: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	last := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
	for {
		it, ok := q.Pop()
		if !ok {
			break
		}
		require.Greater(t, it.seq, last[it.producer], "producer %d out of order", it.producer)
		last[it.producer] = it.seq
	}
}
