package pool

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestThreadPool_RateLimit_BasicThroughput(t *testing.T) {
	// 25 tasks at 10/sec with a burst of 5: the first 5 start at once, the
	// other 20 need about 2 seconds.
	tasksPerSecond := 10.0
	burst := 5
	numTasks := 25

	p := newTestPool(t, 10, WithRateLimit(tasksPerSecond, burst))

	start := time.Now()
	futures := make([]*Future[int], numTasks)
	for i := range numTasks {
		f, err := SubmitFunc(p, func() int { return i })
		if err != nil {
			t.Fatalf("SubmitFunc: %v", err)
		}
		futures[i] = f
	}
	for i, f := range futures {
		v, err := mustGet(t, f)
		if err != nil || v != i {
			t.Errorf("task %d: expected %d, got %d (err %v)", i, i, v, err)
		}
	}
	elapsed := time.Since(start)

	expectedMin := time.Duration(float64(numTasks-burst)/tasksPerSecond*float64(time.Second)) - 200*time.Millisecond
	if elapsed < expectedMin {
		t.Errorf("rate limit not enforced: %d tasks took %v, expected at least %v", numTasks, elapsed, expectedMin)
	}
}

func TestThreadPool_RateLimit_BurstStartsImmediately(t *testing.T) {
	p := newTestPool(t, 5, WithRateLimit(1, 5))

	var ran atomic.Int32
	start := time.Now()
	var futures []*Future[struct{}]
	for range 5 {
		f, err := p.Exec(func() error {
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Exec: %v", err)
		}
		futures = append(futures, f)
	}
	for _, f := range futures {
		_, _ = mustGet(t, f)
	}

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("burst of 5 took %v", elapsed)
	}
	if ran.Load() != 5 {
		t.Errorf("expected 5 tasks, got %d", ran.Load())
	}
}

func TestThreadPool_RateLimit_SubmitNeverBlocks(t *testing.T) {
	p := newTestPool(t, 1, WithRateLimit(100, 1))

	start := time.Now()
	for range 50 {
		if err := p.Go(func() {}); err != nil {
			t.Fatalf("Go: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("submitting to a throttled pool took %v", elapsed)
	}
}

func TestWithRateLimit_InvalidIgnored(t *testing.T) {
	for _, tc := range []struct {
		name  string
		tps   float64
		burst int
	}{
		{"zero rate", 0, 5},
		{"negative rate", -1, 5},
		{"zero burst", 10, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newConfig(WithRateLimit(tc.tps, tc.burst))
			if cfg.rateLimiter != nil {
				t.Error("expected no rate limiter")
			}
		})
	}
}
