package main

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/utkarsh5026/threadpool/pool"
)

func TestShuffledIDs_Permutation(t *testing.T) {
	ids := shuffledIDs(1000, rand.New(rand.NewSource(1)))

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	for i, v := range sorted {
		if v != i {
			t.Fatalf("expected a permutation of 0..999, position %d holds %d", i, v)
		}
	}
	if slices.Equal(ids, sorted) {
		t.Error("expected shuffled order")
	}
}

func TestWhiteboard_Verify(t *testing.T) {
	w := newWhiteboard(5)
	for _, id := range []int{0, 1, 2, 3, 3} {
		w.mark(id)
	}

	bad := w.verify()
	if !slices.Equal(bad, []int{3, 4}) {
		t.Errorf("expected slots [3 4] flagged, got %v", bad)
	}
}

func TestRunner_Run(t *testing.T) {
	for _, m := range []pool.Discipline{pool.Eager, pool.Deferred} {
		t.Run(m.String(), func(t *testing.T) {
			r := newRunner(5000, 4, 42)
			res := r.Run(m, 1)

			if !res.Passed() {
				t.Fatalf("run failed: err=%v bad=%d", res.Err, len(res.Bad))
			}
			if res.Tasks != 5000 {
				t.Errorf("expected 5000 tasks, got %d", res.Tasks)
			}
			if res.TotalTime < res.SubmitTime {
				t.Errorf("total time %v shorter than submit time %v", res.TotalTime, res.SubmitTime)
			}
		})
	}
}

func TestRunner_InvalidWorkers(t *testing.T) {
	res := newRunner(10, 0, 1).Run(pool.Eager, 1)
	if res.Passed() {
		t.Fatal("expected failure with zero workers")
	}
}

func TestMethodsFor(t *testing.T) {
	tests := []struct {
		name    string
		want    []pool.Discipline
		wantErr bool
	}{
		{"eager", []pool.Discipline{pool.Eager}, false},
		{"lambda", []pool.Discipline{pool.Eager}, false},
		{"deferred", []pool.Discipline{pool.Deferred}, false},
		{"async", []pool.Discipline{pool.Deferred}, false},
		{"both", []pool.Discipline{pool.Eager, pool.Deferred}, false},
		{"nope", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := methodsFor(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("methodsFor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("methodsFor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, want := range tests {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}
