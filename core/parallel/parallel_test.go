package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestParallelizeNCoversEveryItemOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8, 200} {
		hits := make([]int32, 100)
		ParallelizeN(len(hits), workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("workers=%d: item %d visited %d times", workers, i, h)
			}
		}
	}
}

func TestParallelizeNZeroItems(t *testing.T) {
	called := false
	ParallelizeN(0, 4, func(int, int) { called = true })
	if called {
		t.Error("fn must not run for zero items")
	}
}

func TestWorkers(t *testing.T) {
	tests := []struct {
		name  string
		nJobs int
		items int
		want  int
	}{
		{"single job", 1, 100, 1},
		{"capped by items", 8, 3, 3},
		{"explicit", 4, 100, 4},
		{"all cores", -1, 1 << 20, runtime.NumCPU()},
		{"no items", 4, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Workers(tt.nJobs, tt.items); got != tt.want {
				t.Errorf("Workers(%d, %d) = %d, want %d", tt.nJobs, tt.items, got, tt.want)
			}
		})
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 10 {
			t.Errorf("sequential path got range [%d, %d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}
