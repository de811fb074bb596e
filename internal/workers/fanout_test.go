package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFanOut_RunsEveryItemInWindows(t *testing.T) {
	t.Parallel()

	f := NewFanOut(10, 0, time.Second)

	var mu sync.Mutex
	var windows [][2]int
	var calls int32

	f.Run(context.Background(), 25, func(lo, hi int) []Job {
		mu.Lock()
		windows = append(windows, [2]int{lo, hi})
		mu.Unlock()

		jobs := make([]Job, 0, hi-lo)
		for i := lo; i < hi; i++ {
			jobs = append(jobs, func(ctx context.Context) { atomic.AddInt32(&calls, 1) })
		}
		return jobs
	})

	if calls != 25 {
		t.Fatalf("expected 25 calls, got %d", calls)
	}
	want := [][2]int{{0, 10}, {10, 20}, {20, 25}}
	if len(windows) != len(want) {
		t.Fatalf("expected %d windows, got %v", len(want), windows)
	}
	for i := range want {
		if windows[i] != want[i] {
			t.Fatalf("window %d: want %v got %v", i, want[i], windows[i])
		}
	}
}

func TestFanOut_WindowSettlesBeforeNext(t *testing.T) {
	t.Parallel()

	f := NewFanOut(2, 0, time.Second)

	var inFlight, maxInFlight int32
	f.Run(context.Background(), 6, func(lo, hi int) []Job {
		jobs := make([]Job, 0, hi-lo)
		for i := lo; i < hi; i++ {
			jobs = append(jobs, func(ctx context.Context) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
			})
		}
		return jobs
	})

	if maxInFlight > 2 {
		t.Fatalf("expected at most 2 concurrent calls, saw %d", maxInFlight)
	}
}

func TestFanOut_PerCallTimeout(t *testing.T) {
	t.Parallel()

	f := NewFanOut(5, 0, 20*time.Millisecond)

	var timedOut int32
	start := time.Now()
	f.Run(context.Background(), 3, func(lo, hi int) []Job {
		jobs := make([]Job, 0, hi-lo)
		for i := lo; i < hi; i++ {
			jobs = append(jobs, func(ctx context.Context) {
				select {
				case <-ctx.Done():
					atomic.AddInt32(&timedOut, 1)
				case <-time.After(time.Second):
				}
			})
		}
		return jobs
	})

	if timedOut != 3 {
		t.Fatalf("expected 3 timed out calls, got %d", timedOut)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("calls were not bounded by the per-call timeout")
	}
}

func TestFanOut_PacesWindows(t *testing.T) {
	t.Parallel()

	f := NewFanOut(1, 30*time.Millisecond, time.Second)

	start := time.Now()
	f.Run(context.Background(), 3, func(lo, hi int) []Job {
		return []Job{func(ctx context.Context) {}}
	})

	// first window passes immediately, the next two wait one interval each
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("expected pacing between windows, elapsed %v", elapsed)
	}
}

func TestFanOut_CancelledParentStillVisitsAll(t *testing.T) {
	t.Parallel()

	f := NewFanOut(2, time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls, cancelled int32
	f.Run(ctx, 5, func(lo, hi int) []Job {
		jobs := make([]Job, 0, hi-lo)
		for i := lo; i < hi; i++ {
			jobs = append(jobs, func(ctx context.Context) {
				atomic.AddInt32(&calls, 1)
				if ctx.Err() != nil {
					atomic.AddInt32(&cancelled, 1)
				}
			})
		}
		return jobs
	})

	if calls != 5 || cancelled != 5 {
		t.Fatalf("expected 5 cancelled calls, got calls=%d cancelled=%d", calls, cancelled)
	}
}
