package workers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Job is one isolated outbound call. It receives a context bounded by the per-call timeout
// and must record its own outcome; FanOut never inspects results.
type Job func(ctx context.Context)

// BatchFunc returns the jobs for items [lo, hi).
type BatchFunc func(lo, hi int) []Job

// FanOut runs outbound calls in windows of at most batchSize items. All jobs of a window run
// concurrently and are awaited (all-settled) before the limiter lets the next window start.
type FanOut struct {
	batchSize   int
	callTimeout time.Duration
	limiter     *rate.Limiter
}

func NewFanOut(batchSize int, interval, callTimeout time.Duration) *FanOut {
	if batchSize <= 0 {
		batchSize = 50
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &FanOut{
		batchSize:   batchSize,
		callTimeout: callTimeout,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

func (f *FanOut) BatchSize() int { return f.batchSize }

// Run walks total items window by window. Pacing errors (cancelled parent context) do not stop
// the walk: remaining jobs still run and fail fast on the cancelled context, so every item
// ends up with a recorded outcome.
func (f *FanOut) Run(ctx context.Context, total int, batch BatchFunc) {
	for lo := 0; lo < total; lo += f.batchSize {
		hi := lo + f.batchSize
		if hi > total {
			hi = total
		}

		_ = f.limiter.Wait(ctx)

		f.settle(ctx, batch(lo, hi))
	}
}

func (f *FanOut) settle(ctx context.Context, jobs []Job) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			callCtx, cancel := f.callContext(ctx)
			defer cancel()
			job(callCtx)
		}(job)
	}
	wg.Wait()
}

func (f *FanOut) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.callTimeout)
}
