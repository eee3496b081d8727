package sched

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"iptv-reseller-store/internal/infra/metrics"
)

// Reloader runs the store's reconciling full reload. Schedule marks the
// cache dirty; the worker debounces bursts of optimistic writes into one
// reload. Flush runs any pending reload synchronously, which gives callers
// (and tests) a deterministic read-your-writes point instead of the old
// fire-and-forget timer.
type Reloader struct {
	reload   func(ctx context.Context)
	debounce time.Duration
	log      *zerolog.Logger

	pending atomic.Bool
	kick    chan struct{}
}

func NewReloader(reload func(ctx context.Context), debounce time.Duration, logger *zerolog.Logger) *Reloader {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Reloader{
		reload:   reload,
		debounce: debounce,
		log:      logger,
		kick:     make(chan struct{}, 1),
	}
}

// Schedule marks the cache dirty and wakes the worker. Safe from any goroutine.
func (r *Reloader) Schedule() {
	r.pending.Store(true)
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Flush runs a pending reload immediately, if there is one.
func (r *Reloader) Flush(ctx context.Context) {
	if r.pending.CompareAndSwap(true, false) {
		r.run(ctx)
	}
}

// Start blocks until ctx is cancelled, servicing scheduled reloads.
func (r *Reloader) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.kick:
			// Debounce: let a burst of optimistic writes coalesce.
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.debounce):
			}
			if r.pending.CompareAndSwap(true, false) {
				r.run(ctx)
			}
		}
	}
}

func (r *Reloader) run(ctx context.Context) {
	start := time.Now()
	r.reload(ctx)
	elapsed := time.Since(start)
	metrics.IncReload()
	metrics.ObserveReloadDuration(float64(elapsed.Milliseconds()))
	r.log.Debug().Dur("duration", elapsed).Msg("reconciling reload finished")
}
