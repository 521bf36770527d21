package worker

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultSweepInterval = 10 * time.Minute
	DefaultCheckoutTTL   = 25 * time.Hour
	defaultBatchSize     = 100
)

type expirer interface {
	ExpirePlaced(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// Sweeper removes orders whose checkout was abandoned: still placed long after
// the payment session could have completed.
type Sweeper struct {
	ledger    expirer
	ttl       time.Duration
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewSweeper(ledger expirer, ttl, interval time.Duration) *Sweeper {
	if ttl <= 0 {
		ttl = DefaultCheckoutTTL
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		ledger:    ledger,
		ttl:       ttl,
		interval:  interval,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

func (w *Sweeper) Start(ctx context.Context) {
	slog.Info("starting checkout sweeper", "ttl", w.ttl, "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("checkout sweeper stopped")
			return
		case <-ticker.C:
			if n, err := w.Sweep(ctx); err != nil {
				slog.Error("sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("abandoned orders removed", "count", n)
			}
		}
	}
}

// Sweep drains every expired order in batches and returns how many it removed.
func (w *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.ttl)
	total := 0
	for {
		n, err := w.ledger.ExpirePlaced(ctx, cutoff, w.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < w.batchSize || ctx.Err() != nil {
			return total, nil
		}
	}
}
