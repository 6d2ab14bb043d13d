package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/storage"
)

const sweepBatch = 100

// Sweeper deletes expired report blobs and their rows.
type Sweeper struct {
	store    Store
	blobs    storage.BlobStore
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewSweeper(store Store, blobs storage.BlobStore, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{store: store, blobs: blobs, interval: interval, log: log, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (w *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		if n, err := w.SweepOnce(ctx); err != nil {
			w.log.Warn("report sweep failed", zap.Error(err))
		} else if n > 0 {
			w.log.Info("expired reports removed", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// SweepOnce removes every report expired at the current time.
func (w *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	removed := 0
	for {
		recs, err := w.store.Expired(ctx, w.now(), sweepBatch)
		if err != nil {
			return removed, err
		}
		for _, r := range recs {
			if err := w.blobs.Delete(r.FilePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return removed, err
			}
			if err := w.store.Delete(ctx, r.ID); err != nil {
				return removed, err
			}
			removed++
		}
		if len(recs) < sweepBatch {
			return removed, nil
		}
	}
}
