package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGCWorker periodically reclaims space in badger's value log. Badger
// never garbage-collects on its own; without this loop the value log grows
// unbounded under message churn (deleted conversations in particular).
type BadgerGCWorker struct {
	db       *badger.DB
	interval time.Duration
	log      *slog.Logger
}

func NewBadgerGCWorker(db *badger.DB, interval time.Duration, log *slog.Logger) *BadgerGCWorker {
	return &BadgerGCWorker{db: db, interval: interval, log: log}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// One pass per tick; 0.5 is the ratio badger documents as a
			// reasonable space-amplification threshold.
			err := w.db.RunValueLogGC(0.5)
			switch {
			case err == nil:
				w.log.Debug("badger value log GC reclaimed a file")
			case errors.Is(err, badger.ErrNoRewrite):
				// Nothing worth rewriting this round.
			default:
				w.log.Warn("badger value log GC failed", "error", err)
			}
		}
	}
}
