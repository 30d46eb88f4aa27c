package workers

import (
	"context"
	"log/slog"
	"time"

	"dm-server/repositories"
)

// IndexFlushWorker flushes the contact index's pending batch on a timer so
// fresh signups and profile edits become searchable without a segment
// write on every request.
type IndexFlushWorker struct {
	index    repositories.IContactIndex
	interval time.Duration
	log      *slog.Logger
}

func NewIndexFlushWorker(index repositories.IContactIndex, interval time.Duration,
	log *slog.Logger) *IndexFlushWorker {
	return &IndexFlushWorker{index: index, interval: interval, log: log}
}

func (w *IndexFlushWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush so nothing queued is lost on shutdown.
			return w.index.Flush()
		case <-ticker.C:
			if err := w.index.Flush(); err != nil {
				w.log.Warn("contact index flush failed", "error", err)
			}
		}
	}
}
