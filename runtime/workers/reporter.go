package workers

import (
	"context"
	"log/slog"
	"time"

	"dm-server/observability"
	"dm-server/realtime"
)

// ReporterWorker periodically logs delivery counters and current presence,
// the poor man's dashboard for a single-process deployment.
type ReporterWorker struct {
	monitoring *observability.Monitoring
	registry   *realtime.Registry
	interval   time.Duration
	log        *slog.Logger
}

func NewReporterWorker(monitoring *observability.Monitoring, registry *realtime.Registry,
	interval time.Duration, log *slog.Logger) *ReporterWorker {
	return &ReporterWorker{monitoring: monitoring, registry: registry, interval: interval, log: log}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.monitoring.GetLatest()
			w.log.Info("realtime stats",
				"connected_users", w.registry.Count(),
				"messages_stored", stats.MessagesStored,
				"pushes_delivered", stats.PushesDelivered,
				"pushes_dropped", stats.PushesDropped,
				"sends_rejected", stats.SendsRejected)
		}
	}
}
