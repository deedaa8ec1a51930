package worker

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ordersync/internal/reconcile"
)

type Syncer interface {
	Trigger(ctx context.Context, ro reconcile.RunOptions) (int, string)
}

// SyncWorker triggers a reconciliation run on every tick. A tick that finds
// a run already in progress is logged and dropped.
type SyncWorker struct {
	syncer   Syncer
	interval time.Duration
}

func NewSyncWorker(syncer Syncer, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		syncer:   syncer,
		interval: interval,
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	slog.Info("starting sync worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SyncWorker) tick(ctx context.Context) {
	status, msg := w.syncer.Trigger(ctx, reconcile.RunOptions{})
	switch status {
	case http.StatusOK:
		slog.Info("scheduled sync finished", "message", msg)
	case http.StatusConflict:
		slog.Warn("scheduled sync skipped", "message", msg)
	default:
		slog.Error("scheduled sync failed", "status", status, "message", msg)
	}
}
