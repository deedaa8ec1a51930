package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ordersync/internal/model"
	"ordersync/internal/reconcile"
	"ordersync/internal/service"
)

type Syncer interface {
	Trigger(ctx context.Context, ro reconcile.RunOptions) (int, string)
}

type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error)
}

type OrderReader interface {
	ListOrders(ctx context.Context, limit int) ([]model.CanonicalOrder, error)
	GetOrderDetails(ctx context.Context, orderID string) (*model.CanonicalOrder, error)
}

type StatsReader interface {
	Get(ctx context.Context, now time.Time) (*service.Stats, error)
}

type TokenIssuer interface {
	Login(password string, now time.Time) (string, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// limitParam reads ?limit, falling back to def and capping at ceiling.
func limitParam(r *http.Request, def, ceiling int) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, ceiling), true
}

func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
