package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"ordersync/internal/reconcile"
)

type syncResponse struct {
	Message string `json:"message"`
}

// SyncHandler runs one reconciliation synchronously and reports its outcome.
// An optional ?since_id resumes after that source order ID.
func SyncHandler(syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ro reconcile.RunOptions
		if v := r.URL.Query().Get("since_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "since_id must be a positive integer", http.StatusBadRequest)
				return
			}
			ro.ResumeAfter = id
		}

		status, msg := syncer.Trigger(r.Context(), ro)
		if status != http.StatusOK {
			slog.Warn("manual sync did not complete", "status", status, "message", msg)
		}
		writeJSON(w, status, syncResponse{Message: msg})
	}
}

func ListRunsHandler(runs RunLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := limitParam(r, 20, 200)
		if !ok {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		list, err := runs.ListRuns(r.Context(), limit)
		if err != nil {
			slog.Error("list runs failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if len(list) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
