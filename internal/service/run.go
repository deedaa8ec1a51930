package service

import (
	"context"
	"database/sql"
	"fmt"

	"ordersync/internal/database"
	"ordersync/internal/model"
)

// RunService keeps the sync_runs audit trail.
type RunService struct {
	db *database.DB
}

func NewRunService(db *database.DB) *RunService {
	return &RunService{db: db}
}

func (s *RunService) RecordRun(ctx context.Context, run model.SyncRun) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sync_runs (
			id, started_at, finished_at, fetch_window, fetched, inserted, updated,
			skipped, failed, max_order_id, status, message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Window, run.Fetched, run.Inserted, run.Updated,
		run.Skipped, run.Failed, run.MaxOrderID, run.Status, run.Message,
	)
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

func (s *RunService) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT id, started_at, finished_at, fetch_window, fetched, inserted, updated,
			skipped, failed, max_order_id, status, message
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var (
			r                 model.SyncRun
			started, finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Window, &r.Fetched, &r.Inserted, &r.Updated,
			&r.Skipped, &r.Failed, &r.MaxOrderID, &r.Status, &r.Message); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		r.StartedAt = parseTime(started.String)
		r.FinishedAt = parseTime(finished.String)
		runs = append(runs, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return runs, nil
}
