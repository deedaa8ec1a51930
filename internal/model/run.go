package model

import "time"

const (
	RunStatusCompleted   = "COMPLETED"
	RunStatusFetchFailed = "FETCH_FAILED"
)

// SyncRun is the audit record of one reconciliation pass.
type SyncRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Window     string    `json:"window"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	MaxOrderID int64     `json:"max_order_id,omitempty"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
}

// Succeeded counts orders that were written or were already up to date.
func (r SyncRun) Succeeded() int {
	return r.Inserted + r.Updated + r.Skipped
}

const (
	EventOrderInserted = "order.inserted"
	EventOrderUpdated  = "order.updated"
)

// OrderEvent is published after an order has been written.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	RunID      string    `json:"run_id"`
	Total      string    `json:"total"`
	Items      int       `json:"items"`
	OccurredAt time.Time `json:"occurred_at"`
}
