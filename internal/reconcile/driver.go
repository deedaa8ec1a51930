package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ordersync/internal/model"
)

const (
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

const (
	DefaultLookback     = 24 * time.Hour
	DefaultPageLimit    = 250
	DefaultStoreTimeout = 10 * time.Second
)

// FetchQuery bounds one fetch. SinceID takes precedence over UpdatedAtMin,
// which takes precedence over CreatedAtMin.
type FetchQuery struct {
	CreatedAtMin time.Time
	UpdatedAtMin time.Time
	SinceID      int64
	Limit        int
}

func (q FetchQuery) String() string {
	switch {
	case q.SinceID > 0:
		return "since_id=" + strconv.FormatInt(q.SinceID, 10)
	case !q.UpdatedAtMin.IsZero():
		return "updated_at_min=" + q.UpdatedAtMin.Format(time.RFC3339)
	}
	return "created_at_min=" + q.CreatedAtMin.Format(time.RFC3339)
}

type OrderSource interface {
	FetchOrders(ctx context.Context, q FetchQuery) ([]model.RawOrder, error)
}

// OrderStore persists canonical orders. GetOrder returns ErrNotFound when
// no row exists; DeleteLineItems and DeleteOrder succeed when there is
// nothing to delete.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*model.StoredOrder, error)
	InsertOrder(ctx context.Context, o model.CanonicalOrder) error
	UpdateOrder(ctx context.Context, orderID string, o model.CanonicalOrder) error
	DeleteOrder(ctx context.Context, orderID string) error
	DeleteLineItems(ctx context.Context, orderID string) error
	InsertLineItems(ctx context.Context, items []model.CanonicalLineItem) error
}

// Transactor is implemented by stores that can run several writes atomically.
// Without it, an insert whose line items fail is undone with DeleteOrder so
// the next run inserts the order again.
type Transactor interface {
	InTx(ctx context.Context, fn func(OrderStore) error) error
}

type RunRecorder interface {
	RecordRun(ctx context.Context, run model.SyncRun) error
}

type Publisher interface {
	Publish(ctx context.Context, ev model.OrderEvent) error
}

// Checkpoint persists the resumption marker between runs.
type Checkpoint interface {
	Load() (int64, bool, error)
	Save(id int64) error
}

type Metrics interface {
	ObserveOrder(outcome string)
	ObserveRun(run model.SyncRun)
}

type Options struct {
	Lookback     time.Duration
	PageLimit    int
	StoreTimeout time.Duration
	Now          func() time.Time

	Runs       RunRecorder
	Events     Publisher
	Checkpoint Checkpoint
	Metrics    Metrics
}

// RunOptions carries per-run overrides. A non-zero ResumeAfter fetches
// orders after that source id instead of the trailing time window.
type RunOptions struct {
	ResumeAfter int64
}

// Driver reconciles fetched orders with the store, one order at a time.
// Runs are serialized; a run started while another is active fails with
// ErrRunInProgress.
type Driver struct {
	source OrderSource
	store  OrderStore
	opts   Options
	mu     sync.Mutex
}

func NewDriver(source OrderSource, store OrderStore, opts Options) *Driver {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.PageLimit <= 0 || opts.PageLimit > DefaultPageLimit {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Driver{source: source, store: store, opts: opts}
}

// Trigger runs one sync and reports a coarse HTTP-style status with a
// human-readable message, for schedulers and the admin API.
func (d *Driver) Trigger(ctx context.Context, ro RunOptions) (int, string) {
	run, err := d.Run(ctx, ro)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return http.StatusConflict, "Sync already in progress"
	case err != nil:
		return http.StatusInternalServerError, "Sync failed: " + err.Error()
	}
	return http.StatusOK, run.Message
}

// Run fetches one window of orders and reconciles each of them. Per-order
// failures are counted, never returned; the returned error is non-nil only
// when the fetch failed or another run is active.
func (d *Driver) Run(ctx context.Context, ro RunOptions) (model.SyncRun, error) {
	if !d.mu.TryLock() {
		return model.SyncRun{}, ErrRunInProgress
	}
	defer d.mu.Unlock()

	run := model.SyncRun{ID: uuid.NewString(), StartedAt: d.opts.Now()}
	log := slog.With("run_id", run.ID)

	plan := d.plan(ro, log)
	run.Window = plan.String()
	log.Info("starting order sync", "window", run.Window, "limit", plan.cursor.Limit)

	orders, fromCursor, err := d.fetch(ctx, plan)
	if err != nil {
		run.Status = model.RunStatusFetchFailed
		run.Message = "Sync failed: could not fetch orders"
		log.Error("failed to fetch orders", "error", err)
		d.finish(ctx, log, &run)
		return run, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	run.Fetched = len(orders)

	// The checkpoint may only move up to, not past, the lowest order id that
	// failed to persist, so that the order is fetched again next time. Orders
	// that cannot be parsed never will be and do not hold it. A persistence
	// failure without a usable id holds the checkpoint where it is.
	var (
		passed    []int64
		minFailed int64 = -1
		hold      bool
	)
	for i, raw := range orders {
		outcome, err := d.reconcileOrder(ctx, log, run.ID, raw)
		if d.opts.Metrics != nil {
			d.opts.Metrics.ObserveOrder(outcome)
		}
		switch outcome {
		case OutcomeInserted:
			run.Inserted++
		case OutcomeUpdated:
			run.Updated++
		case OutcomeSkipped:
			run.Skipped++
		default:
			run.Failed++
			log.Error("failed to process order", "order_number", raw.OrderNumber.OrEmpty(), "error", err)
		}
		if i >= fromCursor {
			continue
		}

		id, idErr := strconv.ParseInt(strings.TrimSpace(raw.ID.OrEmpty()), 10, 64)
		switch {
		case outcome != OutcomeFailed || errors.Is(err, ErrParse):
			if idErr == nil {
				passed = append(passed, id)
			}
		case idErr != nil:
			hold = true
		case minFailed < 0 || id < minFailed:
			minFailed = id
		}
	}
	if !hold {
		run.MaxOrderID = checkpointID(passed, minFailed)
	}

	run.Status = model.RunStatusCompleted
	run.Message = fmt.Sprintf("Sync completed: %d/%d orders processed", run.Succeeded(), run.Fetched)
	d.finish(ctx, log, &run)

	if plan.save && run.MaxOrderID > plan.from {
		if err := d.opts.Checkpoint.Save(run.MaxOrderID); err != nil {
			log.Warn("failed to save checkpoint", "since_id", run.MaxOrderID, "error", err)
		}
	}
	return run, nil
}

// checkpointID is the highest id below minFailed, or the highest id when
// nothing failed (minFailed < 0).
func checkpointID(ids []int64, minFailed int64) int64 {
	var best int64
	for _, id := range ids {
		if minFailed >= 0 && id >= minFailed {
			continue
		}
		best = max(best, id)
	}
	return best
}

// fetchPlan is the set of fetches one run makes. Only orders returned by
// cursor count towards the checkpoint; recheck picks up recent changes to
// orders the checkpoint has already passed.
type fetchPlan struct {
	cursor  FetchQuery
	recheck *FetchQuery
	save    bool
	from    int64
}

func (p fetchPlan) String() string {
	if p.recheck == nil {
		return p.cursor.String()
	}
	return p.cursor.String() + ", " + p.recheck.String()
}

// plan resolves the fetch window. Only runs positioned by the checkpoint
// itself, or by the time window while the checkpoint is still empty, may
// move it, and never backwards.
func (d *Driver) plan(ro RunOptions, log *slog.Logger) fetchPlan {
	p := fetchPlan{cursor: FetchQuery{Limit: d.opts.PageLimit}}
	window := d.opts.Now().Add(-d.opts.Lookback)
	if ro.ResumeAfter > 0 {
		p.cursor.SinceID = ro.ResumeAfter
		return p
	}
	if d.opts.Checkpoint != nil {
		id, ok, err := d.opts.Checkpoint.Load()
		switch {
		case err != nil:
			log.Warn("failed to load checkpoint, using time window", "error", err)
		case ok && id > 0:
			p.cursor.SinceID = id
			p.recheck = &FetchQuery{UpdatedAtMin: window, Limit: d.opts.PageLimit}
			p.save, p.from = true, id
			return p
		default:
			p.save = true
		}
	}
	p.cursor.CreatedAtMin = window
	return p
}

// fetch runs the plan and returns the orders with duplicates from the
// recheck dropped. Orders before index fromCursor came from the cursor.
func (d *Driver) fetch(ctx context.Context, p fetchPlan) ([]model.RawOrder, int, error) {
	orders, err := d.source.FetchOrders(ctx, p.cursor)
	if err != nil {
		return nil, 0, err
	}
	fromCursor := len(orders)
	if p.recheck == nil {
		return orders, fromCursor, nil
	}

	recent, err := d.source.FetchOrders(ctx, *p.recheck)
	if err != nil {
		return nil, 0, err
	}
	seen := make(map[string]bool, len(orders))
	for _, o := range orders {
		if id := strings.TrimSpace(o.ID.OrEmpty()); id != "" {
			seen[id] = true
		}
	}
	for _, o := range recent {
		if id := strings.TrimSpace(o.ID.OrEmpty()); id != "" && seen[id] {
			continue
		}
		orders = append(orders, o)
	}
	return orders, fromCursor, nil
}

func (d *Driver) reconcileOrder(ctx context.Context, log *slog.Logger, runID string, raw model.RawOrder) (string, error) {
	number, err := OrderNumber(raw)
	if err != nil {
		return OutcomeFailed, err
	}
	orderID := OrderID(number)

	var stored *model.StoredOrder
	err = d.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		stored, err = d.store.GetOrder(ctx, orderID)
		return err
	})
	switch {
	case errors.Is(err, ErrNotFound):
		stored = nil
	case err != nil:
		return OutcomeFailed, fmt.Errorf("%w: get %s: %w", ErrPersistence, orderID, err)
	}

	order, err := NormalizeOrder(raw, d.opts.Now().UTC())
	if err != nil {
		return OutcomeFailed, err
	}
	items := ExpandLineItems(raw.LineItems, orderID)

	if stored == nil {
		if err := d.insert(ctx, log, order, items); err != nil {
			return OutcomeFailed, err
		}
		log.Info("inserted order", "order_id", orderID, "line_items", len(items))
		d.publish(ctx, log, model.EventOrderInserted, runID, order, len(items))
		return OutcomeInserted, nil
	}

	decision := NeedsUpdate(order, *stored)
	if !decision.Update {
		log.Info("order is up to date, skipping", "order_id", orderID)
		return OutcomeSkipped, nil
	}
	log.Info("order needs updating", "order_id", orderID, "reason", decision.Reason)

	if err := d.update(ctx, log, order, items); err != nil {
		return OutcomeFailed, err
	}
	log.Info("updated order", "order_id", orderID, "line_items", len(items))
	d.publish(ctx, log, model.EventOrderUpdated, runID, order, len(items))
	return OutcomeUpdated, nil
}

func (d *Driver) insert(ctx context.Context, log *slog.Logger, order model.CanonicalOrder, items []model.CanonicalLineItem) error {
	if tx, ok := d.store.(Transactor); ok {
		return d.withTimeout(ctx, func(ctx context.Context) error {
			return tx.InTx(ctx, func(s OrderStore) error {
				if err := s.InsertOrder(ctx, order); err != nil {
					return fmt.Errorf("%w: insert %s: %w", ErrPersistence, order.OrderID, err)
				}
				if err := s.InsertLineItems(ctx, items); err != nil {
					return fmt.Errorf("%w: insert line items for %s: %w", ErrPersistence, order.OrderID, err)
				}
				return nil
			})
		})
	}

	if err := d.withTimeout(ctx, func(ctx context.Context) error { return d.store.InsertOrder(ctx, order) }); err != nil {
		return fmt.Errorf("%w: insert %s: %w", ErrPersistence, order.OrderID, err)
	}
	if err := d.withTimeout(ctx, func(ctx context.Context) error { return d.store.InsertLineItems(ctx, items) }); err != nil {
		undo := d.withTimeout(ctx, func(ctx context.Context) error { return d.store.DeleteOrder(ctx, order.OrderID) })
		if undo != nil {
			log.Warn("failed to remove order after line item failure", "order_id", order.OrderID, "error", undo)
		}
		return fmt.Errorf("%w: insert line items for %s: %w", ErrPersistence, order.OrderID, err)
	}
	return nil
}

func (d *Driver) update(ctx context.Context, log *slog.Logger, order model.CanonicalOrder, items []model.CanonicalLineItem) error {
	if tx, ok := d.store.(Transactor); ok {
		return d.withTimeout(ctx, func(ctx context.Context) error {
			return tx.InTx(ctx, func(s OrderStore) error {
				if err := s.UpdateOrder(ctx, order.OrderID, order); err != nil {
					return fmt.Errorf("%w: update %s: %w", ErrPersistence, order.OrderID, err)
				}
				if err := s.DeleteLineItems(ctx, order.OrderID); err != nil {
					return fmt.Errorf("%w: delete line items for %s: %w", ErrPersistence, order.OrderID, err)
				}
				if err := s.InsertLineItems(ctx, items); err != nil {
					return fmt.Errorf("%w: insert line items for %s: %w", ErrPersistence, order.OrderID, err)
				}
				return nil
			})
		})
	}

	if err := d.withTimeout(ctx, func(ctx context.Context) error { return d.store.UpdateOrder(ctx, order.OrderID, order) }); err != nil {
		return fmt.Errorf("%w: update %s: %w", ErrPersistence, order.OrderID, err)
	}
	// Line items are upserted by position, so a failed delete can leave
	// stale trailing items but never duplicates.
	if err := d.withTimeout(ctx, func(ctx context.Context) error { return d.store.DeleteLineItems(ctx, order.OrderID) }); err != nil {
		log.Warn("failed to delete old line items", "order_id", order.OrderID, "error", err)
	}
	if err := d.withTimeout(ctx, func(ctx context.Context) error { return d.store.InsertLineItems(ctx, items) }); err != nil {
		return fmt.Errorf("%w: insert line items for %s: %w", ErrPersistence, order.OrderID, err)
	}
	return nil
}

func (d *Driver) publish(ctx context.Context, log *slog.Logger, typ, runID string, order model.CanonicalOrder, items int) {
	if d.opts.Events == nil {
		return
	}
	ev := model.OrderEvent{
		Type:       typ,
		OrderID:    order.OrderID,
		RunID:      runID,
		Total:      order.Total.StringFixed(2),
		Items:      items,
		OccurredAt: order.UpdatedAt,
	}
	err := d.withTimeout(ctx, func(ctx context.Context) error { return d.opts.Events.Publish(ctx, ev) })
	if err != nil {
		log.Warn("failed to publish order event", "order_id", order.OrderID, "type", typ, "error", err)
	}
}

func (d *Driver) finish(ctx context.Context, log *slog.Logger, run *model.SyncRun) {
	run.FinishedAt = d.opts.Now()
	log.Info("order sync finished",
		"status", run.Status,
		"fetched", run.Fetched,
		"inserted", run.Inserted,
		"updated", run.Updated,
		"skipped", run.Skipped,
		"failed", run.Failed,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)
	if d.opts.Metrics != nil {
		d.opts.Metrics.ObserveRun(*run)
	}
	if d.opts.Runs != nil {
		err := d.withTimeout(ctx, func(ctx context.Context) error { return d.opts.Runs.RecordRun(ctx, *run) })
		if err != nil {
			log.Warn("failed to record sync run", "error", err)
		}
	}
}

func (d *Driver) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.StoreTimeout)
	defer cancel()
	return fn(ctx)
}
