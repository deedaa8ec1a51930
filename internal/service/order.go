package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ordersync/internal/database"
	"ordersync/internal/model"
	"ordersync/internal/reconcile"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OrderService stores canonical orders in customer_orders and
// order_line_items. It implements reconcile.OrderStore and reconcile.Transactor.
type OrderService struct {
	db *database.DB
	q  querier
}

func NewOrderService(db *database.DB) *OrderService {
	return &OrderService{db: db, q: db.DB}
}

func (s *OrderService) InTx(ctx context.Context, fn func(reconcile.OrderStore) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&OrderService{db: s.db, q: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.StoredOrder, error) {
	var (
		o           model.StoredOrder
		fulfillment sql.NullString
		updatedAt   sql.NullString
	)
	err := s.q.QueryRowContext(ctx,
		s.db.Rebind(`SELECT order_id, total, fulfillment_status, updated_at FROM customer_orders WHERE order_id = ?`),
		orderID,
	).Scan(&o.OrderID, &o.Total, &fulfillment, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reconcile.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.FulfillmentStatus = fulfillment.String
	o.UpdatedAt = updatedAt.String
	return &o, nil
}

func (s *OrderService) InsertOrder(ctx context.Context, o model.CanonicalOrder) error {
	_, err := s.q.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO customer_orders (
			order_id, web_order_id, order_date, customer_first_name, customer_last_name,
			email, phone_number, total, fulfillment_status, due_pickup_date, due_pickup_time,
			special, order_type, order_taker, status, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		o.OrderID, o.WebOrderID, o.OrderDate, o.CustomerFirstName, o.CustomerLastName,
		o.Email, o.Phone, o.Total, o.FulfillmentStatus, nullString(o.PickupDate), nullString(o.PickupTime),
		nullString(o.Special), o.OrderType, o.OrderTaker, o.Status, formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, o model.CanonicalOrder) error {
	res, err := s.q.ExecContext(ctx, s.db.Rebind(`
		UPDATE customer_orders SET
			web_order_id = ?, order_date = ?, customer_first_name = ?, customer_last_name = ?,
			email = ?, phone_number = ?, total = ?, fulfillment_status = ?, due_pickup_date = ?,
			due_pickup_time = ?, special = ?, order_type = ?, order_taker = ?, status = ?, updated_at = ?
		WHERE order_id = ?`),
		o.WebOrderID, o.OrderDate, o.CustomerFirstName, o.CustomerLastName,
		o.Email, o.Phone, o.Total, o.FulfillmentStatus, nullString(o.PickupDate),
		nullString(o.PickupTime), nullString(o.Special), o.OrderType, o.OrderTaker, o.Status, formatTime(o.UpdatedAt),
		orderID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n == 0 {
		return reconcile.ErrNotFound
	}
	return nil
}

// DeleteOrder removes an order together with its line items.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	if err := s.DeleteLineItems(ctx, orderID); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, s.db.Rebind(`DELETE FROM customer_orders WHERE order_id = ?`), orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (s *OrderService) DeleteLineItems(ctx context.Context, orderID string) error {
	_, err := s.q.ExecContext(ctx, s.db.Rebind(`DELETE FROM order_line_items WHERE order_id = ?`), orderID)
	if err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	return nil
}

// InsertLineItems upserts by (order_id, line_item).
func (s *OrderService) InsertLineItems(ctx context.Context, items []model.CanonicalLineItem) error {
	query := s.db.Rebind(`
		INSERT INTO order_line_items (
			order_id, line_item, type, size, product_description, unit_price,
			cake_qty, category, writing_notes, color
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id, line_item) DO UPDATE SET
			type = excluded.type,
			size = excluded.size,
			product_description = excluded.product_description,
			unit_price = excluded.unit_price,
			cake_qty = excluded.cake_qty,
			category = excluded.category,
			writing_notes = excluded.writing_notes,
			color = excluded.color`)

	for _, it := range items {
		_, err := s.q.ExecContext(ctx, query,
			it.OrderID, it.LineItem, it.Type, it.Size, it.Description, it.UnitPrice,
			it.Quantity, it.Category, nullString(it.WritingNotes), nullString(it.Color),
		)
		if err != nil {
			return fmt.Errorf("insert line item %s/%s: %w", it.OrderID, it.LineItem, err)
		}
	}
	return nil
}

const orderColumns = `order_id, web_order_id, CAST(order_date AS TEXT), customer_first_name, customer_last_name,
	email, phone_number, total, fulfillment_status, CAST(due_pickup_date AS TEXT), due_pickup_time,
	special, order_type, order_taker, status, updated_at`

// ListOrders returns the most recent orders by order number, without line items.
func (s *OrderService) ListOrders(ctx context.Context, limit int) ([]model.CanonicalOrder, error) {
	rows, err := s.q.QueryContext(ctx, s.db.Rebind(`
		SELECT `+orderColumns+`
		FROM customer_orders
		ORDER BY web_order_id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.CanonicalOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

// GetOrderDetails returns one order with its line items in label order.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID string) (*model.CanonicalOrder, error) {
	row := s.q.QueryRowContext(ctx, s.db.Rebind(`SELECT `+orderColumns+` FROM customer_orders WHERE order_id = ?`), orderID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reconcile.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, s.db.Rebind(`
		SELECT order_id, line_item, type, size, product_description, unit_price,
			cake_qty, category, writing_notes, color
		FROM order_line_items
		WHERE order_id = ?
		ORDER BY LENGTH(line_item), line_item`), orderID)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it           model.CanonicalLineItem
			writingNotes sql.NullString
			color        sql.NullString
		)
		if err := rows.Scan(&it.OrderID, &it.LineItem, &it.Type, &it.Size, &it.Description, &it.UnitPrice,
			&it.Quantity, &it.Category, &writingNotes, &color); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		it.WritingNotes = stringPtr(writingNotes)
		it.Color = stringPtr(color)
		o.LineItems = append(o.LineItems, it)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return &o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (model.CanonicalOrder, error) {
	var (
		o                                          model.CanonicalOrder
		pickupDate, pickupTime, special, updatedAt sql.NullString
		total                                      decimal.Decimal
	)
	err := r.Scan(&o.OrderID, &o.WebOrderID, &o.OrderDate, &o.CustomerFirstName, &o.CustomerLastName,
		&o.Email, &o.Phone, &total, &o.FulfillmentStatus, &pickupDate, &pickupTime,
		&special, &o.OrderType, &o.OrderTaker, &o.Status, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, err
		}
		return o, fmt.Errorf("scan order: %w", err)
	}
	o.Total = total
	o.PickupDate = stringPtr(pickupDate)
	o.PickupTime = stringPtr(pickupTime)
	o.Special = stringPtr(special)
	o.UpdatedAt = parseTime(updatedAt.String)
	return o, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime reads timestamps written by formatTime, or converted from a
// timestamptz column by database/sql. Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
