package database

import (
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS customer_orders (
    order_id TEXT PRIMARY KEY,
    web_order_id BIGINT NOT NULL,
    order_date DATE NOT NULL,
    customer_first_name TEXT NOT NULL DEFAULT '',
    customer_last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL DEFAULT '',
    total NUMERIC(10,2) NOT NULL DEFAULT 0,
    fulfillment_status TEXT NOT NULL DEFAULT '',
    due_pickup_date DATE,
    due_pickup_time TEXT,
    special TEXT,
    order_type TEXT NOT NULL DEFAULT 'Web',
    order_taker TEXT NOT NULL DEFAULT 'Web',
    status TEXT NOT NULL DEFAULT 'New',
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_line_items (
    id BIGSERIAL PRIMARY KEY,
    order_id TEXT NOT NULL REFERENCES customer_orders(order_id) ON DELETE CASCADE,
    line_item TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    size TEXT NOT NULL DEFAULT '',
    product_description TEXT NOT NULL DEFAULT '',
    unit_price NUMERIC(10,2) NOT NULL DEFAULT 0,
    cake_qty INTEGER NOT NULL DEFAULT 1,
    category TEXT NOT NULL DEFAULT 'Cake',
    writing_notes TEXT,
    color TEXT,
    UNIQUE (order_id, line_item)
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id UUID PRIMARY KEY,
    started_at TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL,
    fetch_window TEXT NOT NULL,
    fetched INTEGER NOT NULL DEFAULT 0,
    inserted INTEGER NOT NULL DEFAULT 0,
    updated INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    max_order_id BIGINT NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_customer_orders_order_date ON customer_orders(order_date);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS customer_orders (
    order_id TEXT PRIMARY KEY,
    web_order_id INTEGER NOT NULL,
    order_date TEXT NOT NULL,
    customer_first_name TEXT NOT NULL DEFAULT '',
    customer_last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    phone_number TEXT NOT NULL DEFAULT '',
    total NUMERIC NOT NULL DEFAULT 0,
    fulfillment_status TEXT NOT NULL DEFAULT '',
    due_pickup_date TEXT,
    due_pickup_time TEXT,
    special TEXT,
    order_type TEXT NOT NULL DEFAULT 'Web',
    order_taker TEXT NOT NULL DEFAULT 'Web',
    status TEXT NOT NULL DEFAULT 'New',
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_line_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id TEXT NOT NULL REFERENCES customer_orders(order_id) ON DELETE CASCADE,
    line_item TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    size TEXT NOT NULL DEFAULT '',
    product_description TEXT NOT NULL DEFAULT '',
    unit_price NUMERIC NOT NULL DEFAULT 0,
    cake_qty INTEGER NOT NULL DEFAULT 1,
    category TEXT NOT NULL DEFAULT 'Cake',
    writing_notes TEXT,
    color TEXT,
    UNIQUE (order_id, line_item)
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    fetch_window TEXT NOT NULL,
    fetched INTEGER NOT NULL DEFAULT 0,
    inserted INTEGER NOT NULL DEFAULT 0,
    updated INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    max_order_id INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_customer_orders_order_date ON customer_orders(order_date);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

func InitSchema(db *DB) error {
	schema := postgresSchema
	if db.Driver == DriverSQLite {
		schema = sqliteSchema
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
