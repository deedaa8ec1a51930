package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderIDPrefix = "WEB"
	OrderTypeWeb  = "Web"
	StatusNew     = "New"
)

// CanonicalOrder is the store-ready form of a RawOrder. It is rebuilt from
// scratch on every sync pass and never mutated afterwards.
type CanonicalOrder struct {
	OrderID           string          `json:"order_id"`
	WebOrderID        int64           `json:"web_order_id"`
	OrderDate         string          `json:"order_date"` // YYYY-MM-DD
	CustomerFirstName string          `json:"customer_first_name"`
	CustomerLastName  string          `json:"customer_last_name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone_number"`
	Total             decimal.Decimal `json:"total"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	PickupDate        *string         `json:"due_pickup_date,omitempty"`
	PickupTime        *string         `json:"due_pickup_time,omitempty"`
	Special           *string         `json:"special,omitempty"`
	OrderType         string          `json:"order_type"`
	OrderTaker        string          `json:"order_taker"`
	Status            string          `json:"status"`
	UpdatedAt         time.Time       `json:"updated_at"`

	// SourceUpdatedAt is the storefront's own update timestamp. It is only
	// used for change detection and is not persisted.
	SourceUpdatedAt string `json:"-"`

	LineItems []CanonicalLineItem `json:"line_items,omitempty"`
}

type CanonicalLineItem struct {
	OrderID      string          `json:"order_id"`
	LineItem     string          `json:"line_item"`
	Type         string          `json:"type"`
	Size         string          `json:"size"`
	Description  string          `json:"product_description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"cake_qty"`
	Category     string          `json:"category"`
	WritingNotes *string         `json:"writing_notes,omitempty"`
	Color        *string         `json:"color,omitempty"`
}

// StoredOrder is the subset of a persisted order the change detector needs.
type StoredOrder struct {
	OrderID           string
	Total             decimal.Decimal
	FulfillmentStatus string
	UpdatedAt         string
}
