package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ordersync/internal/model"
)

// Totals closer than this are considered unchanged.
var totalEpsilon = decimal.New(1, -2)

// Decision is the outcome of comparing a fresh order with its stored row.
type Decision struct {
	Update bool
	Reason string
}

// NeedsUpdate decides whether the stored row must be replaced by fresh.
// When timestamps cannot be compared it errs towards writing.
func NeedsUpdate(fresh model.CanonicalOrder, stored model.StoredOrder) Decision {
	if fresh.SourceUpdatedAt != "" && stored.UpdatedAt != "" {
		src, err := parseTimestamp(fresh.SourceUpdatedAt)
		if err != nil {
			return Decision{Update: true, Reason: fmt.Sprintf("source updated_at: %v", err)}
		}
		synced, err := parseTimestamp(stored.UpdatedAt)
		if err != nil {
			return Decision{Update: true, Reason: fmt.Sprintf("stored updated_at: %v", err)}
		}
		if src.After(synced) {
			return Decision{Update: true, Reason: fmt.Sprintf("order updated %s after last sync %s", fresh.SourceUpdatedAt, stored.UpdatedAt)}
		}
	}

	if fresh.Total.Sub(stored.Total).Abs().GreaterThan(totalEpsilon) {
		return Decision{Update: true, Reason: fmt.Sprintf("total changed: %s vs stored %s", fresh.Total.StringFixed(2), stored.Total.StringFixed(2))}
	}

	if fresh.FulfillmentStatus != stored.FulfillmentStatus {
		return Decision{Update: true, Reason: fmt.Sprintf("fulfillment status changed: %q vs stored %q", fresh.FulfillmentStatus, stored.FulfillmentStatus)}
	}

	return Decision{Reason: "up to date"}
}
