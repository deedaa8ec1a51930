package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ordersync/internal/model"
)

func freshOrder(total, fulfillment, sourceUpdated string) model.CanonicalOrder {
	return model.CanonicalOrder{
		OrderID:           "WEB1",
		Total:             decimal.RequireFromString(total),
		FulfillmentStatus: fulfillment,
		SourceUpdatedAt:   sourceUpdated,
	}
}

func storedOrder(total, fulfillment, updated string) model.StoredOrder {
	return model.StoredOrder{
		OrderID:           "WEB1",
		Total:             decimal.RequireFromString(total),
		FulfillmentStatus: fulfillment,
		UpdatedAt:         updated,
	}
}

func TestNeedsUpdate(t *testing.T) {
	tests := []struct {
		name   string
		fresh  model.CanonicalOrder
		stored model.StoredOrder
		want   bool
	}{
		{
			name:   "unchanged",
			fresh:  freshOrder("25.00", "", "2024-12-20T10:00:00-05:00"),
			stored: storedOrder("25.00", "", "2024-12-21T00:00:00Z"),
			want:   false,
		},
		{
			name:   "source updated after last sync",
			fresh:  freshOrder("25.00", "", "2024-12-21T10:00:00Z"),
			stored: storedOrder("25.00", "", "2024-12-21T09:59:59.5Z"),
			want:   true,
		},
		{
			name:   "equal timestamps are not later",
			fresh:  freshOrder("25.00", "", "2024-12-21T10:00:00Z"),
			stored: storedOrder("25.00", "", "2024-12-21T05:00:00-05:00"),
			want:   false,
		},
		{
			name:   "total beyond epsilon",
			fresh:  freshOrder("25.02", "", ""),
			stored: storedOrder("25.00", "", ""),
			want:   true,
		},
		{
			name:   "total within epsilon",
			fresh:  freshOrder("25.01", "", ""),
			stored: storedOrder("25.00", "", ""),
			want:   false,
		},
		{
			name:   "fulfillment changed",
			fresh:  freshOrder("25.00", "fulfilled", ""),
			stored: storedOrder("25.00", "", ""),
			want:   true,
		},
		{
			name:   "malformed stored timestamp",
			fresh:  freshOrder("25.00", "", "2024-12-21T10:00:00Z"),
			stored: storedOrder("25.00", "", "last tuesday"),
			want:   true,
		},
		{
			name:   "missing source timestamp falls through",
			fresh:  freshOrder("25.00", "", ""),
			stored: storedOrder("25.00", "", "last tuesday"),
			want:   false,
		},
		{
			name:   "naive stored timestamp read as UTC",
			fresh:  freshOrder("25.00", "", "2024-12-21T10:00:00Z"),
			stored: storedOrder("25.00", "", "2024-12-21T11:00:00.123456"),
			want:   false,
		},
		{
			name:   "postgres text timestamp",
			fresh:  freshOrder("25.00", "", "2024-12-21T10:00:00Z"),
			stored: storedOrder("25.00", "", "2024-12-21 09:00:00.5+00"),
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeedsUpdate(tt.fresh, tt.stored)
			assert.Equal(t, tt.want, got.Update, got.Reason)
			assert.NotEmpty(t, got.Reason)
		})
	}
}
