package reconcile

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordersync/internal/model"
)

var syncedAt = time.Date(2024, 12, 21, 9, 30, 0, 0, time.UTC)

func decodeOrder(t *testing.T, js string) model.RawOrder {
	t.Helper()
	var raw model.RawOrder
	require.NoError(t, json.Unmarshal([]byte(js), &raw))
	return raw
}

func TestOrderID_Deterministic(t *testing.T) {
	for _, n := range []int64{0, 1, 1001, 987654321} {
		assert.Equal(t, "WEB"+strconv.FormatInt(n, 10), OrderID(n))
		assert.Equal(t, OrderID(n), OrderID(n))
	}

	a := decodeOrder(t, `{"order_number": 1042, "total_price": "10.00", "created_at": "2024-12-20T10:00:00-05:00"}`)
	b := decodeOrder(t, `{"order_number": "1042", "total_price": "99.00", "note": "different"}`)
	na, err := OrderNumber(a)
	require.NoError(t, err)
	nb, err := OrderNumber(b)
	require.NoError(t, err)
	assert.Equal(t, "WEB1042", OrderID(na))
	assert.Equal(t, OrderID(na), OrderID(nb))
}

func TestNormalizeOrder_Full(t *testing.T) {
	raw := decodeOrder(t, `{
		"id": 5551234,
		"order_number": 1042,
		"created_at": "2024-12-20T22:15:00-06:00",
		"updated_at": "2024-12-20T22:20:00-06:00",
		"customer": {"first_name": "Ada", "last_name": null},
		"contact_email": "ada@example.com",
		"email": "other@example.com",
		"phone": "+13125550100",
		"total_price": "48.50",
		"fulfillment_status": null,
		"note": "Leave at door",
		"note_attributes": [
			{"name": "Checkout-Method", "value": "Pickup"},
			{"name": "Pickup-Date", "value": "2024/12/24"},
			{"name": "Pickup-Time", "value": "11:00 AM"}
		]
	}`)

	order, err := NormalizeOrder(raw, syncedAt)
	require.NoError(t, err)

	assert.Equal(t, "WEB1042", order.OrderID)
	assert.Equal(t, int64(1042), order.WebOrderID)
	assert.Equal(t, "2024-12-20", order.OrderDate, "date is taken in the order's own offset")
	assert.Equal(t, "Ada", order.CustomerFirstName)
	assert.Equal(t, "", order.CustomerLastName)
	assert.Equal(t, "ada@example.com", order.Email)
	assert.Equal(t, "+13125550100", order.Phone)
	assert.True(t, decimal.RequireFromString("48.50").Equal(order.Total))
	assert.Equal(t, "", order.FulfillmentStatus)
	require.NotNil(t, order.PickupDate)
	assert.Equal(t, "2024-12-24", *order.PickupDate)
	require.NotNil(t, order.PickupTime)
	assert.Equal(t, "11:00 AM", *order.PickupTime)
	require.NotNil(t, order.Special)
	assert.Equal(t, "Pickup | Note: Leave at door", *order.Special)
	assert.Equal(t, "Web", order.OrderType)
	assert.Equal(t, "Web", order.OrderTaker)
	assert.Equal(t, "New", order.Status)
	assert.Equal(t, syncedAt, order.UpdatedAt)
	assert.Equal(t, "2024-12-20T22:20:00-06:00", order.SourceUpdatedAt)
}

func TestNormalizeOrder_Defaults(t *testing.T) {
	raw := decodeOrder(t, `{"order_number": 7, "created_at": "2024-12-20T10:00:00Z", "email": "e@example.com", "total_price": "abc", "customer": "nope"}`)

	order, err := NormalizeOrder(raw, syncedAt)
	require.NoError(t, err)
	assert.Equal(t, "e@example.com", order.Email)
	assert.True(t, order.Total.IsZero())
	assert.Equal(t, "", order.CustomerFirstName)
	assert.Equal(t, "", order.Phone)
	assert.Nil(t, order.PickupDate)
	assert.Nil(t, order.PickupTime)
	assert.Nil(t, order.Special)
}

func TestNormalizeOrder_RequiresCreatedAt(t *testing.T) {
	_, err := NormalizeOrder(decodeOrder(t, `{"order_number": 7}`), syncedAt)
	require.ErrorIs(t, err, ErrParse)

	_, err = NormalizeOrder(decodeOrder(t, `{"order_number": 7, "created_at": "yesterday"}`), syncedAt)
	require.ErrorIs(t, err, ErrParse)

	_, err = NormalizeOrder(decodeOrder(t, `{"created_at": "2024-12-20T10:00:00Z"}`), syncedAt)
	require.ErrorIs(t, err, ErrParse)
}

func TestNormalizeOrder_ShippingDateFallback(t *testing.T) {
	raw := decodeOrder(t, `{"order_number": 7, "created_at": "2024-12-20T10:00:00Z", "note_attributes": [
		{"name": "Pickup-Date", "value": ""},
		{"name": "Shipping-Date", "value": "2024-12-27"}
	]}`)
	order, err := NormalizeOrder(raw, syncedAt)
	require.NoError(t, err)
	require.NotNil(t, order.PickupDate)
	assert.Equal(t, "2024-12-27", *order.PickupDate)
}

func TestNormalizeOrder_InvalidPickupDateLeavesFieldAbsent(t *testing.T) {
	raw := decodeOrder(t, `{"order_number": 7, "created_at": "2024-12-20T10:00:00Z", "note_attributes": [
		{"name": "Pickup-Date", "value": "25/12/2024"}
	]}`)
	order, err := NormalizeOrder(raw, syncedAt)
	require.NoError(t, err)
	assert.Nil(t, order.PickupDate)
}

func TestNormalizeOrder_NoteOnly(t *testing.T) {
	raw := decodeOrder(t, `{"order_number": 7, "created_at": "2024-12-20T10:00:00Z", "note": "Happy birthday"}`)
	order, err := NormalizeOrder(raw, syncedAt)
	require.NoError(t, err)
	require.NotNil(t, order.Special)
	assert.Equal(t, "Note: Happy birthday", *order.Special)
}

func TestNormalizePickupDate(t *testing.T) {
	for _, in := range []string{"2024/12/25", "2024-12-25"} {
		got, err := NormalizePickupDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2024-12-25", got)
	}

	got, err := NormalizePickupDate("2024/1/5")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", got)

	for _, in := range []string{"25/12/2024", "12-25-2024", "Christmas", ""} {
		_, err := NormalizePickupDate(in)
		assert.Error(t, err, in)
	}
}
