package reconcile

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ordersync/internal/model"
)

const dateLayout = "2006-01-02"

// Layouts accepted for storefront and stored timestamps. Layouts without a
// zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// OrderID derives the store key for an order number.
func OrderID(number int64) string {
	return model.OrderIDPrefix + strconv.FormatInt(number, 10)
}

// OrderNumber reads the numeric order number of a raw order.
func OrderNumber(raw model.RawOrder) (int64, error) {
	if !raw.OrderNumber.Valid {
		return 0, fmt.Errorf("%w: missing order_number", ErrParse)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw.OrderNumber.String), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: order_number %q is not an integer", ErrParse, raw.OrderNumber.String)
	}
	return n, nil
}

// NormalizeOrder builds the canonical order for raw, stamping it as synced
// at now. Line items are not expanded here.
func NormalizeOrder(raw model.RawOrder, now time.Time) (model.CanonicalOrder, error) {
	number, err := OrderNumber(raw)
	if err != nil {
		return model.CanonicalOrder{}, err
	}
	orderID := OrderID(number)

	if !raw.CreatedAt.Valid || strings.TrimSpace(raw.CreatedAt.String) == "" {
		return model.CanonicalOrder{}, fmt.Errorf("%w: %s has no created_at", ErrParse, orderID)
	}
	created, err := parseTimestamp(raw.CreatedAt.String)
	if err != nil {
		return model.CanonicalOrder{}, fmt.Errorf("%w: %s created_at: %v", ErrParse, orderID, err)
	}

	order := model.CanonicalOrder{
		OrderID:           orderID,
		WebOrderID:        number,
		OrderDate:         created.Format(dateLayout),
		Email:             raw.Email.OrEmpty(),
		Phone:             raw.Phone.OrEmpty(),
		Total:             parseMoney(raw.TotalPrice),
		FulfillmentStatus: raw.FulfillmentStatus.OrEmpty(),
		OrderType:         model.OrderTypeWeb,
		OrderTaker:        model.OrderTypeWeb,
		Status:            model.StatusNew,
		UpdatedAt:         now,
		SourceUpdatedAt:   strings.TrimSpace(raw.UpdatedAt.OrEmpty()),
	}
	if raw.Customer != nil {
		order.CustomerFirstName = raw.Customer.FirstName.OrEmpty()
		order.CustomerLastName = raw.Customer.LastName.OrEmpty()
	}
	if raw.ContactEmail.OrEmpty() != "" {
		order.Email = raw.ContactEmail.String
	}

	attrs := raw.NoteAttributes
	pickup, ok := nonEmptyAttribute(attrs, attrPickupDate)
	if !ok {
		pickup, ok = nonEmptyAttribute(attrs, attrShippingDate)
	}
	if ok {
		if d, err := NormalizePickupDate(pickup); err != nil {
			slog.Warn("invalid pickup date format", "order_id", orderID, "value", pickup, "error", err)
		} else {
			order.PickupDate = &d
		}
	}
	if t, ok := nonEmptyAttribute(attrs, attrPickupTime); ok {
		order.PickupTime = &t
	}

	var special string
	if method, ok := nonEmptyAttribute(attrs, attrCheckoutMethod); ok {
		special = method
	}
	if note := raw.Note.OrEmpty(); note != "" {
		special = appendSpecial(special, "Note: "+note)
	}
	if special != "" {
		order.Special = &special
	}

	return order, nil
}

// NormalizePickupDate accepts YYYY/MM/DD or YYYY-MM-DD and returns YYYY-MM-DD.
func NormalizePickupDate(s string) (string, error) {
	layout := "2006-1-2"
	if strings.Contains(s, "/") {
		layout = "2006/1/2"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", err
	}
	return t.Format(dateLayout), nil
}

func appendSpecial(existing, part string) string {
	if existing == "" {
		return part
	}
	return existing + " | " + part
}

// parseMoney reads a currency amount, treating absent or invalid values as zero.
func parseMoney(t model.Text) decimal.Decimal {
	if !t.Valid {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(t.String))
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}
