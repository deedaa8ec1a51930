package reconcile

import (
	"strconv"
	"strings"

	"ordersync/internal/model"
)

// PositionLabel maps a zero-based item index to a spreadsheet-style column
// label: 0 is A, 25 is Z, 26 is AA, 51 is AZ, 52 is BA.
func PositionLabel(i int) string {
	if i < 0 {
		return ""
	}
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('A'+(n-1)%26))
	}
	for l, r := 0, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return string(buf)
}

// ExpandLineItems builds the canonical line items for orderID in source order.
func ExpandLineItems(items []model.RawLineItem, orderID string) []model.CanonicalLineItem {
	out := make([]model.CanonicalLineItem, 0, len(items))
	for i, item := range items {
		title := item.Title.OrEmpty()
		size := item.VariantTitle.OrEmpty()
		if size == "None" {
			size = ""
		}

		li := model.CanonicalLineItem{
			OrderID:     orderID,
			LineItem:    PositionLabel(i),
			Type:        title,
			Size:        size,
			Description: strings.TrimSpace(title + " " + size),
			UnitPrice:   parseMoney(item.Price),
			Quantity:    parseQuantity(item.Quantity),
			Category:    Classify(title),
		}
		if v, ok := Attribute(item.Properties, propCakeWriting); ok {
			li.WritingNotes = &v
		}
		if v, ok := Attribute(item.Properties, propWritingColor); ok {
			li.Color = &v
		}
		out = append(out, li)
	}
	return out
}

func parseQuantity(t model.Text) int {
	if !t.Valid {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(t.String))
	if err != nil {
		return 1
	}
	return n
}
