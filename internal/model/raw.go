package model

import "encoding/json"

// RawOrder is an order as delivered by the storefront API. Nothing in it is
// trusted; every field may be absent.
type RawOrder struct {
	ID                Text         `json:"id"`
	OrderNumber       Text         `json:"order_number"`
	CreatedAt         Text         `json:"created_at"`
	UpdatedAt         Text         `json:"updated_at"`
	Customer          *RawCustomer `json:"customer"`
	ContactEmail      Text         `json:"contact_email"`
	Email             Text         `json:"email"`
	Phone             Text         `json:"phone"`
	TotalPrice        Text         `json:"total_price"`
	FulfillmentStatus Text         `json:"fulfillment_status"`
	Note              Text         `json:"note"`
	NoteAttributes    Attributes   `json:"note_attributes"`
	LineItems         RawLineItems `json:"line_items"`
}

type RawCustomer struct {
	FirstName Text `json:"first_name"`
	LastName  Text `json:"last_name"`
}

func (c *RawCustomer) UnmarshalJSON(b []byte) error {
	type plain RawCustomer
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		*c = RawCustomer{}
		return nil
	}
	*c = RawCustomer(p)
	return nil
}

type RawLineItem struct {
	Title        Text       `json:"title"`
	VariantTitle Text       `json:"variant_title"`
	Price        Text       `json:"price"`
	Quantity     Text       `json:"quantity"`
	Properties   Attributes `json:"properties"`
}

// RawLineItems drops entries that are not JSON objects.
type RawLineItems []RawLineItem

func (l *RawLineItems) UnmarshalJSON(b []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	out := make(RawLineItems, 0, len(raw))
	for _, r := range raw {
		var item RawLineItem
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	*l = out
	return nil
}
