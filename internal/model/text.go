package model

import (
	"bytes"
	"encoding/json"
)

// Text is an optional scalar decoded leniently from JSON, shaped like
// sql.NullString. Strings are kept as-is, numbers and booleans keep their
// literal text, and null, objects or arrays leave it invalid.
type Text struct {
	String string
	Valid  bool
}

func NewText(s string) Text {
	return Text{String: s, Valid: true}
}

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 'n', '{', '[':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*t = Text{String: s, Valid: true}
	default:
		*t = Text{String: string(b), Valid: true}
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String)
}

// OrEmpty returns the value, or "" when absent.
func (t Text) OrEmpty() string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// Attribute is a single name/value pair from note_attributes or line item properties.
type Attribute struct {
	Name  string `json:"name"`
	Value Text   `json:"value"`
}

// Attributes decodes a name/value list leniently: anything that is not a
// list decodes to nil and malformed entries are dropped.
type Attributes []Attribute

func (a *Attributes) UnmarshalJSON(b []byte) error {
	*a = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	out := make(Attributes, 0, len(raw))
	for _, r := range raw {
		var e struct {
			Name  *string `json:"name"`
			Value Text    `json:"value"`
		}
		if err := json.Unmarshal(r, &e); err != nil || e.Name == nil {
			continue
		}
		out = append(out, Attribute{Name: *e.Name, Value: e.Value})
	}
	*a = out
	return nil
}
