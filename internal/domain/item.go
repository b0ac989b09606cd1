package domain

// Item is a marketplace listing as delivered by the feed. Identity is ID:
// two items with the same ID are the same listing regardless of the other
// fields. Items are treated as immutable; an update replaces the stored value.
type Item struct {
	ID          string   `json:"item_id"`
	Category    string   `json:"game"`
	DisplayName string   `json:"name"`
	Price       int64    `json:"price"` // smallest currency unit
	Float       *float64 `json:"float,omitempty"`
	PaintIndex  *int     `json:"paint_index,omitempty"`
	Selling     *bool    `json:"selling,omitempty"`
	Attributes  []string `json:"sticker_names,omitempty"`
}

// Clone returns a deep copy so callers never share optional fields with the store.
func (i Item) Clone() Item {
	dup := i
	if i.Float != nil {
		f := *i.Float
		dup.Float = &f
	}
	if i.PaintIndex != nil {
		p := *i.PaintIndex
		dup.PaintIndex = &p
	}
	if i.Selling != nil {
		s := *i.Selling
		dup.Selling = &s
	}
	if i.Attributes != nil {
		dup.Attributes = append([]string(nil), i.Attributes...)
	}
	return dup
}

// CloneItems deep-copies a slice of items. A nil or empty input returns nil.
func CloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	for i := range items {
		dup[i] = items[i].Clone()
	}
	return dup
}
