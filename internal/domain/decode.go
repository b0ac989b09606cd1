package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// wireItem mirrors the payload with pointer fields so absent keys can be told
// apart from zero values.
type wireItem struct {
	ItemID       json.RawMessage `json:"item_id"`
	Game         *string         `json:"game"`
	Name         *string         `json:"name"`
	Price        *json.Number    `json:"price"`
	Float        *float64        `json:"float"`
	PaintIndex   *int            `json:"paint_index"`
	Selling      *bool           `json:"selling"`
	StickerNames []string        `json:"sticker_names"`
}

// DecodeItem decodes one item payload. On failure the returned error is a
// *DecodeError and the Item is the zero value.
func DecodeItem(payload []byte) (Item, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Item{}, &DecodeError{Reason: "empty payload"}
	}
	if trimmed[0] != '{' {
		return Item{}, &DecodeError{Reason: "payload is not a JSON object"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var w wireItem
	if err := dec.Decode(&w); err != nil {
		return Item{}, &DecodeError{Reason: err.Error()}
	}

	id, err := decodeItemID(w.ItemID)
	if err != nil {
		return Item{}, err
	}
	if w.Game == nil {
		return Item{}, &DecodeError{Field: "game", Reason: "required"}
	}
	if w.Name == nil {
		return Item{}, &DecodeError{Field: "name", Reason: "required"}
	}
	if w.Price == nil {
		return Item{}, &DecodeError{Field: "price", Reason: "required"}
	}
	price, err := w.Price.Int64()
	if err != nil {
		return Item{}, &DecodeError{Field: "price", Reason: "not an integer"}
	}

	return Item{
		ID:          id,
		Category:    *w.Game,
		DisplayName: *w.Name,
		Price:       price,
		Float:       w.Float,
		PaintIndex:  w.PaintIndex,
		Selling:     w.Selling,
		Attributes:  w.StickerNames,
	}, nil
}

// decodeItemID accepts the identifier as a JSON string or number.
func decodeItemID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", &DecodeError{Field: "item_id", Reason: "required"}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", &DecodeError{Field: "item_id", Reason: err.Error()}
		}
		if s == "" {
			return "", &DecodeError{Field: "item_id", Reason: "empty"}
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", &DecodeError{Field: "item_id", Reason: "must be a string or number"}
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return "", &DecodeError{Field: "item_id", Reason: "must be an integer"}
	}
	return n.String(), nil
}
