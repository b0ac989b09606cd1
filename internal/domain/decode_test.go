package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/domain"
)

func TestDecodeItem_FullPayload(t *testing.T) {
	payload := []byte(`{
		"item_id": "28391",
		"game": "csgo",
		"name": "AK-47 | Redline (Field-Tested)",
		"price": 12345,
		"float": 0.2531,
		"paint_index": 282,
		"selling": true,
		"sticker_names": ["Crown (Foil)", "Howling Dawn"]
	}`)

	item, err := domain.DecodeItem(payload)
	require.NoError(t, err)

	assert.Equal(t, "28391", item.ID)
	assert.Equal(t, "csgo", item.Category)
	assert.Equal(t, "AK-47 | Redline (Field-Tested)", item.DisplayName)
	assert.Equal(t, int64(12345), item.Price)
	require.NotNil(t, item.Float)
	assert.InDelta(t, 0.2531, *item.Float, 1e-9)
	require.NotNil(t, item.PaintIndex)
	assert.Equal(t, 282, *item.PaintIndex)
	require.NotNil(t, item.Selling)
	assert.True(t, *item.Selling)
	assert.Equal(t, []string{"Crown (Foil)", "Howling Dawn"}, item.Attributes)
}

func TestDecodeItem_OptionalFieldsAbsent(t *testing.T) {
	item, err := domain.DecodeItem([]byte(`{"item_id":"1","game":"rust","name":"Tempered AK","price":0}`))
	require.NoError(t, err)

	assert.Equal(t, int64(0), item.Price)
	assert.Nil(t, item.Float)
	assert.Nil(t, item.PaintIndex)
	assert.Nil(t, item.Selling)
	assert.Nil(t, item.Attributes)
}

func TestDecodeItem_NumericID(t *testing.T) {
	item, err := domain.DecodeItem([]byte(`{"item_id":981234,"game":"tf2","name":"Key","price":199}`))
	require.NoError(t, err)
	assert.Equal(t, "981234", item.ID)
}

func TestDecodeItem_Failures(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantField string
	}{
		{"missing price", `{"item_id":"1","game":"csgo","name":"x"}`, "price"},
		{"missing item_id", `{"game":"csgo","name":"x","price":1}`, "item_id"},
		{"null item_id", `{"item_id":null,"game":"csgo","name":"x","price":1}`, "item_id"},
		{"empty item_id", `{"item_id":"","game":"csgo","name":"x","price":1}`, "item_id"},
		{"fractional item_id", `{"item_id":1.5,"game":"csgo","name":"x","price":1}`, "item_id"},
		{"missing game", `{"item_id":"1","name":"x","price":1}`, "game"},
		{"missing name", `{"item_id":"1","game":"csgo","price":1}`, "name"},
		{"fractional price", `{"item_id":"1","game":"csgo","name":"x","price":1.25}`, "price"},
		{"not an object", `["item"]`, ""},
		{"empty", ``, ""},
		{"null", `null`, ""},
		{"broken json", `{"item_id":`, ""},
		{"wrong type for name", `{"item_id":"1","game":"csgo","name":5,"price":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := domain.DecodeItem([]byte(tt.payload))
			require.Error(t, err)
			assert.Equal(t, domain.Item{}, item)
			assert.True(t, errors.Is(err, domain.ErrMalformedPayload))

			var decodeErr *domain.DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tt.wantField, decodeErr.Field)
			assert.Contains(t, err.Error(), domain.ErrMsgMalformedPayload)
		})
	}
}

func TestItem_CloneIsDeep(t *testing.T) {
	f := 0.1
	selling := true
	orig := domain.Item{ID: "1", Float: &f, Selling: &selling, Attributes: []string{"a"}}

	dup := orig.Clone()
	*dup.Float = 0.9
	*dup.Selling = false
	dup.Attributes[0] = "b"

	assert.Equal(t, 0.1, *orig.Float)
	assert.True(t, *orig.Selling)
	assert.Equal(t, "a", orig.Attributes[0])
}
