package diagnostics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/domain"
)

func TestRecorder_RecordsDecodeError(t *testing.T) {
	r := NewRecorder(10, time.Minute)

	payload := []byte(`{"item_id":"1","game":"csgo","name":"x"}`)
	_, err := domain.DecodeItem(payload)
	require.Error(t, err)

	r.RecordDecodeFailure(domain.ItemCreated, payload, err)

	recs := r.Recent(0)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.ItemCreated, recs[0].Kind)
	assert.Equal(t, "price", recs[0].Field)
	assert.Equal(t, "required", recs[0].Reason)
	assert.Equal(t, string(payload), recs[0].Payload)
	assert.Equal(t, uint64(1), r.Total())
}

func TestRecorder_PlainError(t *testing.T) {
	r := NewRecorder(10, time.Minute)
	r.RecordDecodeFailure(domain.ItemUpdated, nil, errors.New("boom"))

	recs := r.Recent(1)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Field)
	assert.Equal(t, "boom", recs[0].Reason)
}

func TestRecorder_EvictsOldestAndKeepsTotal(t *testing.T) {
	r := NewRecorder(3, time.Minute)
	for i := 0; i < 5; i++ {
		r.RecordDecodeFailure(domain.ItemRemoved, []byte("{}"), errors.New("bad"))
	}

	recs := r.Recent(0)
	require.Len(t, recs, 3)
	assert.Equal(t, []uint64{5, 4, 3}, []uint64{recs[0].Seq, recs[1].Seq, recs[2].Seq})
	assert.Equal(t, uint64(5), r.Total())

	assert.Len(t, r.Recent(2), 2)

	r.Clear()
	assert.Zero(t, r.Len())
	assert.Equal(t, uint64(5), r.Total())
}

func TestRecorder_TruncatesPayload(t *testing.T) {
	r := NewRecorder(1, time.Minute)
	big := []byte(strings.Repeat("x", MaxPayloadBytes*2))

	r.RecordDecodeFailure(domain.ItemCreated, big, errors.New("bad"))

	rec := r.Recent(1)[0]
	assert.Len(t, rec.Payload, MaxPayloadBytes+3)
	assert.True(t, strings.HasSuffix(rec.Payload, "..."))
}

func TestRecorder_Expires(t *testing.T) {
	r := NewRecorder(10, 20*time.Millisecond)
	r.RecordDecodeFailure(domain.ItemCreated, nil, errors.New("bad"))

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 10*time.Millisecond)
}
