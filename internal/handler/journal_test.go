package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/journal"
)

type MockJournalReader struct {
	mock.Mock
}

func (m *MockJournalReader) Recent(ctx context.Context, eventType string, limit int) ([]journal.Entry, error) {
	args := m.Called(ctx, eventType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]journal.Entry), args.Error(1)
}

func TestHandleGetJournal(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleGetJournal(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/journal", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgJournalDisabled)
	})

	t.Run("Defaults", func(t *testing.T) {
		reader := &MockJournalReader{}
		reader.On("Recent", mock.Anything, "", journal.DefaultRecentLimit).Return([]journal.Entry{
			{ID: 2, EventType: "connection.state", Payload: json.RawMessage(`{"state":"connected"}`), CreatedAt: time.Now()},
			{ID: 1, EventType: "items.snapshot", Payload: json.RawMessage(`{"version":1,"count":0}`), CreatedAt: time.Now()},
		}, nil)

		w := httptest.NewRecorder()
		HandleGetJournal(reader).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/journal", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[JournalResponse](t, w)
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Entries, 2)
		assert.Equal(t, int64(2), resp.Entries[0].ID)
		reader.AssertExpectations(t)
	})

	t.Run("Type Filter And Clamped Limit", func(t *testing.T) {
		reader := &MockJournalReader{}
		reader.On("Recent", mock.Anything, "connection.alert", journal.MaxRecentLimit).Return(nil, nil)

		w := httptest.NewRecorder()
		HandleGetJournal(reader).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/journal?type=connection.alert&limit=100000", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"count":0,"entries":[]}`, w.Body.String())
		reader.AssertExpectations(t)
	})

	t.Run("Unknown Type", func(t *testing.T) {
		reader := &MockJournalReader{}
		w := httptest.NewRecorder()
		HandleGetJournal(reader).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/journal?type=order.filled", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidEventType)
		reader.AssertNotCalled(t, "Recent", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Repository Error", func(t *testing.T) {
		reader := &MockJournalReader{}
		reader.On("Recent", mock.Anything, "", 10).Return(nil, assert.AnError)

		w := httptest.NewRecorder()
		HandleGetJournal(reader).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/journal?limit=10", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgJournalReadFailed)
		assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	})
}
