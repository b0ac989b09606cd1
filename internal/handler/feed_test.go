package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/diagnostics"
	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/feed"
)

// MockFeedService mocks the FeedService interface
type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) Items() []domain.Item {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Item)
}

func (m *MockFeedService) Status() feed.Status {
	return m.Called().Get(0).(feed.Status)
}

func (m *MockFeedService) Diagnostics() *diagnostics.Recorder {
	return m.Called().Get(0).(*diagnostics.Recorder)
}

func (m *MockFeedService) SetTopics(topics domain.TopicSet) error {
	return m.Called(topics).Error(0)
}

func (m *MockFeedService) Connect()                { m.Called() }
func (m *MockFeedService) Disconnect()             { m.Called() }
func (m *MockFeedService) SuspendWithAutoRestore() { m.Called() }
func (m *MockFeedService) Resume()                 { m.Called() }

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandleGetItems(t *testing.T) {
	t.Run("Returns Items In Order", func(t *testing.T) {
		svc := &MockFeedService{}
		svc.On("Items").Return([]domain.Item{
			{ID: "A", Category: "csgo", DisplayName: "AK-47", Price: 100},
			{ID: "B", Category: "csgo", DisplayName: "AWP", Price: 250},
		})

		w := httptest.NewRecorder()
		HandleGetItems(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[ItemsResponse](t, w)
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "A", resp.Items[0].ID)
		assert.Equal(t, int64(250), resp.Items[1].Price)
	})

	t.Run("Empty Store Encodes Empty Array", func(t *testing.T) {
		svc := &MockFeedService{}
		svc.On("Items").Return(nil)

		w := httptest.NewRecorder()
		HandleGetItems(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"count":0,"items":[]}`, w.Body.String())
	})
}

func TestHandleGetStatus(t *testing.T) {
	svc := &MockFeedService{}
	svc.On("Status").Return(feed.Status{
		Connection: domain.Connected,
		Policy:     "manually_connected",
		Reachable:  true,
		Topics:     []string{"csgo"},
		ItemCount:  3,
	})

	w := httptest.NewRecorder()
	HandleGetStatus(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connection":"connected"`)
	assert.Contains(t, w.Body.String(), `"item_count":3`)
}

func TestHandleGetDiagnostics(t *testing.T) {
	rec := diagnostics.NewRecorder(10, 0)
	for i := 0; i < 3; i++ {
		rec.RecordDecodeFailure(domain.ItemCreated, []byte(fmt.Sprintf(`{"n":%d}`, i)),
			&domain.DecodeError{Field: "price", Reason: "missing"})
	}
	svc := &MockFeedService{}
	svc.On("Diagnostics").Return(rec)

	t.Run("Limit Applied", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleGetDiagnostics(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/diagnostics?limit=2", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[DiagnosticsResponse](t, w)
		assert.Equal(t, uint64(3), resp.Total)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, "price", resp.Records[0].Field)
		assert.Greater(t, resp.Records[0].Seq, resp.Records[1].Seq)
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		for _, raw := range []string{"abc", "0", "-1"} {
			w := httptest.NewRecorder()
			HandleGetDiagnostics(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/diagnostics?limit="+raw, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, raw)
			assert.Contains(t, w.Body.String(), ErrMsgInvalidLimit)
		}
	})
}

func TestHandleSetTopics(t *testing.T) {
	InitValidator()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockFeedService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			body: `{"topics":["CSGO","rust"]}`,
			setupMock: func(m *MockFeedService) {
				m.On("SetTopics", domain.TopicSet{domain.TopicCSGO, domain.TopicRust}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   MsgTopicsUpdated,
		},
		{
			name: "Empty Set",
			body: `{"topics":[]}`,
			setupMock: func(m *MockFeedService) {
				m.On("SetTopics", domain.TopicSet{}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"topics":[]`,
		},
		{
			name: "Persist Failure Still Applied",
			body: `{"topics":["tf2"]}`,
			setupMock: func(m *MockFeedService) {
				m.On("SetTopics", domain.TopicSet{domain.TopicTF2}).Return(fmt.Errorf("save topics: %w", assert.AnError))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   ErrMsgTopicsNotSaved,
		},
		{
			name: "Unknown Topic From Service",
			body: `{"topics":["dota2"]}`,
			setupMock: func(m *MockFeedService) {
				m.On("SetTopics", mock.Anything).Return(fmt.Errorf("%w: %q", domain.ErrUnknownTopic, "dota2"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgUnknownTopicError,
		},
		{
			name:           "Validation Error",
			body:           `{"topics":["minecraft"]}`,
			setupMock:      func(m *MockFeedService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequestSummary,
		},
		{
			name:           "Malformed JSON",
			body:           `{"topics":`,
			setupMock:      func(m *MockFeedService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name:           "Unknown Field",
			body:           `{"topic":["csgo"]}`,
			setupMock:      func(m *MockFeedService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockFeedService{}
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/v1/topics", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			HandleSetTopics(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestIntentHandlers(t *testing.T) {
	tests := []struct {
		method  string
		handler func(FeedService) http.HandlerFunc
		message string
	}{
		{"Connect", HandleConnect, MsgConnectRequested},
		{"Disconnect", HandleDisconnect, MsgDisconnectComplete},
		{"SuspendWithAutoRestore", HandleSuspend, MsgSuspendRequested},
		{"Resume", HandleResume, MsgResumeRequested},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			svc := &MockFeedService{}
			svc.On(tt.method).Return().Once()

			w := httptest.NewRecorder()
			tt.handler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

			assert.Equal(t, http.StatusAccepted, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			svc.AssertExpectations(t)
		})
	}
}

func TestMapServiceErrorToUserMessage(t *testing.T) {
	status, msg := mapServiceErrorToUserMessage(nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrMsgGenericServerError, msg)

	status, _ = mapServiceErrorToUserMessage(fmt.Errorf("wrap: %w", domain.ErrUnknownEventKind))
	assert.Equal(t, http.StatusBadRequest, status)

	status, msg = mapServiceErrorToUserMessage(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrMsgGenericServerError, msg, "internal details are not exposed")
}
