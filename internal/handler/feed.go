package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/osse101/marketsync/internal/diagnostics"
	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/logger"
)

// Diagnostics query bounds.
const (
	DefaultDiagnosticsLimit = 50
	MaxDiagnosticsLimit     = diagnostics.DefaultSize
)

// FeedService is the part of the sync coordinator the HTTP surface drives.
type FeedService interface {
	Items() []domain.Item
	Status() feed.Status
	Diagnostics() *diagnostics.Recorder
	SetTopics(topics domain.TopicSet) error
	Connect()
	Disconnect()
	SuspendWithAutoRestore()
	Resume()
}

// ItemsResponse is the body of GET /items.
type ItemsResponse struct {
	Count int           `json:"count"`
	Items []domain.Item `json:"items"`
}

// DiagnosticsResponse is the body of GET /diagnostics.
type DiagnosticsResponse struct {
	Total   uint64               `json:"total"`
	Records []diagnostics.Record `json:"records"`
}

// SetTopicsRequest replaces the desired topic set. An empty list unsubscribes
// from everything.
type SetTopicsRequest struct {
	Topics []string `json:"topics" validate:"max=4,unique,dive,topic"`
}

// TopicsResponse echoes the applied topic set.
type TopicsResponse struct {
	Message string   `json:"message"`
	Topics  []string `json:"topics"`
}

// HandleGetItems returns the current item collection in feed order.
func HandleGetItems(svc FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := svc.Items()
		if items == nil {
			items = []domain.Item{}
		}
		respondJSON(w, http.StatusOK, ItemsResponse{Count: len(items), Items: items})
	}
}

// HandleGetStatus returns connection, policy and store counters.
func HandleGetStatus(svc FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, svc.Status())
	}
}

// HandleGetDiagnostics returns recent payload decode failures, newest first.
func HandleGetDiagnostics(svc FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := ParseLimitParam(w, r, DefaultDiagnosticsLimit, MaxDiagnosticsLimit)
		if !ok {
			return
		}
		rec := svc.Diagnostics()
		respondJSON(w, http.StatusOK, DiagnosticsResponse{
			Total:   rec.Total(),
			Records: rec.Recent(limit),
		})
	}
}

// HandleSetTopics replaces the desired topics. When the topics were applied
// but could not be persisted the response is still 200 with a warning
// message, since the live subscription did change.
func HandleSetTopics(svc FeedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req SetTopicsRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set topics"); err != nil {
			return
		}
		LogRequestFields(log, "topics", req.Topics)

		topics := make([]domain.Topic, 0, len(req.Topics))
		for _, t := range req.Topics {
			topics = append(topics, domain.Topic(strings.ToLower(t)))
		}
		set := domain.NewTopicSet(topics...)

		msg := MsgTopicsUpdated
		if err := svc.SetTopics(set); err != nil {
			if errors.Is(err, domain.ErrUnknownTopic) {
				respondServiceError(w, r, LogMsgTopicsFailed, err)
				return
			}
			log.Warn(LogMsgTopicsFailed, "error", err)
			msg = ErrMsgTopicsNotSaved
		}

		log.Info(LogMsgTopicsUpdated, "topics", set.Strings())
		respondJSON(w, http.StatusOK, TopicsResponse{Message: msg, Topics: set.Strings()})
	}
}

// HandleIntent runs one coordinator intent and acknowledges it. Intents never
// fail; their effect is observable through status and the event stream.
func HandleIntent(name string, intent func(), message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info(LogMsgIntentReceived, "intent", name)
		intent()
		respondJSON(w, http.StatusAccepted, SuccessResponse{Message: message})
	}
}

// HandleConnect asks the coordinator to connect.
func HandleConnect(svc FeedService) http.HandlerFunc {
	return HandleIntent("connect", svc.Connect, MsgConnectRequested)
}

// HandleDisconnect disconnects and stays disconnected.
func HandleDisconnect(svc FeedService) http.HandlerFunc {
	return HandleIntent("disconnect", svc.Disconnect, MsgDisconnectComplete)
}

// HandleSuspend disconnects and arms auto-restore.
func HandleSuspend(svc FeedService) http.HandlerFunc {
	return HandleIntent("suspend", svc.SuspendWithAutoRestore, MsgSuspendRequested)
}

// HandleResume reconnects if a suspend armed auto-restore.
func HandleResume(svc FeedService) http.HandlerFunc {
	return HandleIntent("resume", svc.Resume, MsgResumeRequested)
}
