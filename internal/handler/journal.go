package handler

import (
	"context"
	"net/http"

	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/journal"
	"github.com/osse101/marketsync/internal/logger"
)

// JournalReader reads persisted feed events.
type JournalReader interface {
	Recent(ctx context.Context, eventType string, limit int) ([]journal.Entry, error)
}

// JournalResponse is the body of GET /journal.
type JournalResponse struct {
	Count   int             `json:"count"`
	Entries []journal.Entry `json:"entries"`
}

// HandleGetJournal returns the newest journal entries, optionally filtered
// with ?type=. A nil reader means the journal is disabled.
func HandleGetJournal(reader JournalReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			respondError(w, http.StatusServiceUnavailable, ErrMsgJournalDisabled)
			return
		}

		limit, ok := ParseLimitParam(w, r, journal.DefaultRecentLimit, journal.MaxRecentLimit)
		if !ok {
			return
		}

		eventType := GetOptionalQueryParam(r, "type", "")
		if eventType != "" && !isJournaledType(eventType) {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidEventType)
			return
		}

		entries, err := reader.Recent(r.Context(), eventType, limit)
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgJournalFailed, "error", err, "type", eventType)
			respondError(w, http.StatusInternalServerError, ErrMsgJournalReadFailed)
			return
		}
		if entries == nil {
			entries = []journal.Entry{}
		}

		respondJSON(w, http.StatusOK, JournalResponse{Count: len(entries), Entries: entries})
	}
}

func isJournaledType(t string) bool {
	for _, known := range journal.JournaledTypes {
		if event.Type(t) == known {
			return true
		}
	}
	return false
}
