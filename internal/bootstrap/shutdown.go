package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/server"
	"github.com/osse101/marketsync/internal/sse"
)

// ShutdownComponents holds everything that needs an orderly stop. Any field
// may be nil.
type ShutdownComponents struct {
	Server      *server.Server
	Hub         *sse.Hub
	Coordinator *feed.Coordinator
	Unsubscribe func()
	Journal     *Journal
}

// GracefulShutdown stops components in dependency order:
//  1. SSE hub, so open streams end and the HTTP server can drain
//  2. HTTP server
//  3. Feed coordinator, whose final events still reach the journal
//  4. Bus consumers
//  5. Journal, flushing queued writes
//
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Server != nil {
		slog.Info(LogMsgShuttingDownServer)
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Coordinator != nil {
		slog.Info(LogMsgShuttingDownFeed)
		c.Coordinator.Close()
	}

	if c.Unsubscribe != nil {
		c.Unsubscribe()
	}

	if c.Journal != nil {
		slog.Info(LogMsgShuttingDownJournal)
		c.Journal.Close()
	}

	slog.Info(LogMsgServerStopped)
}
