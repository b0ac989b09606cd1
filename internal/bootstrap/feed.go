package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/marketsync/internal/config"
	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/reachability"
	"github.com/osse101/marketsync/internal/reconnect"
	"github.com/osse101/marketsync/internal/socketio"
	"github.com/osse101/marketsync/internal/store"
)

// FeedConfig maps process configuration onto coordinator settings.
func FeedConfig(cfg *config.Config) feed.Config {
	return feed.Config{
		Topics:    cfg.Topics,
		ItemKinds: cfg.ItemKinds,
		Store: store.Options{
			DebounceWindow:  cfg.DebounceWindow,
			DebounceMaxWait: cfg.DebounceMaxWait,
		},
		Reconnect: reconnect.Options{
			ReconnectOnDrop: cfg.ReconnectOnDrop,
			InitialDelay:    cfg.ReconnectInitialDelay,
			MaxDelay:        cfg.ReconnectMaxDelay,
			MaxFailures:     cfg.ReconnectMaxFailures,
		},
		ClearOnDisconnect: cfg.ClearOnDisconnect,
		DiagnosticsSize:   cfg.DiagnosticsSize,
		DiagnosticsTTL:    cfg.DiagnosticsTTL,
	}
}

// InitializeFeed builds the socket.io channel, the reachability probe and
// the coordinator on top of them. Outputs are published on bus. persister
// may be nil.
func InitializeFeed(cfg *config.Config, bus event.Bus, persister feed.TopicPersister) (*feed.Coordinator, error) {
	channel, err := socketio.NewClient(cfg.FeedURL, cfg.FeedAPIKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateChannel, err)
	}

	monitor := reachability.NewProbeMonitor(cfg.ProbeAddr, cfg.ProbeInterval, cfg.ProbeTimeout)

	opts := []feed.Option{feed.WithBus(bus)}
	if persister != nil {
		opts = append(opts, feed.WithTopicPersister(persister))
	}

	coord, err := feed.New(channel, monitor, FeedConfig(cfg), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateFeed, err)
	}

	slog.Info(LogMsgFeedInitialized,
		"url", channel.URL(),
		"topics", cfg.Topics.Strings(),
		"probe_addr", cfg.ProbeAddr)

	return coord, nil
}
