package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/marketsync/internal/bootstrap"
	"github.com/osse101/marketsync/internal/config"
	"github.com/osse101/marketsync/internal/event"
	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/handler"
	"github.com/osse101/marketsync/internal/prefs"
	"github.com/osse101/marketsync/internal/server"
	"github.com/osse101/marketsync/internal/sse"
	"github.com/osse101/marketsync/internal/ui"
)

type mode int

const (
	modeHeadless mode = iota
	modeTerminal
)

const shutdownTimeout = 10 * time.Second

// run wires the application and blocks until a signal arrives or, in
// terminal mode, the user quits.
func run(m mode) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var console io.Writer = os.Stdout
	if m == modeTerminal {
		console = nil
	}
	logFile, err := bootstrap.SetupLogger(cfg, console)
	if err != nil {
		return err
	}
	defer logFile.Close()

	store := prefs.NewStore(cfg.PrefsPath)
	userPrefs, err := bootstrap.ApplyPreferences(cfg, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := event.NewMemoryBus()
	coord, err := bootstrap.InitializeFeed(cfg, bus, store)
	if err != nil {
		return err
	}

	journal, err := bootstrap.InitializeJournal(ctx, cfg)
	if err != nil {
		coord.Close()
		return err
	}

	var (
		hub *sse.Hub
		srv *server.Server
	)
	if cfg.HTTPEnabled() {
		hub = sse.NewHub()
		hub.Start()
	}

	unsubscribe := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus: bus,
		Hub:      hub,
		Journal:  journal.Reader(),
	})

	if cfg.HTTPEnabled() {
		srv = newServer(cfg, coord, journal, hub)
	}

	components := bootstrap.ShutdownComponents{
		Server:      srv,
		Hub:         hub,
		Coordinator: coord,
		Unsubscribe: unsubscribe,
		Journal:     journal,
	}

	coord.Start(ctx)
	coord.Connect()

	g, gctx := errgroup.WithContext(ctx)
	if srv != nil {
		g.Go(srv.Start)
	}
	if m == modeTerminal {
		g.Go(func() error {
			defer stop()
			return ui.Run(gctx, coord, userPrefs)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		bootstrap.GracefulShutdown(shutdownCtx, components)
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("marketsync stopped with error", "error", err)
		return err
	}
	return nil
}

func newServer(cfg *config.Config, coord *feed.Coordinator, journal *bootstrap.Journal, hub *sse.Hub) *server.Server {
	deps := server.Dependencies{
		Feed:         coord,
		DBPool:       journal.DBPool(),
		Hub:          hub,
		InitialState: bootstrap.StreamInitialState(coord),
	}
	if reader := journal.Reader(); reader != nil {
		deps.Journal = reader
	}
	return server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
	}, deps)
}

func printVersion() {
	v := handler.CurrentVersion()
	fmt.Printf("marketsync %s (commit %s, built %s)\n", v.Version, v.GitCommit, v.BuildTime)
}
