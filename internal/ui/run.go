package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/osse101/marketsync/internal/domain"
	"github.com/osse101/marketsync/internal/feed"
	"github.com/osse101/marketsync/internal/prefs"
)

const (
	dispatcherName      = "ui"
	dispatcherQueueSize = 64
)

// Source is a coordinator viewed as a UI data source.
type Source interface {
	Controller
	OnItems(fn func(items []domain.Item), opts ...feed.SubscribeOption) func()
	OnConnectionState(fn func(state, previous domain.ConnectionState), opts ...feed.SubscribeOption) func()
	OnAlert(fn func(reason string), opts ...feed.SubscribeOption) func()
	OnReachability(fn func(reachable bool), opts ...feed.SubscribeOption) func()
}

// attach forwards src outputs to send through d. The returned func removes
// the subscriptions.
func attach(src Source, d feed.Dispatcher, send func(tea.Msg)) func() {
	opt := feed.WithDispatcher(d)
	unsubs := []func(){
		src.OnItems(func(items []domain.Item) { send(itemsMsg(items)) }, opt),
		src.OnConnectionState(func(state, previous domain.ConnectionState) {
			send(connectionMsg{state: state, previous: previous})
		}, opt),
		src.OnAlert(func(reason string) { send(alertMsg(reason)) }, opt),
		src.OnReachability(func(reachable bool) { send(reachabilityMsg(reachable)) }, opt),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Run starts the terminal UI on src and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, src Source, p prefs.Prefs) error {
	m := New(Options{Controller: src, Prefs: p})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	dispatcher := feed.NewSerialDispatcher(dispatcherName, dispatcherQueueSize)
	detach := attach(src, dispatcher, program.Send)
	defer func() {
		detach()
		dispatcher.Close()
	}()

	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
