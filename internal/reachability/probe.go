package reachability

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// DialFunc opens a connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// ProbeMonitor treats the network as reachable while a TCP connection to
// addr can be opened within timeout.
type ProbeMonitor struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	dial     DialFunc
	n        *notifier
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewProbeMonitor creates a monitor that starts out reachable.
func NewProbeMonitor(addr string, interval, timeout time.Duration) *ProbeMonitor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	d := &net.Dialer{}
	return &ProbeMonitor{
		addr:     addr,
		interval: interval,
		timeout:  timeout,
		dial:     d.DialContext,
		n:        newNotifier(true),
		log:      slog.Default().With("component", "reachability", "addr", addr),
	}
}

// WithDialer replaces the dial function. Intended for tests.
func (p *ProbeMonitor) WithDialer(dial DialFunc) *ProbeMonitor {
	p.dial = dial
	return p
}

// Start probes once synchronously, then keeps probing every interval until
// ctx is done or Stop is called.
func (p *ProbeMonitor) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.probe(ctx)
	p.log.Info(LogMsgMonitorStarted, "reachable", p.IsReachable(), "interval", p.interval)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.probe(ctx)
			}
		}
	}()
}

// Stop ends probing and waits for the loop to exit.
func (p *ProbeMonitor) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		p.wg.Wait()
		p.log.Info(LogMsgMonitorStopped)
	}
}

// IsReachable returns the last probe result.
func (p *ProbeMonitor) IsReachable() bool {
	return p.n.get()
}

// Subscribe implements Monitor
func (p *ProbeMonitor) Subscribe(fn func(bool)) func() {
	return p.n.subscribe(fn)
}

func (p *ProbeMonitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	reachable := true
	conn, err := p.dial(probeCtx, "tcp", p.addr)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Debug(LogMsgProbeFailed, "error", err)
		reachable = false
	} else {
		_ = conn.Close()
	}

	if p.n.set(reachable) {
		p.log.Info(LogMsgReachabilityChanged, "reachable", reachable)
	}
}
