package socketio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/osse101/marketsync/internal/connection"
	"github.com/osse101/marketsync/internal/domain"
)

// Client is a Socket.IO v5 client over a raw websocket. It implements
// connection.EventChannel. Each Open starts a new session; callbacks from a
// session that has since been closed or replaced are never delivered.
type Client struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	log    *slog.Logger

	// Handler registry
	handlers map[string][]connection.Handler
	handMu   sync.RWMutex

	mu     sync.Mutex
	sess   *session
	status domain.ChannelStatus
}

// session is one websocket connection and its read loop.
type session struct {
	id        string
	ctx       context.Context
	cancel    context.CancelFunc
	conn      *websocket.Conn
	connected bool
	writeMu   sync.Mutex
}

type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// NewClient validates rawURL and returns a closed client. http(s) URLs are
// rewritten to ws(s) and the Engine.IO query parameters are added when missing.
func NewClient(rawURL, apiKey string) (*Client, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if apiKey != "" {
		header.Set(HeaderAuthorization, apiKey)
	}

	return &Client{
		url:    normalized,
		header: header,
		dialer: &websocket.Dialer{
			HandshakeTimeout: HandshakeTimeout,
			ReadBufferSize:   ReadBufferSize,
			WriteBufferSize:  WriteBufferSize,
			Proxy:            http.ProxyFromEnvironment,
		},
		handlers: make(map[string][]connection.Handler),
		status:   domain.StatusNotConnected,
		log:      slog.Default().With("component", "socketio"),
	}, nil
}

// NormalizeURL checks a feed URL and returns its websocket form.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidFeedURL, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidFeedURL, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidFeedURL)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}
	q := u.Query()
	if q.Get("EIO") == "" {
		q.Set("EIO", "4")
	}
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// URL returns the websocket URL the client dials.
func (c *Client) URL() string {
	return c.url
}

// Open starts a session in the background. It returns immediately; the
// outcome is reported through the connect and statusChange events.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		return nil
	}
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session{id: uuid.New().String(), ctx: sctx, cancel: cancel}
	c.sess = s
	c.status = domain.StatusConnecting
	c.mu.Unlock()

	go c.run(s)
	return nil
}

// Close ends the current session without raising lifecycle events.
func (c *Client) Close() error {
	c.mu.Lock()
	s := c.sess
	c.sess = nil
	if c.status.Active() {
		c.status = domain.StatusDisconnected
	}
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	s.cancel()

	c.mu.Lock()
	conn := s.conn
	connected := s.connected
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	if connected {
		_ = s.write(frameDisconnect)
	}
	s.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	return conn.Close()
}

// Emit sends a Socket.IO event with one JSON argument.
func (c *Client) Emit(event string, payload any) error {
	c.mu.Lock()
	s := c.sess
	ok := s != nil && s.connected
	c.mu.Unlock()
	if !ok {
		return domain.ErrNotConnected
	}

	data, err := json.Marshal([]any{event, payload})
	if err != nil {
		return fmt.Errorf("encode event %q: %w", event, err)
	}
	if err := s.write(frameEventHead + string(data)); err != nil {
		c.log.Warn(LogMsgWriteError, "event", event, "error", err)
		return err
	}
	return nil
}

// On registers h for event.
func (c *Client) On(event string, h connection.Handler) {
	c.handMu.Lock()
	defer c.handMu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// RemoveAllHandlers drops every registered handler.
func (c *Client) RemoveAllHandlers() {
	c.handMu.Lock()
	defer c.handMu.Unlock()
	c.handlers = make(map[string][]connection.Handler)
}

// Status returns the current channel status.
func (c *Client) Status() domain.ChannelStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) run(s *session) {
	log := c.log.With("session", s.id)
	log.Info(LogMsgConnecting, "url", c.url)

	conn, resp, err := c.dialer.DialContext(s.ctx, c.url, c.header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("failed to connect: %w (status: %s, code: %d)", err, resp.Status, resp.StatusCode)
		}
		log.Warn(LogMsgDialFailed, "error", err)
		c.finish(s, err)
		return
	}

	c.mu.Lock()
	current := c.sess == s
	if current {
		s.conn = conn
	}
	c.mu.Unlock()
	if !current {
		conn.Close()
		return
	}

	err = c.readLoop(s, conn, log)
	c.finish(s, err)
	conn.Close()
}

func (c *Client) readLoop(s *session, conn *websocket.Conn, log *slog.Logger) error {
	deadline := OpenTimeout
	for {
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			log.Warn(LogMsgReadError, "error", err)
			return err
		}
		if len(msg) == 0 {
			continue
		}

		switch msg[0] {
		case engineOpen:
			var open openPacket
			if err := json.Unmarshal(msg[1:], &open); err != nil {
				return fmt.Errorf("decode open packet: %w", err)
			}
			deadline = pingWindow(open)
			log.Debug(LogMsgEngineOpen, "sid", open.SID, "read_deadline", deadline)
			if err := s.write(frameConnect); err != nil {
				return err
			}
		case enginePing:
			if err := s.write(framePong); err != nil {
				return err
			}
		case enginePong:
		case engineClose:
			log.Info(LogMsgServerClosed)
			return nil
		case engineMessage:
			if done, err := c.handleMessage(s, msg[1:], log); done || err != nil {
				return err
			}
		default:
			log.Debug(LogMsgBadPacket, "packet", string(msg))
		}
	}
}

// handleMessage processes one Socket.IO packet. done reports that the
// server ended the session.
func (c *Client) handleMessage(s *session, msg []byte, log *slog.Logger) (done bool, err error) {
	if len(msg) == 0 {
		return false, nil
	}
	body := msg[1:]
	switch msg[0] {
	case socketConnect:
		c.mu.Lock()
		current := c.sess == s
		if current {
			s.connected = true
			c.status = domain.StatusConnected
		}
		c.mu.Unlock()
		if !current {
			return true, nil
		}
		log.Info(LogMsgConnected)
		c.dispatch(s, connection.EventStatusChange, statusPayload(domain.StatusConnected))
		c.dispatch(s, connection.EventConnect, nil)
	case socketDisconnect:
		log.Info(LogMsgServerClosed)
		return true, nil
	case socketConnectError:
		log.Warn(LogMsgConnectError, "detail", string(body))
		return true, fmt.Errorf("connect error: %s", body)
	case socketEvent:
		name, payload, err := decodeEvent(body)
		if err != nil {
			log.Debug(LogMsgBadPacket, "error", err)
			return false, nil
		}
		log.Debug(LogMsgEventReceived, "event", name)
		c.dispatch(s, name, payload)
	default:
		log.Debug(LogMsgBadPacket, "packet", string(msg))
	}
	return false, nil
}

// finish reports the end of a session if it is still the current one.
func (c *Client) finish(s *session, err error) {
	c.mu.Lock()
	if c.sess != s {
		c.mu.Unlock()
		return
	}
	c.sess = nil
	wasConnected := s.connected
	if wasConnected {
		c.status = domain.StatusDisconnected
	} else {
		c.status = domain.StatusNotConnected
	}
	status := c.status
	c.mu.Unlock()
	s.cancel()

	if wasConnected {
		c.log.Info(LogMsgDisconnected, "session", s.id, "error", err)
	}
	c.deliver(connection.EventStatusChange, statusPayload(status))
	if wasConnected {
		c.deliver(connection.EventDisconnect, nil)
	}
}

// dispatch delivers to handlers only while s is the current session.
func (c *Client) dispatch(s *session, event string, payload []byte) {
	c.mu.Lock()
	current := c.sess == s
	c.mu.Unlock()
	if current {
		c.deliver(event, payload)
	}
}

func (c *Client) deliver(event string, payload []byte) {
	c.handMu.RLock()
	handlers := append([]connection.Handler(nil), c.handlers[event]...)
	c.handMu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

func (s *session) write(frame string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.conn == nil {
		return domain.ErrNotConnected
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func pingWindow(open openPacket) time.Duration {
	interval := time.Duration(open.PingInterval) * time.Millisecond
	timeout := time.Duration(open.PingTimeout) * time.Millisecond
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	return interval + timeout
}

// decodeEvent splits `["name", arg, ...]` into the name and first argument.
func decodeEvent(body []byte) (string, []byte, error) {
	// Skip an optional namespace ("/ns,") or ack id prefix.
	if i := bytes.IndexByte(body, '['); i > 0 {
		body = body[i:]
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return "", nil, err
	}
	if len(parts) == 0 {
		return "", nil, errors.New("empty event")
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, fmt.Errorf("event name: %w", err)
	}
	if len(parts) < 2 {
		return name, nil, nil
	}
	return name, []byte(parts[1]), nil
}

func statusPayload(status domain.ChannelStatus) []byte {
	data, _ := json.Marshal(string(status))
	return data
}
