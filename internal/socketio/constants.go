package socketio

import "time"

// Default configuration values
const (
	// DefaultURL is the public marketplace feed endpoint
	DefaultURL = "wss://waxpeer.com/socket.io/?EIO=4&transport=websocket"

	// HandshakeTimeout bounds the websocket upgrade
	HandshakeTimeout = 10 * time.Second

	// OpenTimeout bounds the wait for the Engine.IO open packet
	OpenTimeout = 10 * time.Second

	// WriteTimeout is the timeout for writing messages
	WriteTimeout = 10 * time.Second

	// DefaultPingInterval and DefaultPingTimeout apply until the server
	// announces its own values
	DefaultPingInterval = 25 * time.Second
	DefaultPingTimeout  = 20 * time.Second

	// ReadBufferSize is the WebSocket read buffer size
	ReadBufferSize = 4096

	// WriteBufferSize is the WebSocket write buffer size
	WriteBufferSize = 4096
)

// Engine.IO v4 packet types
const (
	engineOpen    = '0'
	engineClose   = '1'
	enginePing    = '2'
	enginePong    = '3'
	engineMessage = '4'
)

// Socket.IO v5 packet types, carried inside an Engine.IO message
const (
	socketConnect      = '0'
	socketDisconnect   = '1'
	socketEvent        = '2'
	socketConnectError = '4'
)

// Outbound frames
const (
	frameConnect    = "40"
	frameDisconnect = "41"
	framePong       = "3"
	frameEventHead  = "42"
)

// HeaderAuthorization carries the feed API key
const HeaderAuthorization = "Authorization"

// Log messages
const (
	LogMsgConnecting    = "Connecting to feed"
	LogMsgConnected     = "Connected to feed"
	LogMsgDisconnected  = "Disconnected from feed"
	LogMsgDialFailed    = "Failed to dial feed"
	LogMsgReadError     = "Error reading from feed"
	LogMsgWriteError    = "Error writing to feed"
	LogMsgConnectError  = "Feed rejected the connection"
	LogMsgBadPacket     = "Ignoring malformed packet"
	LogMsgEngineOpen    = "Engine.IO session opened"
	LogMsgServerClosed  = "Feed closed the session"
	LogMsgEventReceived = "Received event from feed"
)
