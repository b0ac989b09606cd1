package domain

import (
	"encoding/json"
	"fmt"
)

// ConnectionState is the session state owned by the connection manager.
type ConnectionState int

const (
	NotConnected ConnectionState = iota
	Connecting
	Connected
	Disconnected
)

// Active reports whether the session is connected or on its way there.
func (s ConnectionState) Active() bool {
	return s == Connecting || s == Connected
}

// String implements fmt.Stringer
func (s ConnectionState) String() string {
	switch s {
	case NotConnected:
		return "Not Connected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// MarshalText encodes the state as a lowercase identifier for JSON/SSE output.
func (s ConnectionState) MarshalText() ([]byte, error) {
	switch s {
	case NotConnected:
		return []byte("not_connected"), nil
	case Connecting:
		return []byte("connecting"), nil
	case Connected:
		return []byte("connected"), nil
	case Disconnected:
		return []byte("disconnected"), nil
	}
	return nil, fmt.Errorf("unknown connection state %d", int(s))
}

// UnmarshalText is the inverse of MarshalText.
func (s *ConnectionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "not_connected":
		*s = NotConnected
	case "connecting":
		*s = Connecting
	case "connected":
		*s = Connected
	case "disconnected":
		*s = Disconnected
	default:
		return fmt.Errorf("unknown connection state %q", text)
	}
	return nil
}

// ChannelStatus is the raw status reported by an event channel.
type ChannelStatus string

const (
	StatusNotConnected ChannelStatus = "notConnected"
	StatusDisconnected ChannelStatus = "disconnected"
	StatusConnecting   ChannelStatus = "connecting"
	StatusConnected    ChannelStatus = "connected"
)

// Active reports whether the channel is connected or connecting.
func (s ChannelStatus) Active() bool {
	return s == StatusConnected || s == StatusConnecting
}

// ParseChannelStatus decodes a statusChange payload (a JSON string).
func ParseChannelStatus(payload []byte) (ChannelStatus, error) {
	var raw string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return "", fmt.Errorf("decode channel status: %w", err)
	}
	switch s := ChannelStatus(raw); s {
	case StatusNotConnected, StatusDisconnected, StatusConnecting, StatusConnected:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannelStatus, raw)
}
