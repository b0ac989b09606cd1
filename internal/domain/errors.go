package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgUnknownTopic         = "unknown topic"
	ErrMsgUnknownEventKind     = "unknown item event kind"
	ErrMsgUnknownChannelStatus = "unknown channel status"
	ErrMsgMalformedPayload     = "malformed item payload"
	ErrMsgChannelClosed        = "event channel is closed"
	ErrMsgNotConnected         = "event channel is not connected"
	ErrMsgInvalidFeedURL       = "invalid feed url"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrUnknownTopic         = errors.New(ErrMsgUnknownTopic)
	ErrUnknownEventKind     = errors.New(ErrMsgUnknownEventKind)
	ErrUnknownChannelStatus = errors.New(ErrMsgUnknownChannelStatus)
	ErrMalformedPayload     = errors.New(ErrMsgMalformedPayload)
	ErrChannelClosed        = errors.New(ErrMsgChannelClosed)
	ErrNotConnected         = errors.New(ErrMsgNotConnected)
	ErrInvalidFeedURL       = errors.New(ErrMsgInvalidFeedURL)
)

// DecodeError is the failure arm of item decoding. It names the offending
// field when the failure is attributable to one.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrMsgMalformedPayload, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", ErrMsgMalformedPayload, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedPayload) hold for every DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedPayload
}
