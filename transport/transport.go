package transport

import (
	"context"
	"errors"
)

// Errors
var (
	ErrNotOpen       = errors.New("transport: connection not open")
	ErrAlreadyClosed = errors.New("transport: already closed")
)

// Common websocket close codes (RFC 6455).
const (
	CloseNormal    = 1000
	CloseGoingAway = 1001
	CloseAbnormal  = 1006
)

// State is the ready state of a connection.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Payload is one application-level unit on the wire, either text or
// binary.
type Payload struct {
	Data   []byte
	Binary bool
}

// Text builds a text payload.
func Text(s string) Payload {
	return Payload{Data: []byte(s)}
}

// Binary builds a binary payload.
func Binary(b []byte) Payload {
	return Payload{Data: b, Binary: true}
}

// String returns the payload bytes as a string.
func (p Payload) String() string {
	return string(p.Data)
}

// EventType identifies what a connection event carries.
type EventType int

const (
	// EventMessage delivers an inbound payload.
	EventMessage EventType = iota
	// EventError reports a transport fault. An EventClose follows.
	EventError
	// EventClose is the terminal event of a connection; the event
	// stream is closed after it.
	EventClose
)

// String returns the lowercase event type name.
func (t EventType) String() string {
	switch t {
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// CloseInfo describes how a connection ended.
type CloseInfo struct {
	Code   int
	Reason string
	// Clean is true when the peer negotiated the close via the
	// protocol, false for aborts and transport faults.
	Clean bool
}

// Event is one entry in a connection's inbound event stream.
type Event struct {
	Type    EventType
	Payload Payload   // EventMessage
	Close   CloseInfo // EventClose
	Err     error     // EventError
}

// Conn is one physical connection. Events are delivered in wire order;
// the stream ends with a single EventClose after which the channel is
// closed.
type Conn interface {
	// Send writes one payload. Fails with ErrNotOpen when the
	// connection is not in StateOpen.
	Send(p Payload) error

	// Close initiates a close handshake with the given status code and
	// reason. A second call returns ErrAlreadyClosed; the terminal
	// EventClose still arrives on the event stream.
	Close(code int, reason string) error

	// State returns the current ready state.
	State() State

	// Events returns the inbound event stream.
	Events() <-chan Event
}

// Dialer establishes physical connections.
type Dialer interface {
	// DialContext opens a connection to url. The context bounds the
	// whole handshake; its cancellation or deadline aborts the attempt.
	DialContext(ctx context.Context, url string) (Conn, error)
}
