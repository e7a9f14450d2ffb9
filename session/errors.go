package session

import (
	"errors"
	"fmt"
)

// Classified session errors. The supervisor handles these locally;
// they are never surfaced to the caller as returned errors.
var (
	// ErrConnectTimeout reports that a connection was not opened
	// within Config.ConnectTimeout.
	ErrConnectTimeout = errors.New("session: connect timeout")

	// ErrPingTimeout reports that no inbound unit (probe or data)
	// arrived within Config.PingTimeout.
	ErrPingTimeout = errors.New("session: keepalive timeout")

	// ErrInvalidState reports an operation against a connection that
	// is absent, mid-receive, or not open.
	ErrInvalidState = errors.New("session: invalid connection state")
)

// CloseError reports that the transport closed the connection.
type CloseError struct {
	Code   int
	Reason string
	// Clean is true when the close was negotiated by the protocol.
	// A clean close ends the session; an unclean one is retried.
	Clean bool
}

// Error implements the error interface.
func (e *CloseError) Error() string {
	kind := "unclean"
	if e.Clean {
		kind = "clean"
	}
	if e.Reason == "" {
		return fmt.Sprintf("session: connection closed (%s, code %d)", kind, e.Code)
	}
	return fmt.Sprintf("session: connection closed (%s, code %d): %s", kind, e.Code, e.Reason)
}

// Retryable reports whether the supervisor responds to err with a
// reconnect attempt. Connect timeouts, keepalive timeouts, invalid
// state, and unclean closes retry; a clean close terminates the
// session; everything outside the taxonomy is fatal.
func Retryable(err error) bool {
	var ce *CloseError
	if errors.As(err, &ce) {
		return !ce.Clean
	}
	return errors.Is(err, ErrConnectTimeout) ||
		errors.Is(err, ErrPingTimeout) ||
		errors.Is(err, ErrInvalidState)
}
