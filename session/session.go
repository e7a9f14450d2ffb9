package session

import (
	"github.com/rickgao/wslink/internal/queue"
	"github.com/rickgao/wslink/transport"
)

// Session is the caller-facing handle over the supervisor's current
// command queue. It stays valid across reconnects and is invalidated
// when the supervisor terminates.
type Session struct {
	sup *Supervisor
}

// queueFor returns the supervisor's command queue while this handle is
// the active session. ErrInvalidState is the one error the session
// layer reports synchronously, and only for use after termination.
func (s *Session) queueFor() (*queue.Queue[command], error) {
	s.sup.mu.Lock()
	defer s.sup.mu.Unlock()

	if s.sup.sess != s {
		return nil, ErrInvalidState
	}
	return s.sup.cmdQ, nil
}

// Send enqueues one payload. It never blocks: the payload is delivered
// by the command loop once a connection is available, in issuance
// order, including across a reconnect.
func (s *Session) Send(p transport.Payload) error {
	q, err := s.queueFor()
	if err != nil {
		return err
	}

	q.Push(func(conn transport.Conn) error {
		if conn == nil || conn.State() != transport.StateOpen {
			return ErrInvalidState
		}
		if err := conn.Send(p); err != nil {
			// A failed write means the connection died under us.
			return &CloseError{Reason: "send failed: " + err.Error(), Clean: false}
		}
		return nil
	})
	return nil
}

// SendText enqueues a text payload (binary when Config.Binary is set).
func (s *Session) SendText(text string) error {
	p := transport.Text(text)
	p.Binary = s.sup.cfg.Binary
	return s.Send(p)
}

// SendBinary enqueues a binary payload.
func (s *Session) SendBinary(data []byte) error {
	return s.Send(transport.Binary(data))
}

// Close enqueues a close request for the current connection. A no-op
// when no connection exists by the time the request executes.
func (s *Session) Close(code int, reason string) error {
	q, err := s.queueFor()
	if err != nil {
		return err
	}

	q.Push(func(conn transport.Conn) error {
		if conn == nil {
			return nil
		}
		// The close outcome surfaces through the receiver as a
		// CloseError; a failed close frame write is not itself fatal.
		conn.Close(code, reason)
		return nil
	})
	return nil
}

// ReadyState returns the state of the current physical connection.
// ok is false when the session has terminated or no connection exists.
func (s *Session) ReadyState() (state transport.State, ok bool) {
	s.sup.mu.Lock()
	defer s.sup.mu.Unlock()

	if s.sup.sess != s || s.sup.conn == nil {
		return 0, false
	}
	return s.sup.conn.State(), true
}

// Done returns a channel closed when the owning supervisor terminates.
func (s *Session) Done() <-chan struct{} {
	return s.sup.Done()
}
