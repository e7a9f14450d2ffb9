package session

import (
	"bytes"
	"context"
	"sync/atomic"
	"time"

	"github.com/rickgao/wslink/internal/queue"
	"github.com/rickgao/wslink/transport"
)

// receiver reads inbound units from one physical connection,
// transparently answering keepalive probes. One receiver belongs to
// exactly one connection cycle.
type receiver struct {
	conn transport.Conn
	cfg  Config

	// Guards the single-outstanding-receive invariant.
	busy atomic.Bool
}

func newReceiver(conn transport.Conn, cfg Config) *receiver {
	return &receiver{conn: conn, cfg: cfg}
}

// receiveOne waits for exactly one non-probe inbound payload. Probes
// are answered in place and restart the keepalive window; they never
// surface to the caller. Fails with ErrPingTimeout when no unit
// arrives in time, with a CloseError when the connection ends, and
// with ErrInvalidState when the connection cannot be received from or
// another receive is already outstanding.
func (r *receiver) receiveOne(ctx context.Context) (transport.Payload, error) {
	if r.conn == nil {
		return transport.Payload{}, ErrInvalidState
	}
	// StateClosing still receives: the peer's close echo must reach the
	// supervisor as a clean CloseError.
	if st := r.conn.State(); st != transport.StateOpen && st != transport.StateClosing {
		return transport.Payload{}, ErrInvalidState
	}
	if !r.busy.CompareAndSwap(false, true) {
		return transport.Payload{}, ErrInvalidState
	}
	defer r.busy.Store(false)

	var timeout <-chan time.Time
	var timer *time.Timer
	if r.cfg.PingTimeout > 0 {
		timer = time.NewTimer(r.cfg.PingTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	probe := []byte(r.cfg.PingPayload)

	for {
		select {
		case <-ctx.Done():
			return transport.Payload{}, ctx.Err()

		case <-timeout:
			return transport.Payload{}, ErrPingTimeout

		case ev, ok := <-r.conn.Events():
			if !ok {
				return transport.Payload{}, &CloseError{Reason: "event stream ended", Clean: false}
			}

			switch ev.Type {
			case transport.EventMessage:
				if bytes.Equal(ev.Payload.Data, probe) {
					reply := transport.Payload{Data: []byte(r.cfg.PongPayload), Binary: ev.Payload.Binary}
					if err := r.conn.Send(reply); err != nil {
						return transport.Payload{}, &CloseError{Reason: "keepalive reply failed: " + err.Error(), Clean: false}
					}
					// The probe proved liveness.
					if timer != nil {
						timer.Reset(r.cfg.PingTimeout)
					}
					continue
				}
				return ev.Payload, nil

			case transport.EventClose:
				return transport.Payload{}, &CloseError{Code: ev.Close.Code, Reason: ev.Close.Reason, Clean: ev.Close.Clean}

			case transport.EventError:
				// The terminal close event follows.
				continue
			}
		}
	}
}

// receiveLoop pumps payloads into the message queue until receiveOne
// fails, and propagates that failure.
func (r *receiver) receiveLoop(ctx context.Context, msgQ *queue.Queue[transport.Payload]) error {
	for {
		p, err := r.receiveOne(ctx)
		if err != nil {
			return err
		}
		msgQ.Push(p)
	}
}
