package session

import (
	"context"
	"sync"
	"time"

	"github.com/rickgao/wslink/transport"
)

// fakeConn is a scripted transport.Conn for supervisor and receiver
// tests.
type fakeConn struct {
	mu     sync.Mutex
	state  transport.State
	sent   []transport.Payload
	events chan transport.Event
	closed bool

	sentCh chan transport.Payload
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		state:  transport.StateOpen,
		events: make(chan transport.Event, 64),
		sentCh: make(chan transport.Payload, 64),
	}
}

func (c *fakeConn) Send(p transport.Payload) error {
	c.mu.Lock()
	if c.state != transport.StateOpen {
		c.mu.Unlock()
		return transport.ErrNotOpen
	}
	c.sent = append(c.sent, p)
	c.mu.Unlock()

	select {
	case c.sentCh <- p:
	default:
	}
	return nil
}

func (c *fakeConn) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return transport.ErrAlreadyClosed
	}
	c.closed = true
	c.state = transport.StateClosed
	c.events <- transport.Event{
		Type:  transport.EventClose,
		Close: transport.CloseInfo{Code: code, Reason: reason, Clean: true},
	}
	close(c.events)
	return nil
}

func (c *fakeConn) State() transport.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeConn) Events() <-chan transport.Event {
	return c.events
}

// pushMessage feeds an inbound text payload.
func (c *fakeConn) pushMessage(text string) {
	c.events <- transport.Event{Type: transport.EventMessage, Payload: transport.Text(text)}
}

// pushClose feeds a terminal close event without marking the conn
// locally closed first (a peer-initiated close).
func (c *fakeConn) pushClose(code int, reason string, clean bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state = transport.StateClosed
	c.mu.Unlock()

	c.events <- transport.Event{
		Type:  transport.EventClose,
		Close: transport.CloseInfo{Code: code, Reason: reason, Clean: clean},
	}
	close(c.events)
}

func (c *fakeConn) sentPayloads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.sent))
	for i, p := range c.sent {
		out[i] = p.String()
	}
	return out
}

// fakeDialer runs a scripted dial function and records attempt times.
type fakeDialer struct {
	mu    sync.Mutex
	dials []time.Time
	dial  func(ctx context.Context, attempt int) (transport.Conn, error)
}

func (d *fakeDialer) DialContext(ctx context.Context, url string) (transport.Conn, error) {
	d.mu.Lock()
	attempt := len(d.dials)
	d.dials = append(d.dials, time.Now())
	d.mu.Unlock()

	return d.dial(ctx, attempt)
}

func (d *fakeDialer) dialTimes() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Time(nil), d.dials...)
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dials)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
