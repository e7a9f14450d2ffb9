package transport

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials websocket connections.
type WebSocketDialer struct {
	cfg    WebSocketConfig
	logger *slog.Logger
}

// WebSocketConfig configures dialed connections.
type WebSocketConfig struct {
	Subprotocols []string      // Sec-WebSocket-Protocol values offered to the peer
	WriteTimeout time.Duration // Write deadline for sends and close frames
	CloseGrace   time.Duration // How long to wait for the peer's close echo
	BufferSize   int           // Event channel buffer size
}

// DefaultWebSocketConfig returns sensible defaults.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteTimeout: 5 * time.Second,
		CloseGrace:   5 * time.Second,
		BufferSize:   1000,
	}
}

// NewWebSocketDialer creates a dialer. A nil logger falls back to
// slog.Default().
func NewWebSocketDialer(cfg WebSocketConfig, logger *slog.Logger) *WebSocketDialer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWebSocketConfig().WriteTimeout
	}
	if cfg.CloseGrace == 0 {
		cfg.CloseGrace = DefaultWebSocketConfig().CloseGrace
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultWebSocketConfig().BufferSize
	}
	return &WebSocketDialer{cfg: cfg, logger: logger}
}

// DialContext opens a websocket connection and starts its read pump.
func (d *WebSocketDialer) DialContext(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{
		Subprotocols: d.cfg.Subprotocols,
	}

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &wsConn{
		cfg:    d.cfg,
		logger: d.logger,
		ws:     ws,
		state:  StateOpen,
		events: make(chan Event, d.cfg.BufferSize),
	}

	go c.readLoop()

	d.logger.Debug("websocket connected", "url", url, "subprotocol", ws.Subprotocol())

	return c, nil
}

// wsConn adapts one gorilla/websocket connection to the Conn interface.
type wsConn struct {
	cfg    WebSocketConfig
	logger *slog.Logger
	ws     *websocket.Conn

	// Write serialization
	writeMu sync.Mutex

	mu    sync.RWMutex
	state State

	events chan Event
}

// Send writes one payload to the connection.
func (c *wsConn) Send(p Payload) error {
	c.mu.RLock()
	if c.state != StateOpen {
		c.mu.RUnlock()
		return ErrNotOpen
	}
	c.mu.RUnlock()

	msgType := websocket.TextMessage
	if p.Binary {
		msgType = websocket.BinaryMessage
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteMessage(msgType, p.Data)
}

// Close starts the close handshake. The read pump keeps running until
// the peer echoes the close frame (or CloseGrace expires), so the
// terminal EventClose still reaches the event stream.
func (c *wsConn) Close(code int, reason string) error {
	c.mu.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.state = StateClosing
	c.mu.Unlock()

	if code == 0 {
		code = websocket.CloseNormalClosure
	}

	// Bound the wait for the peer's close echo.
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.CloseGrace))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(c.cfg.WriteTimeout),
	)
}

// State returns the current ready state.
func (c *wsConn) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Events returns the inbound event stream.
func (c *wsConn) Events() <-chan Event {
	return c.events
}

// readLoop pumps inbound frames into the event stream and emits the
// terminal close event when the connection dies.
func (c *wsConn) readLoop() {
	defer c.ws.Close()
	defer close(c.events)

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			c.finish(err)
			return
		}

		c.deliver(Event{
			Type:    EventMessage,
			Payload: Payload{Data: data, Binary: msgType == websocket.BinaryMessage},
		})
	}
}

// deliver is a non-blocking event send. Once a connection cycle is
// abandoned nobody drains the stream, so a full buffer drops instead of
// wedging the read pump.
func (c *wsConn) deliver(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("event buffer full, dropping event", "type", ev.Type)
	}
}

// finish marks the connection closed and emits the terminal events for
// the given read error.
func (c *wsConn) finish(err error) {
	c.mu.Lock()
	wasClosing := c.state == StateClosing
	c.state = StateClosed
	c.mu.Unlock()

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		clean := ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
		c.deliver(Event{
			Type:  EventClose,
			Close: CloseInfo{Code: ce.Code, Reason: ce.Text, Clean: clean},
		})
		return
	}

	// A timeout while waiting for the peer's close echo still counts as
	// a locally negotiated close.
	if wasClosing {
		c.deliver(Event{
			Type:  EventClose,
			Close: CloseInfo{Code: websocket.CloseNormalClosure, Clean: true},
		})
		return
	}

	c.logger.Debug("websocket read failed", "error", err)
	c.deliver(Event{Type: EventError, Err: err})
	c.deliver(Event{
		Type:  EventClose,
		Close: CloseInfo{Code: websocket.CloseAbnormalClosure, Reason: err.Error(), Clean: false},
	})
}
