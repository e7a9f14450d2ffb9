package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/wslink/internal/queue"
	"github.com/rickgao/wslink/transport"
)

// maxBackoffShift clamps the backoff exponent so the doubling never
// overflows a duration on large retry budgets.
const maxBackoffShift = 16

// StopCause tells the OnClosed handler why the session ended.
type StopCause int

const (
	// CauseCleanClose: the peer negotiated a clean close.
	CauseCleanClose StopCause = iota
	// CauseExhausted: the retry budget ran out.
	CauseExhausted
	// CauseShutdown: the caller cancelled the session context or shut
	// the supervisor down.
	CauseShutdown
	// CauseFatal: an unclassified error ended the session; see
	// Supervisor.Err.
	CauseFatal
)

// String returns the lowercase cause name.
func (c StopCause) String() string {
	switch c {
	case CauseCleanClose:
		return "clean_close"
	case CauseExhausted:
		return "exhausted"
	case CauseShutdown:
		return "shutdown"
	case CauseFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Handlers are the caller's session callbacks. All are optional.
// OnMessage runs synchronously on the dispatch loop: a panic inside it
// is deliberately not recovered.
type Handlers struct {
	OnMessage   func(transport.Payload)
	OnConnected func()
	OnClosed    func(StopCause)
}

// command is one queued outgoing action, executed by the command loop
// against the current physical connection.
type command func(conn transport.Conn) error

// Supervisor is the session reconnect state machine. It owns the
// command and message queues, which persist across reconnects; only
// the physical connection is replaced each cycle.
type Supervisor struct {
	cfg    Config
	dialer transport.Dialer
	logger *slog.Logger

	mu          sync.Mutex
	sess        *Session
	conn        transport.Conn
	handlers    Handlers
	cmdQ        *queue.Queue[command]
	msgQ        *queue.Queue[transport.Payload]
	retries     int
	closedFired bool
	fatalErr    error
	done        chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a supervisor for the configured endpoint. A nil logger
// falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	if logger == nil {
		logger = slog.Default()
	}

	dialer := cfg.Dialer
	if dialer == nil {
		wsCfg := transport.DefaultWebSocketConfig()
		wsCfg.Subprotocols = cfg.Subprotocols
		dialer = transport.NewWebSocketDialer(wsCfg, logger)
	}

	return &Supervisor{
		cfg:    cfg,
		dialer: dialer,
		logger: logger.With("url", cfg.URL),
	}, nil
}

// OpenSession starts the supervisor loop and returns the session
// handle. Idempotent: while a session is active, further calls return
// the existing handle and ignore the supplied handlers. After the
// supervisor terminates, a new call starts a fresh session.
func (s *Supervisor) OpenSession(ctx context.Context, h Handlers) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess != nil {
		return s.sess
	}

	s.handlers = h
	s.cmdQ = queue.New[command](16)
	s.msgQ = queue.New[transport.Payload](64)
	s.retries = 0
	s.closedFired = false
	s.fatalErr = nil
	s.done = make(chan struct{})
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.sess = &Session{sup: s}

	go s.run()

	return s.sess
}

// Shutdown stops the supervisor and waits for the loop to exit. Safe
// to call at any time.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done returns a channel closed when the supervisor loop has exited.
// Nil before the first OpenSession.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the unclassified error that ended the session, if any.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatalErr
}

// Stats reports the current supervisor state.
func (s *Supervisor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Retries: s.retries}
	if s.conn != nil && s.conn.State() == transport.StateOpen {
		st.Connected = true
	}
	if s.cmdQ != nil {
		st.PendingCommands = s.cmdQ.Len()
	}
	if s.msgQ != nil {
		st.PendingMessages = s.msgQ.Len()
	}
	return st
}

// Stats contains supervisor statistics.
type Stats struct {
	Connected       bool
	Retries         int
	PendingCommands int
	PendingMessages int
}

// run is the supervisor loop:
//
//	for { open -> race {receive, commands, dispatch} -> classify ->
//	      retry with backoff or terminate }
//
// The session reference is cleared when the loop exits permanently.
func (s *Supervisor) run() {
	defer func() {
		s.mu.Lock()
		s.sess = nil
		s.conn = nil
		done := s.done
		// Capture before unlocking: once sess is nil a concurrent
		// OpenSession may install a fresh session and replace cancel.
		cancel := s.cancel
		s.mu.Unlock()

		cancel()
		close(done)
	}()

	for {
		logger := s.logger.With("attempt_id", uuid.NewString())

		conn, err := s.open(s.ctx)
		if err == nil {
			s.mu.Lock()
			s.conn = conn
			s.retries = 0
			s.mu.Unlock()

			logger.Info("session connected")
			if h := s.handlers.OnConnected; h != nil {
				h()
			}

			err = s.connected(conn)

			// Teardown is best-effort; on a dead connection the close
			// frame write simply fails.
			conn.Close(transport.CloseNormal, "")
		}

		if s.ctx.Err() != nil || err == nil {
			logger.Info("session shut down")
			s.fireClosed(CauseShutdown)
			return
		}

		var ce *CloseError
		if errors.As(err, &ce) && ce.Clean {
			logger.Info("session closed cleanly", "code", ce.Code, "reason", ce.Reason)
			s.fireClosed(CauseCleanClose)
			return
		}

		if !Retryable(err) {
			logger.Error("unclassified session error", "error", err)
			s.mu.Lock()
			s.fatalErr = err
			s.mu.Unlock()
			s.fireClosed(CauseFatal)
			return
		}

		s.mu.Lock()
		retries := s.retries
		s.mu.Unlock()

		wait := s.backoff(retries)

		if retries+1 >= s.cfg.MaxRetries {
			logger.Warn("retry budget exhausted",
				"error", err,
				"retries", retries,
				"max_retries", s.cfg.MaxRetries,
			)
			s.fireClosed(CauseExhausted)
			s.sleep(wait)
			return
		}

		logger.Warn("connection cycle failed, retrying",
			"error", err,
			"retry", retries,
			"wait", wait,
		)

		if !s.sleep(wait) {
			s.fireClosed(CauseShutdown)
			return
		}

		s.mu.Lock()
		s.retries++
		s.mu.Unlock()
	}
}

// open returns the current connection when it is already fully
// established, otherwise dials under the connect timeout.
func (s *Supervisor) open(ctx context.Context) (transport.Conn, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn != nil && conn.State() == transport.StateOpen {
		return conn, nil
	}

	dialCtx := ctx
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, err := s.dialer.DialContext(dialCtx, s.cfg.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrConnectTimeout
		}
		// The peer rejected the connection attempt.
		return nil, &CloseError{Code: transport.CloseAbnormal, Reason: err.Error(), Clean: false}
	}

	return conn, nil
}

// connected races the receive, command, and dispatch loops to first
// settlement, then unwinds the losers by cancelling the cycle context
// and both queue waits. The losers are joined before the next cycle
// starts so the queues never have two consumers at once; a loser that
// already popped an item finishes that iteration first.
func (s *Supervisor) connected(conn transport.Conn) error {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	rcv := newReceiver(conn, s.cfg)

	results := make(chan error, 3)
	go func() { results <- rcv.receiveLoop(ctx, s.msgQ) }()
	go func() { results <- s.commandLoop(ctx, conn) }()
	go func() { results <- s.dispatchLoop(ctx) }()

	err := <-results

	cancel()
	s.cmdQ.CancelWait()
	s.msgQ.CancelWait()

	<-results
	<-results

	return err
}

// commandLoop drains queued outgoing actions against the current
// connection. A cancelled wait or cycle end is a clean exit; a failed
// action ends the connection cycle.
func (s *Supervisor) commandLoop(ctx context.Context, conn transport.Conn) error {
	for {
		cmd, err := s.cmdQ.PopCtx(ctx)
		if err != nil {
			return nil
		}
		if err := cmd(conn); err != nil {
			return err
		}
	}
}

// dispatchLoop hands delivered payloads to the caller's OnMessage
// handler in wire order.
func (s *Supervisor) dispatchLoop(ctx context.Context) error {
	for {
		p, err := s.msgQ.PopCtx(ctx)
		if err != nil {
			return nil
		}
		if h := s.handlers.OnMessage; h != nil {
			h(p)
		}
	}
}

// backoff returns the wait before retry i: RetryInterval << i, with
// the exponent clamped and the result capped at MaxRetryInterval.
func (s *Supervisor) backoff(retries int) time.Duration {
	shift := retries
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	wait := s.cfg.RetryInterval << shift
	if s.cfg.MaxRetryInterval > 0 && wait > s.cfg.MaxRetryInterval {
		wait = s.cfg.MaxRetryInterval
	}
	return wait
}

// sleep waits for d or until shutdown; reports whether the full wait
// elapsed.
func (s *Supervisor) sleep(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// fireClosed invokes OnClosed at most once per session.
func (s *Supervisor) fireClosed(cause StopCause) {
	s.mu.Lock()
	if s.closedFired {
		s.mu.Unlock()
		return
	}
	s.closedFired = true
	h := s.handlers.OnClosed
	s.mu.Unlock()

	if h != nil {
		h(cause)
	}
}
