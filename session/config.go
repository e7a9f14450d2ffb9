package session

import (
	"fmt"
	"time"

	"github.com/rickgao/wslink/transport"
)

// Default values for optional configuration fields.
const (
	DefaultConnectTimeout   = 5 * time.Second
	DefaultPingPayload      = "P"
	DefaultPongPayload      = "P"
	DefaultPingTimeout      = 20 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryInterval    = 1 * time.Second
	DefaultMaxRetryInterval = 60 * time.Second
)

// Config configures a session supervisor. The zero value of every
// field except URL is replaced by the documented default.
type Config struct {
	// URL is the websocket endpoint of the peer. Required.
	URL string

	// Subprotocols are offered during the handshake.
	Subprotocols []string

	// Binary selects binary frames for keepalive replies and the
	// SendText convenience payloads.
	Binary bool

	// ConnectTimeout bounds one connection attempt.
	ConnectTimeout time.Duration

	// PingPayload is the keepalive probe the peer sends; inbound units
	// equal to it are answered with PongPayload and never dispatched.
	PingPayload string

	// PongPayload is the reply sent for each intercepted probe.
	PongPayload string

	// PingTimeout is the maximum gap between inbound units before the
	// connection is considered dead.
	PingTimeout time.Duration

	// MaxRetries caps consecutive failed connection cycles before the
	// session gives up.
	MaxRetries int

	// RetryInterval is the base reconnect delay; the wait before retry
	// i is RetryInterval << i.
	RetryInterval time.Duration

	// MaxRetryInterval caps the backoff wait.
	MaxRetryInterval time.Duration

	// Dialer overrides the transport used to open connections. Nil
	// selects the websocket dialer.
	Dialer transport.Dialer
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.PingPayload == "" {
		c.PingPayload = DefaultPingPayload
	}
	if c.PongPayload == "" {
		c.PongPayload = DefaultPongPayload
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = DefaultPingTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.MaxRetryInterval == 0 {
		c.MaxRetryInterval = DefaultMaxRetryInterval
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout must be non-negative, got %v", c.ConnectTimeout)
	}
	if c.PingTimeout < 0 {
		return fmt.Errorf("ping timeout must be non-negative, got %v", c.PingTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", c.MaxRetries)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("retry interval must be non-negative, got %v", c.RetryInterval)
	}
	if c.MaxRetryInterval < 0 {
		return fmt.Errorf("max retry interval must be non-negative, got %v", c.MaxRetryInterval)
	}
	return nil
}
