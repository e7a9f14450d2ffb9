package config

import "github.com/rickgao/wslink/session"

// DefaultLogLevel is used when the log level is left empty.
const DefaultLogLevel = "info"

func (c *Config) applyDefaults() {
	if c.Session.ConnectTimeout == 0 {
		c.Session.ConnectTimeout = session.DefaultConnectTimeout
	}
	if c.Session.PingPayload == "" {
		c.Session.PingPayload = session.DefaultPingPayload
	}
	if c.Session.PongPayload == "" {
		c.Session.PongPayload = session.DefaultPongPayload
	}
	if c.Session.PingTimeout == 0 {
		c.Session.PingTimeout = session.DefaultPingTimeout
	}
	if c.Session.MaxRetries == 0 {
		c.Session.MaxRetries = session.DefaultMaxRetries
	}
	if c.Session.RetryInterval == 0 {
		c.Session.RetryInterval = session.DefaultRetryInterval
	}
	if c.Session.MaxRetryInterval == 0 {
		c.Session.MaxRetryInterval = session.DefaultMaxRetryInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
