package config

import (
	"log/slog"
	"time"

	"github.com/rickgao/wslink/session"
)

// Config is the root configuration for a wslink command.
type Config struct {
	Endpoint EndpointConfig `yaml:"endpoint"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// EndpointConfig identifies the peer.
type EndpointConfig struct {
	URL          string   `yaml:"url"`
	Subprotocols []string `yaml:"subprotocols"`
	Binary       bool     `yaml:"binary"`
}

// SessionConfig holds session supervisor settings.
type SessionConfig struct {
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	PingPayload      string        `yaml:"ping_payload"`
	PongPayload      string        `yaml:"pong_payload"`
	PingTimeout      time.Duration `yaml:"ping_timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryInterval    time.Duration `yaml:"retry_interval"`
	MaxRetryInterval time.Duration `yaml:"max_retry_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// SlogLevel maps the configured level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SessionConfig converts the file configuration into the session
// package's Config.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		URL:              c.Endpoint.URL,
		Subprotocols:     c.Endpoint.Subprotocols,
		Binary:           c.Endpoint.Binary,
		ConnectTimeout:   c.Session.ConnectTimeout,
		PingPayload:      c.Session.PingPayload,
		PongPayload:      c.Session.PongPayload,
		PingTimeout:      c.Session.PingTimeout,
		MaxRetries:       c.Session.MaxRetries,
		RetryInterval:    c.Session.RetryInterval,
		MaxRetryInterval: c.Session.MaxRetryInterval,
	}
}
