package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint.url is required")
	}
	if !strings.HasPrefix(c.Endpoint.URL, "ws://") && !strings.HasPrefix(c.Endpoint.URL, "wss://") {
		return fmt.Errorf("endpoint.url must be a ws:// or wss:// URL, got %q", c.Endpoint.URL)
	}

	if err := c.SessionConfig().Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}

	return nil
}
