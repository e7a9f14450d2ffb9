package session

import (
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{URL: "ws://peer"}.withDefaults()

	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want 5s", cfg.ConnectTimeout)
	}
	if cfg.PingPayload != "P" {
		t.Errorf("PingPayload = %q, want %q", cfg.PingPayload, "P")
	}
	if cfg.PongPayload != "P" {
		t.Errorf("PongPayload = %q, want %q", cfg.PongPayload, "P")
	}
	if cfg.PingTimeout != 20*time.Second {
		t.Errorf("PingTimeout = %v, want 20s", cfg.PingTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryInterval != time.Second {
		t.Errorf("RetryInterval = %v, want 1s", cfg.RetryInterval)
	}
	if cfg.MaxRetryInterval != 60*time.Second {
		t.Errorf("MaxRetryInterval = %v, want 60s", cfg.MaxRetryInterval)
	}
}

func TestConfig_DefaultsKeepOverrides(t *testing.T) {
	cfg := Config{
		URL:         "ws://peer",
		PingPayload: "ping",
		MaxRetries:  7,
	}.withDefaults()

	if cfg.PingPayload != "ping" {
		t.Errorf("PingPayload = %q, want %q", cfg.PingPayload, "ping")
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", cfg.MaxRetries)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URL: "ws://peer"}, false},
		{"missing url", Config{}, true},
		{"negative connect timeout", Config{URL: "ws://peer", ConnectTimeout: -time.Second}, true},
		{"negative ping timeout", Config{URL: "ws://peer", PingTimeout: -time.Second}, true},
		{"negative max retries", Config{URL: "ws://peer", MaxRetries: -1}, true},
		{"negative retry interval", Config{URL: "ws://peer", RetryInterval: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	s := &Supervisor{cfg: Config{
		RetryInterval:    time.Second,
		MaxRetryInterval: 10 * time.Second,
	}}

	tests := []struct {
		retries int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},  // capped
		{60, 10 * time.Second}, // shift clamped, then capped
	}

	for _, tt := range tests {
		if got := s.backoff(tt.retries); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.retries, got, tt.want)
		}
	}
}
