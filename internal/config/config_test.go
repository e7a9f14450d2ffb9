package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
endpoint:
  url: wss://peer.example.com/ws
  subprotocols: [chat.v1]
session:
  ping_timeout: 30s
  max_retries: 5
log:
  level: debug
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Endpoint.URL != "wss://peer.example.com/ws" {
		t.Errorf("URL = %q", cfg.Endpoint.URL)
	}
	if len(cfg.Endpoint.Subprotocols) != 1 || cfg.Endpoint.Subprotocols[0] != "chat.v1" {
		t.Errorf("Subprotocols = %v", cfg.Endpoint.Subprotocols)
	}

	// Overrides kept, gaps defaulted
	if cfg.Session.PingTimeout != 30*time.Second {
		t.Errorf("PingTimeout = %v, want 30s", cfg.Session.PingTimeout)
	}
	if cfg.Session.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.Session.MaxRetries)
	}
	if cfg.Session.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want default 5s", cfg.Session.ConnectTimeout)
	}
	if cfg.Session.PingPayload != "P" {
		t.Errorf("PingPayload = %q, want default P", cfg.Session.PingPayload)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("WSLINK_TEST_HOST", "peer.example.com")

	path := writeConfig(t, `
endpoint:
  url: wss://${WSLINK_TEST_HOST}/ws
log:
  level: info
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Endpoint.URL != "wss://peer.example.com/ws" {
		t.Errorf("URL = %q, env not expanded", cfg.Endpoint.URL)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "log:\n  level: info\n"},
		{"bad scheme", "endpoint:\n  url: https://peer\n"},
		{"bad log level", "endpoint:\n  url: ws://peer\nlog:\n  level: loud\n"},
		{"negative retry interval", "endpoint:\n  url: ws://peer\nsession:\n  retry_interval: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadAndValidate(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSessionConfig_Convert(t *testing.T) {
	path := writeConfig(t, `
endpoint:
  url: ws://peer
  binary: true
session:
  ping_payload: heartbeat
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	sc := cfg.SessionConfig()
	if sc.URL != "ws://peer" {
		t.Errorf("URL = %q", sc.URL)
	}
	if !sc.Binary {
		t.Error("Binary not carried over")
	}
	if sc.PingPayload != "heartbeat" {
		t.Errorf("PingPayload = %q", sc.PingPayload)
	}
}
