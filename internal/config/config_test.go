package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":5000" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":5000")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.MaxGames != 100 {
		t.Errorf("MaxGames = %d, want 100", cfg.MaxGames)
	}
	if cfg.Timings.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %s, want 5s", cfg.Timings.HeartbeatInterval)
	}
	if cfg.Timings.NormalTimeout != 15*time.Second {
		t.Errorf("NormalTimeout = %s, want 15s", cfg.Timings.NormalTimeout)
	}
	if cfg.Timings.ReconnectionWindow != 120*time.Second {
		t.Errorf("ReconnectionWindow = %s, want 120s", cfg.Timings.ReconnectionWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUORIDOR_LISTEN_ADDR", ":6000")
	t.Setenv("QUORIDOR_MAX_GAMES", "7")
	t.Setenv("QUORIDOR_NORMAL_TIMEOUT", "2s")
	t.Setenv("QUORIDOR_RECONNECTION_WINDOW", "30s")
	t.Setenv("REDIS_CONNSTRING", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":6000" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, ":6000")
	}
	if cfg.MaxGames != 7 {
		t.Errorf("MaxGames = %d, want 7", cfg.MaxGames)
	}
	if cfg.Timings.NormalTimeout != 2*time.Second {
		t.Errorf("NormalTimeout = %s, want 2s", cfg.Timings.NormalTimeout)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6379")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric max games", "QUORIDOR_MAX_GAMES", "lots"},
		{"negative max games", "QUORIDOR_MAX_GAMES", "-1"},
		{"bad duration", "QUORIDOR_NORMAL_TIMEOUT", "fast"},
		{"window not past timeout", "QUORIDOR_RECONNECTION_WINDOW", "1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
