// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"quoridor-server/internal/game"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	// ListenAddr is the raw TCP game endpoint.
	ListenAddr string
	// HTTPAddr serves the REST API and the websocket endpoint.
	HTTPAddr string
	// RedisAddr enables the lifecycle event publisher when non-empty.
	RedisAddr string
	// DBPath is the SQLite file holding archived match results.
	DBPath string

	// MaxGames caps concurrently active lobbies.
	MaxGames int

	// Timings drives heartbeats, disconnection detection and the
	// reconnection window inside each lobby.
	Timings game.Timings

	// ReceiveTimeout bounds a single blocking socket read so session
	// loops can observe shutdown and ownership changes.
	ReceiveTimeout time.Duration
	// RegistrySweepInterval is how often finished lobbies are removed.
	RegistrySweepInterval time.Duration
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := &Config{
		ListenAddr:            envString("QUORIDOR_LISTEN_ADDR", ":5000"),
		HTTPAddr:              envString("QUORIDOR_HTTP_ADDR", ":8080"),
		RedisAddr:             os.Getenv("REDIS_CONNSTRING"),
		DBPath:                envString("QUORIDOR_DB_PATH", "./quoridor.db"),
		Timings:               game.DefaultTimings(),
		ReceiveTimeout:        500 * time.Millisecond,
		RegistrySweepInterval: time.Second,
	}

	var err error
	if cfg.MaxGames, err = envInt("QUORIDOR_MAX_GAMES", 100); err != nil {
		return nil, err
	}
	if cfg.Timings.HeartbeatInterval, err = envDuration("QUORIDOR_HEARTBEAT_INTERVAL", cfg.Timings.HeartbeatInterval); err != nil {
		return nil, err
	}
	if cfg.Timings.NormalTimeout, err = envDuration("QUORIDOR_NORMAL_TIMEOUT", cfg.Timings.NormalTimeout); err != nil {
		return nil, err
	}
	if cfg.Timings.ReconnectionWindow, err = envDuration("QUORIDOR_RECONNECTION_WINDOW", cfg.Timings.ReconnectionWindow); err != nil {
		return nil, err
	}

	if cfg.MaxGames <= 0 {
		return nil, fmt.Errorf("QUORIDOR_MAX_GAMES must be positive, got %d", cfg.MaxGames)
	}
	if cfg.Timings.NormalTimeout >= cfg.Timings.ReconnectionWindow {
		return nil, fmt.Errorf("reconnection window %s must exceed the disconnection timeout %s",
			cfg.Timings.ReconnectionWindow, cfg.Timings.NormalTimeout)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
