// Package server is the session manager: it accepts connections, walks
// each one through the protocol sequence (welcome, name exchange,
// reconnection or matchmaking, gameplay loop) and owns the registry of
// waiting players and active lobbies.
package server

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"quoridor-server/internal/config"
	"quoridor-server/internal/game"
	"quoridor-server/internal/transport"
)

var tracer = otel.Tracer("server")

// Server accepts player connections over TCP and websocket and runs the
// per-connection session sequence for each.
type Server struct {
	cfg      *config.Config
	registry *Registry
	observer game.Observer
	upgrader websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
	closing  bool
}

func New(cfg *config.Config, observer game.Observer) *Server {
	if observer == nil {
		observer = game.NopObserver{}
	}
	return &Server{
		cfg:      cfg,
		registry: NewRegistry(cfg.MaxGames),
		observer: observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		done: make(chan struct{}),
	}
}

// Registry exposes the lobby registry for the HTTP API.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Run listens on the configured TCP address and serves connections
// until Shutdown. It blocks.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.listener = ln
	s.mu.Unlock()

	go s.runRegistrySweep()

	slog.Info("game server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Warn("failed to accept connection", "error", err)
			continue
		}
		go s.handleSession(transport.NewTCPConn(conn))
	}
}

// Addr returns the bound listen address, for tests using port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting, stops the background sweep and releases all
// waiting players and active lobbies.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	ln := s.listener
	close(s.done)
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil {
			slog.Debug("error closing listener", "error", err)
		}
	}
	s.registry.ReleaseAll()
	slog.Info("game server stopped")
}

// WebSocketHandler upgrades an HTTP request and feeds the connection
// into the same session sequence as a raw TCP socket.
func (s *Server) WebSocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("failed to upgrade websocket connection", "error", err)
			return
		}
		go s.handleSession(transport.NewWSConn(conn))
	}
}

// runRegistrySweep periodically removes lobbies that are no longer in
// progress from the active-match registry.
func (s *Server) runRegistrySweep() {
	ticker := time.NewTicker(s.cfg.RegistrySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for _, g := range s.registry.SweepEnded() {
				slog.Info("removed finished lobby", "lobby.id", g.LobbyID())
			}
		}
	}
}
