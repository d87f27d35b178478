package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"quoridor-server/internal/game"
	"quoridor-server/internal/player"
	"quoridor-server/internal/transport"
	"quoridor-server/internal/validator"
	"quoridor-server/pkg/proto"
)

const (
	welcomeText = "Connected to Quoridor server"
	waitingText = "Waiting for opponent..."
)

// errNoFrame reports a read deadline that expired before a complete
// frame arrived. The caller keeps the session alive and retries.
var errNoFrame = errors.New("no complete frame available")

// frameReader splits the byte stream into newline-delimited frames.
// Partial frames are retained across reads so a message fragmented by
// the network is reassembled before decoding.
type frameReader struct {
	conn    transport.Conn
	timeout time.Duration
	pending []byte
}

func newFrameReader(conn transport.Conn, timeout time.Duration) *frameReader {
	return &frameReader{conn: conn, timeout: timeout}
}

func (f *frameReader) next() ([]byte, error) {
	for {
		if i := bytes.IndexByte(f.pending, '\n'); i >= 0 {
			line := f.pending[:i]
			f.pending = f.pending[i+1:]
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			return line, nil
		}
		chunk, err := f.conn.ReadFrame(f.timeout)
		if err != nil {
			if transport.IsTimeout(err) {
				return nil, errNoFrame
			}
			return nil, err
		}
		f.pending = append(f.pending, chunk...)
	}
}

// handleSession walks one connection through the full protocol
// sequence: welcome, name exchange, reconnection or matchmaking, then
// the gameplay receive loop.
func (s *Server) handleSession(conn transport.Conn) {
	sessionID := uuid.New().String()
	ctx, span := tracer.Start(context.Background(), "server.handleSession",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("remote.addr", conn.RemoteAddr()),
		))
	defer span.End()

	log := slog.With("session.id", sessionID, "remote", conn.RemoteAddr())
	log.Info("connection accepted")

	p := player.New(conn)
	fr := newFrameReader(conn, s.cfg.ReceiveTimeout)

	if err := p.Send(proto.NewWelcome(welcomeText)); err != nil {
		conn.Close()
		return
	}
	if err := p.Send(proto.NewNameRequest()); err != nil {
		conn.Close()
		return
	}

	name, ok := s.awaitName(p, fr)
	if !ok {
		log.Info("connection closed before name registration")
		conn.Close()
		return
	}
	p.Name = name
	log = log.With("player.name", name)
	span.SetAttributes(attribute.String("player.name", name))

	if g, existing, found := s.registry.FindReconnectable(name); found {
		// Adopt the dormant record. The previous session goroutine
		// notices its socket was replaced and exits without teardown.
		old := existing.AttachConn(conn)
		existing.UpdateHeartbeat()
		// The liveness sweep clears the flag and notifies both sides.
		existing.SetReconnecting(true)
		existing.SetConnected(true)
		p = existing
		if old != nil && old != conn {
			old.Close()
		}
		log.Info("player reconnected", "lobby.id", g.LobbyID(), "player.id", p.ID)
	} else {
		g, opponent, accepted := s.registry.MatchOrWait(p, func(lobbyID int) *game.Game {
			return game.NewGame(lobbyID, s.observer, s.cfg.Timings)
		})
		if !accepted {
			log.Warn("registration rejected, server at capacity")
			p.Send(proto.NewError("Server is full"))
			conn.Close()
			return
		}
		if g != nil {
			g.AddPlayer(opponent)
			g.AddPlayer(p)
			log.Info("match started", "lobby.id", g.LobbyID(),
				"player.id", p.ID, "opponent", opponent.Name)
		} else {
			p.Send(proto.NewWaiting(waitingText))
			log.Info("player queued for matchmaking")
		}
	}

	go s.runHeartbeat(p, conn)
	s.receiveLoop(ctx, p, conn, fr, log)
	s.cleanup(p, conn, log)
}

// awaitName blocks until the client registers a non-empty name. Other
// message kinds are answered with an error and a fresh name request.
func (s *Server) awaitName(p *player.Player, fr *frameReader) (string, bool) {
	for {
		line, err := fr.next()
		if errors.Is(err, errNoFrame) {
			continue
		}
		if err != nil {
			return "", false
		}
		p.UpdateHeartbeat()

		env := proto.Decode(line)
		switch env.Type {
		case proto.Ack, proto.Heartbeat:
			continue
		case proto.Abandon:
			return "", false
		case proto.NameResponse:
			var payload proto.NameResponsePayload
			if err := env.DecodeData(&payload); err == nil {
				if err := validator.GetValidator().Struct(payload); err == nil {
					return payload.Name, true
				}
			}
			p.Send(proto.NewError("Name must not be empty"))
			p.Send(proto.NewNameRequest())
		default:
			p.Send(proto.NewError("Please provide your name first"))
			p.Send(proto.NewNameRequest())
		}
	}
}

// receiveLoop pumps frames from the socket into the session until the
// socket dies, the record is released or another session adopts it.
func (s *Server) receiveLoop(ctx context.Context, p *player.Player, conn transport.Conn, fr *frameReader, log *slog.Logger) {
	for {
		if !p.IsConnected() || p.Conn() != conn {
			return
		}

		line, err := fr.next()
		if errors.Is(err, errNoFrame) {
			continue
		}
		if err != nil {
			log.Debug("read loop ended", "error", err)
			return
		}
		p.UpdateHeartbeat()

		env := proto.Decode(line)
		switch env.Type {
		case proto.Heartbeat:
			p.Send(proto.NewAck())
		case proto.Ack:
			// Liveness already refreshed above.
		case proto.Abandon:
			log.Info("player abandoned")
			s.handleAbandon(p)
			return
		default:
			s.handleGameMessage(ctx, p, env)
		}
	}
}

// handleGameMessage gates a frame before it reaches the engine: the
// player must be in a match, the frame must decode to a known kind and
// the embedded player id must match the sender.
func (s *Server) handleGameMessage(ctx context.Context, p *player.Player, env proto.Envelope) {
	ctx, span := tracer.Start(ctx, "server.handleGameMessage",
		trace.WithAttributes(attribute.String("message.type", string(env.Type))))
	defer span.End()

	g, ok := s.registry.Lookup(p.GameID())
	if !ok {
		p.Send(proto.NewError("Invalid message"))
		return
	}
	if !env.Valid() || env.Type != proto.Move {
		p.Send(proto.NewError("Invalid message"))
		return
	}

	m := game.ParseMove(env)
	if !m.ValidStructure() {
		p.Send(proto.NewError("Invalid message"))
		return
	}
	if m.PlayerIndex < 0 {
		p.Send(proto.NewError("Invalid player ID"))
		return
	}
	if m.PlayerID != p.ID {
		p.Send(proto.NewError("Not your turn"))
		return
	}

	g.HandleMove(ctx, m)
}

// handleAbandon treats an explicit quit as a permanent loss when in a
// match, or drops the player from the waiting queue otherwise.
func (s *Server) handleAbandon(p *player.Player) {
	if g, ok := s.registry.Lookup(p.GameID()); ok {
		g.HandlePlayerDisconnection(p)
	} else {
		s.registry.RemoveWaiting(p)
	}
	p.SetConnected(false)
}

// runHeartbeat pushes periodic heartbeats over this socket while the
// record still owns it. Send failures are left to the liveness sweep.
func (s *Server) runHeartbeat(p *player.Player, conn transport.Conn) {
	ticker := time.NewTicker(s.cfg.Timings.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if !p.IsConnected() || p.Conn() != conn {
				return
			}
			if err := p.Send(proto.NewHeartbeat()); err != nil {
				slog.Debug("heartbeat send failed",
					"player.id", p.ID, "error", err)
			}
		}
	}
}

// cleanup runs when the receive loop exits. A record still linked to a
// match is kept around for the reconnection window; the liveness sweep
// decides its fate.
func (s *Server) cleanup(p *player.Player, conn transport.Conn, log *slog.Logger) {
	defer conn.Close()

	if p.Conn() != conn {
		// Another session adopted this record. Only the stale socket
		// belongs to us.
		return
	}
	if p.GameID() == player.Unattached {
		if s.registry.RemoveWaiting(p) {
			log.Info("removed player from waiting queue")
		}
		p.SetConnected(false)
		return
	}
	log.Info("session ended while in match, reconnection window open",
		"lobby.id", p.GameID())
}
