package game

import (
	"context"
	"log/slog"
	"time"

	"quoridor-server/pkg/proto"
)

// runLivenessSweep periodically checks each player's heartbeat while
// the match is in progress. It stops deterministically when the match
// ends via the done channel.
func (g *Game) runLivenessSweep() {
	ticker := time.NewTicker(g.timings.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			slog.Debug("liveness sweep stopped", "lobby.id", g.lobbyID)
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *Game) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateInProgress {
		return
	}

	for i, p := range g.players {
		other := g.players[1-i]
		elapsed := p.SinceHeartbeat()

		switch {
		case p.IsReconnecting() && elapsed <= g.timings.NormalTimeout:
			// Heartbeats resumed within the window: the session manager
			// has attached a fresh socket, bring the player back.
			p.SetReconnecting(false)
			slog.Info("player reconnected", "lobby.id", g.lobbyID, "player.id", p.ID)
			if err := other.Send(proto.NewPlayerReconnected(p.ID)); err != nil {
				slog.Warn("failed to notify opponent of reconnection",
					"lobby.id", g.lobbyID, "player.id", other.ID, "error", err)
			}
			if err := p.Send(proto.NewNextTurn(g.snapshotLocked())); err != nil {
				slog.Warn("failed to resend snapshot to reconnected player",
					"lobby.id", g.lobbyID, "player.id", p.ID, "error", err)
			}
			go g.observer.PlayerReconnected(context.Background(), g.lobbyID, p.ID)

		case p.IsReconnecting() && elapsed > g.timings.ReconnectionWindow:
			slog.Info("reconnection window expired", "lobby.id", g.lobbyID, "player.id", p.ID)
			g.permanentLossLocked(p)
			return

		case !p.IsReconnecting() && p.IsConnected() && elapsed > g.timings.NormalTimeout:
			// Soft disconnect: keep the match alive and open the window.
			p.SetReconnecting(true)
			slog.Info("player heartbeat timed out, awaiting reconnection",
				"lobby.id", g.lobbyID, "player.id", p.ID)
			if err := other.Send(proto.NewPlayerDisconnected(p.ID)); err != nil {
				slog.Warn("failed to notify opponent of disconnection",
					"lobby.id", g.lobbyID, "player.id", other.ID, "error", err)
			}
			go g.observer.PlayerDisconnected(context.Background(), g.lobbyID, p.ID)
		}
	}
}
