// Package events publishes match lifecycle notifications to a Redis
// Pub/Sub channel so external consumers can follow server activity.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"quoridor-server/internal/game"
)

// EventsChannel is the Pub/Sub channel carrying lifecycle events.
const EventsChannel = "channel:events"

// Event is the envelope published for every lifecycle notification.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MatchStartedPayload is the payload for the "match_started" event.
type MatchStartedPayload struct {
	LobbyID int      `json:"lobby_id"`
	Players []string `json:"players"`
}

// MatchEndedPayload is the payload for the "match_ended" event.
type MatchEndedPayload struct {
	LobbyID    int    `json:"lobby_id"`
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	Moves      int    `json:"moves"`
}

// PlayerDisconnectedPayload is the payload for the "player_disconnected" event.
type PlayerDisconnectedPayload struct {
	LobbyID  int    `json:"lobby_id"`
	PlayerID string `json:"player_id"`
}

// PlayerReconnectedPayload is the payload for the "player_reconnected" event.
type PlayerReconnectedPayload struct {
	LobbyID  int    `json:"lobby_id"`
	PlayerID string `json:"player_id"`
}

// Publisher forwards match lifecycle callbacks to Redis. Publish
// failures are logged and swallowed so gameplay never depends on the
// broker being up.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

var _ game.Observer = (*Publisher)(nil)

func (p *Publisher) MatchStarted(ctx context.Context, lobbyID int, playerNames []string) {
	p.publish(ctx, "match_started", MatchStartedPayload{
		LobbyID: lobbyID,
		Players: playerNames,
	})
}

func (p *Publisher) MatchEnded(ctx context.Context, res game.Result) {
	p.publish(ctx, "match_ended", MatchEndedPayload{
		LobbyID:    res.LobbyID,
		WinnerID:   res.WinnerID,
		WinnerName: res.WinnerName,
		Moves:      res.Moves,
	})
}

func (p *Publisher) PlayerDisconnected(ctx context.Context, lobbyID int, playerID string) {
	p.publish(ctx, "player_disconnected", PlayerDisconnectedPayload{
		LobbyID:  lobbyID,
		PlayerID: playerID,
	})
}

func (p *Publisher) PlayerReconnected(ctx context.Context, lobbyID int, playerID string) {
	p.publish(ctx, "player_reconnected", PlayerReconnectedPayload{
		LobbyID:  lobbyID,
		PlayerID: playerID,
	})
}

func (p *Publisher) publish(ctx context.Context, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal event payload", "event", eventType, "error", err)
		return
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		slog.Error("failed to marshal event", "event", eventType, "error", err)
		return
	}
	if err := p.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		slog.Warn("failed to publish event", "event", eventType, "error", err)
	}
}
