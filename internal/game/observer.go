package game

import (
	"context"
	"time"
)

// Result summarizes a finished match for observers.
type Result struct {
	LobbyID    int
	WinnerID   string
	WinnerName string
	Players    []string
	Moves      int
	StartedAt  time.Time
	EndedAt    time.Time
}

// Observer receives match lifecycle notifications. Implementations must
// be safe for concurrent use; the engine invokes them on their own
// goroutines so a slow sink never stalls a match.
type Observer interface {
	MatchStarted(ctx context.Context, lobbyID int, playerNames []string)
	MatchEnded(ctx context.Context, res Result)
	PlayerDisconnected(ctx context.Context, lobbyID int, playerID string)
	PlayerReconnected(ctx context.Context, lobbyID int, playerID string)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) MatchStarted(context.Context, int, []string)     {}
func (NopObserver) MatchEnded(context.Context, Result)              {}
func (NopObserver) PlayerDisconnected(context.Context, int, string) {}
func (NopObserver) PlayerReconnected(context.Context, int, string)  {}

type multiObserver []Observer

// Observers fans notifications out to several sinks.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

func (m multiObserver) MatchStarted(ctx context.Context, lobbyID int, names []string) {
	for _, o := range m {
		o.MatchStarted(ctx, lobbyID, names)
	}
}

func (m multiObserver) MatchEnded(ctx context.Context, res Result) {
	for _, o := range m {
		o.MatchEnded(ctx, res)
	}
}

func (m multiObserver) PlayerDisconnected(ctx context.Context, lobbyID int, playerID string) {
	for _, o := range m {
		o.PlayerDisconnected(ctx, lobbyID, playerID)
	}
}

func (m multiObserver) PlayerReconnected(ctx context.Context, lobbyID int, playerID string) {
	for _, o := range m {
		o.PlayerReconnected(ctx, lobbyID, playerID)
	}
}
