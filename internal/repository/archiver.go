package repository

import (
	"context"
	"log/slog"
	"strings"

	"quoridor-server/internal/game"
)

// Archiver records finished matches in the archive. It ignores the
// other lifecycle callbacks.
type Archiver struct {
	repo ResultRepository
}

func NewArchiver(repo ResultRepository) *Archiver {
	return &Archiver{repo: repo}
}

var _ game.Observer = (*Archiver)(nil)

func (a *Archiver) MatchStarted(ctx context.Context, lobbyID int, playerNames []string) {}

func (a *Archiver) MatchEnded(ctx context.Context, res game.Result) {
	row := &MatchResult{
		LobbyID:    res.LobbyID,
		WinnerID:   res.WinnerID,
		WinnerName: res.WinnerName,
		Players:    strings.Join(res.Players, ","),
		Moves:      res.Moves,
		StartedAt:  res.StartedAt,
		EndedAt:    res.EndedAt,
	}
	if err := a.repo.Save(ctx, row); err != nil {
		slog.Error("failed to archive match result", "lobby.id", res.LobbyID, "error", err)
	}
}

func (a *Archiver) PlayerDisconnected(ctx context.Context, lobbyID int, playerID string) {}

func (a *Archiver) PlayerReconnected(ctx context.Context, lobbyID int, playerID string) {}
