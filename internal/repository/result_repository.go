// Package repository persists finished match results to SQLite.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// MatchResult is a row in the match_results archive.
type MatchResult struct {
	ID         int64     `db:"id" json:"id"`
	LobbyID    int       `db:"lobby_id" json:"lobby_id"`
	WinnerID   string    `db:"winner_id" json:"winner_id"`
	WinnerName string    `db:"winner_name" json:"winner_name"`
	Players    string    `db:"players" json:"players"`
	Moves      int       `db:"moves" json:"moves"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	EndedAt    time.Time `db:"ended_at" json:"ended_at"`
}

// PlayerNames splits the comma-joined players column.
func (m MatchResult) PlayerNames() []string {
	return strings.Split(m.Players, ",")
}

// ResultRepository defines the interface for match result persistence.
type ResultRepository interface {
	Save(ctx context.Context, res *MatchResult) error
	ListRecent(ctx context.Context, limit int) ([]MatchResult, error)
}

type sqliteResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new SQLite-based ResultRepository.
func NewResultRepository(db *sqlx.DB) ResultRepository {
	return &sqliteResultRepository{db: db}
}

// Save inserts a finished match into the archive.
func (r *sqliteResultRepository) Save(ctx context.Context, res *MatchResult) error {
	query := `INSERT INTO match_results (lobby_id, winner_id, winner_name, players, moves, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	out, err := r.db.ExecContext(ctx, query,
		res.LobbyID, res.WinnerID, res.WinnerName, res.Players, res.Moves, res.StartedAt, res.EndedAt)
	if err != nil {
		return fmt.Errorf("failed to save match result: %w", err)
	}
	if id, err := out.LastInsertId(); err == nil {
		res.ID = id
	}
	return nil
}

// ListRecent returns the most recently finished matches, newest first.
func (r *sqliteResultRepository) ListRecent(ctx context.Context, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	results := []MatchResult{}
	query := `SELECT id, lobby_id, winner_id, winner_name, players, moves, started_at, ended_at
		FROM match_results ORDER BY ended_at DESC, id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &results, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	return results, nil
}
