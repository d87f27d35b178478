// Package db owns the SQLite archive of finished matches and the Redis
// connection used for lifecycle event publishing.
package db

import (
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const resultSchema = `
CREATE TABLE IF NOT EXISTS match_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lobby_id INTEGER NOT NULL,
	winner_id TEXT NOT NULL,
	winner_name TEXT NOT NULL,
	players TEXT NOT NULL,
	moves INTEGER NOT NULL,
	started_at DATETIME NOT NULL,
	ended_at DATETIME NOT NULL
);`

// Connect opens the SQLite database at path and verifies the result
// archive schema.
func Connect(path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(resultSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create match_results table: %w", err)
	}
	return pool, nil
}
