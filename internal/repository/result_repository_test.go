package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"quoridor-server/internal/db"
	"quoridor-server/internal/game"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	pool, err := db.Connect(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestResultRepositorySaveAndList(t *testing.T) {
	repo := NewResultRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		res := &MatchResult{
			LobbyID:    i,
			WinnerID:   "1",
			WinnerName: "alice",
			Players:    "alice,bob",
			Moves:      10 + i,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			EndedAt:    base.Add(time.Duration(i)*time.Hour + 15*time.Minute),
		}
		if err := repo.Save(ctx, res); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if res.ID == 0 {
			t.Error("Save did not backfill the row id")
		}
	}

	results, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("ListRecent returned %d rows, want 2", len(results))
	}
	if results[0].LobbyID != 3 || results[1].LobbyID != 2 {
		t.Errorf("ListRecent order = %d, %d, want newest first (3, 2)", results[0].LobbyID, results[1].LobbyID)
	}
	if got := results[0].PlayerNames(); len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("PlayerNames() = %v, want [alice bob]", got)
	}

	all, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent with default limit: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListRecent default limit returned %d rows, want 3", len(all))
	}
}

func TestArchiverStoresFinishedMatch(t *testing.T) {
	pool := openTestDB(t)
	repo := NewResultRepository(pool)
	arch := NewArchiver(repo)
	ctx := context.Background()

	arch.MatchEnded(ctx, game.Result{
		LobbyID:    7,
		WinnerID:   "2",
		WinnerName: "bob",
		Players:    []string{"alice", "bob"},
		Moves:      42,
		StartedAt:  time.Now().Add(-time.Minute),
		EndedAt:    time.Now(),
	})

	results, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("archive has %d rows, want 1", len(results))
	}
	got := results[0]
	if got.LobbyID != 7 || got.WinnerID != "2" || got.WinnerName != "bob" || got.Moves != 42 {
		t.Errorf("archived row = %+v", got)
	}
	if got.Players != "alice,bob" {
		t.Errorf("Players = %q, want %q", got.Players, "alice,bob")
	}
}
