package service

import (
	"context"

	"quoridor-server/internal/game"
	"quoridor-server/internal/repository"
	"quoridor-server/internal/server"
)

// MatchService defines the read-only business logic behind the HTTP API.
type MatchService interface {
	ListLobbies(ctx context.Context) []game.Summary
	ListResults(ctx context.Context, limit int) ([]repository.MatchResult, error)
}

type matchService struct {
	registry   *server.Registry
	resultRepo repository.ResultRepository
}

// NewMatchService creates a new MatchService.
func NewMatchService(registry *server.Registry, resultRepo repository.ResultRepository) MatchService {
	return &matchService{registry: registry, resultRepo: resultRepo}
}

// ListLobbies returns a snapshot of every registered lobby.
func (s *matchService) ListLobbies(ctx context.Context) []game.Summary {
	return s.registry.Summaries()
}

// ListResults returns the most recently archived matches.
func (s *matchService) ListResults(ctx context.Context, limit int) ([]repository.MatchResult, error) {
	return s.resultRepo.ListRecent(ctx, limit)
}
