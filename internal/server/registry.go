package server

import (
	"log/slog"
	"sync"

	"quoridor-server/internal/game"
	"quoridor-server/internal/player"
)

// Registry owns the waiting-player list and the active-lobby map behind
// a single lock. All access goes through this method surface; nothing
// reaches into the fields directly.
type Registry struct {
	mu          sync.Mutex
	waiting     []*player.Player
	games       map[int]*game.Game
	nextLobbyID int
	maxGames    int
}

func NewRegistry(maxGames int) *Registry {
	return &Registry{
		games:    make(map[int]*game.Game),
		maxGames: maxGames,
	}
}

// MatchOrWait runs the matchmaking stage atomically. If a player is
// waiting, it is popped (LIFO: the most recent waiter is matched
// first), a lobby is created with the next sequential id and
// registered, and both the opponent and the new lobby are returned. If
// nobody is waiting the player is queued and (nil, nil, true) is
// returned. A false final return means the registry is at capacity and
// the registration must be refused.
func (r *Registry) MatchOrWait(p *player.Player, newGame func(lobbyID int) *game.Game) (*game.Game, *player.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeCountLocked() >= r.maxGames {
		return nil, nil, false
	}

	if len(r.waiting) == 0 {
		r.waiting = append(r.waiting, p)
		return nil, nil, true
	}

	opponent := r.waiting[len(r.waiting)-1]
	r.waiting = r.waiting[:len(r.waiting)-1]

	r.nextLobbyID++
	g := newGame(r.nextLobbyID)
	r.games[g.LobbyID()] = g
	return g, opponent, true
}

// RemoveWaiting drops a player from the waiting list. It reports
// whether the player was actually queued.
func (r *Registry) RemoveWaiting(p *player.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, w := range r.waiting {
		if w == p {
			r.waiting = append(r.waiting[:i], r.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup finds a registered lobby by id.
func (r *Registry) Lookup(lobbyID int) (*game.Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[lobbyID]
	return g, ok
}

// FindReconnectable searches every non-terminal lobby's roster for a
// player with the given display name whose socket is gone: either the
// liveness sweep flagged them as reconnecting or their session released
// the record.
func (r *Registry) FindReconnectable(name string) (*game.Game, *player.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.State() == game.StateEnded {
			continue
		}
		for _, p := range g.Players() {
			if p.Name == name && (p.IsReconnecting() || !p.IsConnected()) {
				return g, p, true
			}
		}
	}
	return nil, nil, false
}

// SweepEnded removes every lobby that has reached the terminal state
// and returns the removed ones. Lobbies are never reused after ENDED.
func (r *Registry) SweepEnded() []*game.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []*game.Game
	for id, g := range r.games {
		if g.State() == game.StateEnded {
			delete(r.games, id)
			removed = append(removed, g)
		}
	}
	return removed
}

// Summaries snapshots all registered lobbies for the HTTP API.
func (r *Registry) Summaries() []game.Summary {
	r.mu.Lock()
	games := make([]*game.Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.Unlock()

	out := make([]game.Summary, 0, len(games))
	for _, g := range games {
		out = append(out, g.Summary())
	}
	return out
}

// ReleaseAll disconnects everything on shutdown: waiting players are
// dropped and every active match is terminated.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	waiting := r.waiting
	r.waiting = nil
	games := make([]*game.Game, 0, len(r.games))
	for id, g := range r.games {
		games = append(games, g)
		delete(r.games, id)
	}
	r.mu.Unlock()

	for _, p := range waiting {
		p.SetConnected(false)
		if err := p.Conn().Close(); err != nil {
			slog.Debug("error closing waiting player connection", "error", err)
		}
	}
	for _, g := range games {
		g.Terminate()
	}
}

func (r *Registry) activeCountLocked() int {
	n := 0
	for _, g := range r.games {
		if g.State() != game.StateEnded {
			n++
		}
	}
	return n
}
