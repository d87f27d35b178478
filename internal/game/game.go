// Package game implements the authoritative Quoridor match engine: the
// 9x9 board, wall bookkeeping with path reachability, turn alternation,
// win detection and the per-match liveness sweep.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quoridor-server/internal/player"
	"quoridor-server/pkg/proto"
)

var tracer = otel.Tracer("game")

const (
	// BoardSize is the side length of the square board.
	BoardSize = 9
	// EmptyCell marks an unoccupied board cell in the flat board dump.
	EmptyCell = '.'
	// StartingWalls is each player's wall budget.
	StartingWalls = 10

	centerCol = 4
)

// State is a match's lifecycle phase.
type State string

const (
	StateWaiting    State = "waiting"
	StateInProgress State = "in_progress"
	StateEnded      State = "ended"
)

// Rule violations reported back to the acting player. The error text is
// sent to the client verbatim.
var (
	ErrInvalidMove = errors.New("Invalid move")
	ErrNotYourTurn = errors.New("Not your turn")
)

// Timings bundles the liveness knobs so tests can compress time.
type Timings struct {
	// HeartbeatInterval is the cadence of outbound heartbeats.
	HeartbeatInterval time.Duration
	// NormalTimeout is the silence after which a player is considered
	// soft-disconnected and the reconnection window opens.
	NormalTimeout time.Duration
	// ReconnectionWindow is the silence after which a reconnecting
	// player is considered permanently gone.
	ReconnectionWindow time.Duration
	// SweepInterval is the liveness sweep cadence.
	SweepInterval time.Duration
}

// DefaultTimings returns the production values.
func DefaultTimings() Timings {
	return Timings{
		HeartbeatInterval:  5 * time.Second,
		NormalTimeout:      15 * time.Second,
		ReconnectionWindow: 120 * time.Second,
		SweepInterval:      time.Second,
	}
}

// Game is one match ("lobby"). It exclusively owns its two player
// records once both are added; all mutation happens under mu so moves
// never interleave with each other or with the liveness sweep.
type Game struct {
	lobbyID  int
	observer Observer
	timings  Timings

	mu              sync.Mutex
	state           State
	players         []*player.Player
	board           [BoardSize][BoardSize]byte
	horizontalWalls []Cell
	verticalWalls   []Cell
	currentPlayer   int
	moveCount       int
	startedAt       time.Time
	done            chan struct{}
}

// NewGame creates a lobby in the WAITING state.
func NewGame(lobbyID int, observer Observer, timings Timings) *Game {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Game{
		lobbyID:  lobbyID,
		observer: observer,
		timings:  timings,
		state:    StateWaiting,
		players:  make([]*player.Player, 0, 2),
		done:     make(chan struct{}),
	}
}

func (g *Game) LobbyID() int {
	return g.lobbyID
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Players returns a copy of the roster.
func (g *Game) Players() []*player.Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*player.Player(nil), g.players...)
}

// AddPlayer links a player to this lobby. It returns false once two
// players are present. Adding the second player initializes the match
// and broadcasts game_started followed by the first next_turn snapshot.
func (g *Game) AddPlayer(p *player.Player) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) >= 2 {
		return false
	}
	g.players = append(g.players, p)
	p.SetGameID(g.lobbyID)
	if len(g.players) == 2 {
		g.initializeLocked()
	}
	return true
}

// initializeLocked assigns identities and starting positions, fills the
// board and flips the match to IN_PROGRESS. Player 1 (the one that was
// waiting) starts on the bottom edge and must reach row 0.
func (g *Game) initializeLocked() {
	ids := [2]string{"1", "2"}
	chars := [2]byte{'1', '2'}
	starts := [2][2]int{{BoardSize - 1, centerCol}, {0, centerCol}}
	goals := [2]int{0, BoardSize - 1}

	for i, p := range g.players {
		p.ID = ids[i]
		p.BoardChar = chars[i]
		p.Position = starts[i]
		p.GoalRow = goals[i]
		p.WallsLeft = StartingWalls
	}

	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			g.board[r][c] = EmptyCell
		}
	}
	for _, p := range g.players {
		g.board[p.Position[0]][p.Position[1]] = p.BoardChar
	}

	g.currentPlayer = 0
	g.state = StateInProgress
	g.startedAt = time.Now()

	snapshot := g.snapshotLocked()
	g.broadcastLocked(proto.NewGameStarted(snapshot))
	g.broadcastLocked(proto.NewNextTurn(snapshot))

	go g.runLivenessSweep()
	go g.observer.MatchStarted(context.Background(), g.lobbyID, []string{g.players[0].Name, g.players[1].Name})

	slog.Info("match started", "lobby.id", g.lobbyID,
		"player1", g.players[0].Name, "player2", g.players[1].Name)
}

// CanMove reports whether the move would be accepted, without applying
// it.
func (g *Game) CanMove(m Move) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateInProgress {
		return false
	}
	return g.validateMoveLocked(m) == nil
}

// HandleMove validates and applies a move. On rejection only the acting
// player receives an error and the match state is untouched; on success
// the turn passes and either a next_turn snapshot or game_ended is
// broadcast.
func (g *Game) HandleMove(ctx context.Context, m Move) {
	ctx, span := tracer.Start(ctx, "game.HandleMove", trace.WithAttributes(
		attribute.Int("lobby.id", g.lobbyID),
		attribute.String("player.id", m.PlayerID),
		attribute.Bool("move.is_wall", !m.IsPlayerMove()),
	))
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateInProgress {
		span.SetStatus(codes.Error, "match not in progress")
		return
	}

	if err := g.validateMoveLocked(m); err != nil {
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.SetStatus(codes.Error, err.Error())
		if m.PlayerIndex >= 0 && m.PlayerIndex < len(g.players) {
			if sendErr := g.players[m.PlayerIndex].Send(proto.NewError(err.Error())); sendErr != nil {
				slog.WarnContext(ctx, "failed to send move rejection",
					"lobby.id", g.lobbyID, "player.id", m.PlayerID, "error", sendErr)
			}
		}
		return
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	acting := g.players[m.PlayerIndex]
	if m.IsPlayerMove() {
		g.applyPawnMoveLocked(acting, m.Positions[0])
	} else {
		g.applyWallLocked(acting, m)
	}

	g.currentPlayer = (g.currentPlayer + 1) % 2
	g.moveCount++

	if acting.Position[0] == acting.GoalRow {
		slog.InfoContext(ctx, "player reached goal row",
			"lobby.id", g.lobbyID, "winner.id", acting.ID)
		g.endGameLocked(acting)
		return
	}

	g.broadcastLocked(proto.NewNextTurn(g.snapshotLocked()))
}

// HandlePlayerDisconnection ends the match after a permanent loss of
// one side; the remaining player is declared the winner.
func (g *Game) HandlePlayerDisconnection(p *player.Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateInProgress {
		return
	}
	g.permanentLossLocked(p)
}

func (g *Game) permanentLossLocked(p *player.Player) {
	winner := g.players[0]
	if winner == p {
		winner = g.players[1]
	}
	slog.Info("player permanently disconnected, ending match",
		"lobby.id", g.lobbyID, "player.id", p.ID, "winner.id", winner.ID)
	g.endGameLocked(winner)
}

func (g *Game) validateMoveLocked(m Move) error {
	if !m.ValidStructure() {
		return ErrInvalidMove
	}
	if m.PlayerIndex != g.currentPlayer {
		return ErrNotYourTurn
	}
	if m.IsPlayerMove() {
		return g.validatePawnMoveLocked(g.players[m.PlayerIndex], m.Positions[0])
	}
	return g.validateWallLocked(g.players[m.PlayerIndex], m)
}

func (g *Game) validatePawnMoveLocked(p *player.Player, target Cell) error {
	if target.Row < 0 || target.Row >= BoardSize || target.Col < 0 || target.Col >= BoardSize {
		return ErrInvalidMove
	}
	from := Cell{Row: p.Position[0], Col: p.Position[1]}
	dr := target.Row - from.Row
	dc := target.Col - from.Col
	if abs(dr)+abs(dc) != 1 {
		return ErrInvalidMove
	}
	if g.wallBlockedLocked(from, target) {
		return ErrInvalidMove
	}
	return nil
}

// applyPawnMoveLocked moves the pawn, keeping the grid consistent with
// the position fields on every mutation. A target occupied by the
// opponent relocates the opponent back to their starting row, centered
// column, shifted one column right when that square is the mover's
// origin.
func (g *Game) applyPawnMoveLocked(p *player.Player, target Cell) {
	from := Cell{Row: p.Position[0], Col: p.Position[1]}
	g.board[from.Row][from.Col] = EmptyCell

	if g.board[target.Row][target.Col] != EmptyCell {
		opp := g.opponentLocked(p)
		reset := Cell{Row: startRow(opp.GoalRow), Col: centerCol}
		if reset == from {
			reset.Col++
		}
		opp.Position = [2]int{reset.Row, reset.Col}
		g.board[reset.Row][reset.Col] = opp.BoardChar
	}

	p.Position = [2]int{target.Row, target.Col}
	g.board[target.Row][target.Col] = p.BoardChar
}

func (g *Game) opponentLocked(p *player.Player) *player.Player {
	if g.players[0] == p {
		return g.players[1]
	}
	return g.players[0]
}

// endGameLocked broadcasts game_ended, marks both sessions disconnected
// and unlinked, and stops the liveness sweep. Lobbies are never reused
// after this; the registry sweep removes them.
func (g *Game) endGameLocked(winner *player.Player) {
	if g.state == StateEnded {
		return
	}
	g.state = StateEnded

	g.broadcastLocked(proto.NewGameEnded(g.lobbyID, winner.ID))

	res := Result{
		LobbyID:    g.lobbyID,
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Players:    []string{g.players[0].Name, g.players[1].Name},
		Moves:      g.moveCount,
		StartedAt:  g.startedAt,
		EndedAt:    time.Now(),
	}

	for _, p := range g.players {
		p.SetReconnecting(false)
		p.SetConnected(false)
		p.SetGameID(player.Unattached)
	}

	close(g.done)
	go g.observer.MatchEnded(context.Background(), res)
}

// Terminate tears a lobby down during server shutdown: no winner, no
// game_ended broadcast, but the sweep is stopped and every session is
// released and its socket closed.
func (g *Game) Terminate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateEnded {
		return
	}
	g.state = StateEnded
	close(g.done)
	for _, p := range g.players {
		p.SetReconnecting(false)
		p.SetConnected(false)
		p.SetGameID(player.Unattached)
		if err := p.Conn().Close(); err != nil {
			slog.Debug("error closing player connection", "lobby.id", g.lobbyID, "error", err)
		}
	}
}

func (g *Game) broadcastLocked(env proto.Envelope) {
	for _, p := range g.players {
		if err := p.Send(env); err != nil {
			slog.Warn("failed to send to player",
				"lobby.id", g.lobbyID, "player.id", p.ID, "message.type", string(env.Type), "error", err)
		}
	}
}

// snapshotLocked renders the full match state broadcast to both sides.
func (g *Game) snapshotLocked() proto.NextTurnPayload {
	return proto.NextTurnPayload{
		LobbyID:         g.lobbyID,
		Board:           g.boardStringLocked(),
		CurrentPlayerID: g.players[g.currentPlayer].ID,
		HorizontalWalls: cellsToPairs(g.horizontalWalls),
		VerticalWalls:   cellsToPairs(g.verticalWalls),
		Players:         []proto.PlayerInfo{g.players[0].Info(), g.players[1].Info()},
	}
}

// Snapshot returns the current next_turn payload.
func (g *Game) Snapshot() proto.NextTurnPayload {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// boardStringLocked dumps all 81 cells left-to-right, top-to-bottom.
func (g *Game) boardStringLocked() string {
	out := make([]byte, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		out = append(out, g.board[r][:]...)
	}
	return string(out)
}

// SummaryPlayer is one roster entry of a lobby summary.
type SummaryPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Summary is the operational view of a lobby exposed over the HTTP API.
type Summary struct {
	LobbyID         int             `json:"lobby_id"`
	State           string          `json:"state"`
	CurrentPlayerID string          `json:"current_player_id,omitempty"`
	Players         []SummaryPlayer `json:"players"`
}

func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Summary{
		LobbyID: g.lobbyID,
		State:   string(g.state),
	}
	if g.state == StateInProgress {
		s.CurrentPlayerID = g.players[g.currentPlayer].ID
	}
	for _, p := range g.players {
		s.Players = append(s.Players, SummaryPlayer{
			ID:        p.ID,
			Name:      p.Name,
			Connected: p.IsConnected() && !p.IsReconnecting(),
		})
	}
	return s
}

func startRow(goalRow int) int {
	return BoardSize - 1 - goalRow
}

func cellsToPairs(cells []Cell) [][2]int {
	out := make([][2]int, 0, len(cells))
	for _, c := range cells {
		out = append(out, [2]int{c.Row, c.Col})
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
