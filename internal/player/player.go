// Package player holds the per-connection session record. A record is
// created on socket accept and, once matched, is owned by exactly one
// game; the connection goroutine keeps only a handle to it so that a
// reconnecting socket can adopt the record without a second owner.
package player

import (
	"sync"
	"sync/atomic"
	"time"

	"quoridor-server/internal/transport"
	"quoridor-server/pkg/proto"
)

// Unattached is the game id of a player that is not linked to a match.
const Unattached = -1

// Player is one connected (or reconnecting) client. The heartbeat and
// connection fields are written by the connection loop, the match's
// liveness sweep and the outbound heartbeat task, so they are atomics;
// the transport handle swap on reconnection is mutex-guarded. Position,
// walls and goal row are guarded by the owning game's lock once matched.
type Player struct {
	ID   string // "1" or "2", assigned when the match starts
	Name string

	Position  [2]int
	WallsLeft int
	GoalRow   int
	BoardChar byte

	mu   sync.Mutex
	conn transport.Conn

	gameID        atomic.Int64
	lastHeartbeat atomic.Int64
	connected     atomic.Bool
	reconnecting  atomic.Bool
}

// New creates a record for a freshly accepted connection: marked
// connected, heartbeat stamped, not linked to any game.
func New(conn transport.Conn) *Player {
	p := &Player{conn: conn}
	p.gameID.Store(Unattached)
	p.connected.Store(true)
	p.UpdateHeartbeat()
	return p
}

// Conn returns the current transport handle.
func (p *Player) Conn() transport.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn
}

// AttachConn swaps in a new transport handle during reconnection and
// returns the abandoned one. The old socket's goroutine notices the
// swap and exits without touching the record.
func (p *Player) AttachConn(conn transport.Conn) transport.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.conn
	p.conn = conn
	return old
}

// Send encodes and writes one message on the current transport handle.
func (p *Player) Send(env proto.Envelope) error {
	return p.Conn().WriteFrame(env.Encode())
}

func (p *Player) UpdateHeartbeat() {
	p.lastHeartbeat.Store(time.Now().UnixNano())
}

// SinceHeartbeat returns the elapsed time since the last frame was
// received from this player.
func (p *Player) SinceHeartbeat() time.Duration {
	return time.Since(time.Unix(0, p.lastHeartbeat.Load()))
}

func (p *Player) GameID() int {
	return int(p.gameID.Load())
}

func (p *Player) SetGameID(id int) {
	p.gameID.Store(int64(id))
}

func (p *Player) IsConnected() bool {
	return p.connected.Load()
}

func (p *Player) SetConnected(v bool) {
	p.connected.Store(v)
}

func (p *Player) IsReconnecting() bool {
	return p.reconnecting.Load()
}

func (p *Player) SetReconnecting(v bool) {
	p.reconnecting.Store(v)
}

// Info renders the player block used in next_turn snapshots.
func (p *Player) Info() proto.PlayerInfo {
	return proto.PlayerInfo{
		ID:        p.ID,
		Position:  p.Position,
		Name:      p.Name,
		BoardChar: string(p.BoardChar),
		WallsLeft: p.WallsLeft,
	}
}
