package game

import (
	"quoridor-server/internal/validator"
	"quoridor-server/pkg/proto"
)

// Cell is one board coordinate, also used for wall units.
type Cell struct {
	Row int
	Col int
}

// Move is a parsed move request: either a pawn move (one target cell)
// or a wall placement (two adjacent wall units plus an orientation
// flag). Parsing fails closed: consumers must check ValidStructure
// before trusting anything else.
type Move struct {
	PlayerID     string
	PlayerIndex  int // 0 or 1, -1 when PlayerID is not a known id
	IsHorizontal bool
	Positions    []Cell

	structValid bool
}

// ParseMove extracts a Move from a move envelope. Missing or malformed
// fields yield a Move whose ValidStructure reports false.
func ParseMove(env proto.Envelope) Move {
	invalid := Move{PlayerIndex: -1}
	if env.Type != proto.Move {
		return invalid
	}

	var payload proto.MovePayload
	if err := env.DecodeData(&payload); err != nil {
		return invalid
	}
	if err := validator.GetValidator().Struct(payload); err != nil {
		return invalid
	}

	m := Move{
		PlayerID:     payload.PlayerID,
		IsHorizontal: payload.IsHorizontal,
		Positions:    make([]Cell, 0, len(payload.Position)),
		structValid:  true,
	}
	for _, pos := range payload.Position {
		m.Positions = append(m.Positions, Cell{Row: pos[0], Col: pos[1]})
	}

	switch payload.PlayerID {
	case "1":
		m.PlayerIndex = 0
	case "2":
		m.PlayerIndex = 1
	default:
		m.PlayerIndex = -1
	}
	return m
}

// ValidStructure reports whether parsing produced a well-formed move.
func (m Move) ValidStructure() bool {
	return m.structValid
}

// IsPlayerMove reports whether this is a pawn move rather than a wall
// placement.
func (m Move) IsPlayerMove() bool {
	return len(m.Positions) == 1
}
