package game

import (
	"testing"

	"quoridor-server/pkg/proto"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		name          string
		env           proto.Envelope
		wantValid     bool
		wantIndex     int
		wantPawn      bool
		wantPositions []Cell
	}{
		{
			name:          "pawn move player 1",
			env:           proto.NewMove(proto.MovePayload{Position: [][2]int{{7, 4}}, PlayerID: "1"}),
			wantValid:     true,
			wantIndex:     0,
			wantPawn:      true,
			wantPositions: []Cell{{Row: 7, Col: 4}},
		},
		{
			name:          "wall move player 2",
			env:           proto.NewMove(proto.MovePayload{IsHorizontal: true, Position: [][2]int{{0, 4}, {0, 5}}, PlayerID: "2"}),
			wantValid:     true,
			wantIndex:     1,
			wantPawn:      false,
			wantPositions: []Cell{{Row: 0, Col: 4}, {Row: 0, Col: 5}},
		},
		{
			name:      "unknown player id",
			env:       proto.NewMove(proto.MovePayload{Position: [][2]int{{7, 4}}, PlayerID: "99"}),
			wantValid: true,
			wantIndex: -1,
			wantPawn:  true,
		},
		{
			name:      "missing player id",
			env:       proto.Decode([]byte(`{"type":"move","data":{"position":[[7,4]]}}`)),
			wantValid: false,
		},
		{
			name:      "no positions",
			env:       proto.Decode([]byte(`{"type":"move","data":{"position":[],"player_id":"1"}}`)),
			wantValid: false,
		},
		{
			name:      "three positions",
			env:       proto.Decode([]byte(`{"type":"move","data":{"position":[[0,0],[0,1],[0,2]],"player_id":"1"}}`)),
			wantValid: false,
		},
		{
			name:      "positions not pairs",
			env:       proto.Decode([]byte(`{"type":"move","data":{"position":"nope","player_id":"1"}}`)),
			wantValid: false,
		},
		{
			name:      "not a move envelope",
			env:       proto.NewHeartbeat(),
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ParseMove(tt.env)
			if m.ValidStructure() != tt.wantValid {
				t.Fatalf("ValidStructure() = %v, want %v", m.ValidStructure(), tt.wantValid)
			}
			if !tt.wantValid {
				return
			}
			if m.PlayerIndex != tt.wantIndex {
				t.Errorf("PlayerIndex = %d, want %d", m.PlayerIndex, tt.wantIndex)
			}
			if m.IsPlayerMove() != tt.wantPawn {
				t.Errorf("IsPlayerMove() = %v, want %v", m.IsPlayerMove(), tt.wantPawn)
			}
			if tt.wantPositions != nil {
				if len(m.Positions) != len(tt.wantPositions) {
					t.Fatalf("Positions = %v, want %v", m.Positions, tt.wantPositions)
				}
				for i := range tt.wantPositions {
					if m.Positions[i] != tt.wantPositions[i] {
						t.Errorf("Positions[%d] = %v, want %v", i, m.Positions[i], tt.wantPositions[i])
					}
				}
			}
		})
	}
}
