package proto

import (
	"bytes"
	"testing"
)

func TestDecodeRoundTrip(t *testing.T) {
	snapshot := NextTurnPayload{
		LobbyID:         3,
		Board:           "....",
		CurrentPlayerID: "1",
		HorizontalWalls: [][2]int{{0, 4}, {0, 5}},
		VerticalWalls:   [][2]int{},
		Players: []PlayerInfo{
			{ID: "1", Position: [2]int{8, 4}, Name: "alice", BoardChar: "1", WallsLeft: 10},
			{ID: "2", Position: [2]int{0, 4}, Name: "bob", BoardChar: "2", WallsLeft: 9},
		},
	}

	tests := []struct {
		name     string
		env      Envelope
		wantType MessageType
	}{
		{"welcome", NewWelcome("Connected to Quoridor server"), Welcome},
		{"name request", NewNameRequest(), NameRequest},
		{"name response", NewNameResponse("alice"), NameResponse},
		{"waiting", NewWaiting("Waiting for opponent..."), Waiting},
		{"game started", NewGameStarted(snapshot), GameStarted},
		{"next turn", NewNextTurn(snapshot), NextTurn},
		{"move", NewMove(MovePayload{Position: [][2]int{{7, 4}}, PlayerID: "1"}), Move},
		{"game ended", NewGameEnded(3, "2"), GameEnded},
		{"error", NewError("Invalid move"), Error},
		{"ack", NewAck(), Ack},
		{"heartbeat", NewHeartbeat(), Heartbeat},
		{"player disconnected", NewPlayerDisconnected("2"), PlayerDisconnected},
		{"player reconnected", NewPlayerReconnected("2"), PlayerReconnected},
		{"abandon", NewAbandon(), Abandon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := tt.env.Encode()
			if bytes.ContainsRune(frame, '\n') {
				t.Errorf("Encode() produced a frame containing a newline: %q", frame)
			}

			got := Decode(frame)
			if !got.Valid() {
				t.Fatalf("Decode(%q) is not valid", frame)
			}
			if got.Type != tt.wantType {
				t.Errorf("Decode(%q).Type = %q, want %q", frame, got.Type, tt.wantType)
			}
			if !bytes.Equal(got.Encode(), frame) {
				t.Errorf("re-encoded frame %q differs from original %q", got.Encode(), frame)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"not json", "hello there"},
		{"empty", ""},
		{"json array", `[1,2,3]`},
		{"missing type", `{"data":{}}`},
		{"unknown type", `{"type":"teleport","data":{}}`},
		{"wrong_message itself", `{"type":"wrong_message","data":{}}`},
		{"numeric type", `{"type":42,"data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode([]byte(tt.frame))
			if got.Valid() {
				t.Errorf("Decode(%q) reported valid, want invalid", tt.frame)
			}
			if got.Type != WrongMessage {
				t.Errorf("Decode(%q).Type = %q, want %q", tt.frame, got.Type, WrongMessage)
			}
		})
	}
}

func TestDecodeData(t *testing.T) {
	frame := []byte(`{"type":"move","data":{"is_horizontal":true,"position":[[0,4],[0,5]],"player_id":"2"}}`)
	env := Decode(frame)
	if !env.Valid() {
		t.Fatalf("Decode(%q) is not valid", frame)
	}

	var payload MovePayload
	if err := env.DecodeData(&payload); err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	if !payload.IsHorizontal {
		t.Error("IsHorizontal = false, want true")
	}
	if payload.PlayerID != "2" {
		t.Errorf("PlayerID = %q, want %q", payload.PlayerID, "2")
	}
	if len(payload.Position) != 2 || payload.Position[0] != [2]int{0, 4} || payload.Position[1] != [2]int{0, 5} {
		t.Errorf("Position = %v, want [[0 4] [0 5]]", payload.Position)
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	env := Decode([]byte("  {\"type\":\"heartbeat\",\"data\":{}}\r"))
	if !env.Valid() || env.Type != Heartbeat {
		t.Errorf("Decode with surrounding whitespace = %+v, want heartbeat", env)
	}
}
