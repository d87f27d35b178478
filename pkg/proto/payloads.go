package proto

// TextPayload carries the human-readable text of welcome, waiting and
// error messages.
type TextPayload struct {
	Message string `json:"message"`
}

// NameResponsePayload is the client's answer to a name_request.
type NameResponsePayload struct {
	Name string `json:"name" validate:"required,min=1"`
}

// MovePayload is the client's move request: one position for a pawn
// move, two for a wall placement.
type MovePayload struct {
	IsHorizontal bool     `json:"is_horizontal"`
	Position     [][2]int `json:"position" validate:"required,min=1,max=2"`
	PlayerID     string   `json:"player_id" validate:"required"`
}

// PlayerInfo is the per-player block inside next_turn snapshots.
type PlayerInfo struct {
	ID        string `json:"id"`
	Position  [2]int `json:"position"`
	Name      string `json:"name"`
	BoardChar string `json:"board_char"`
	WallsLeft int    `json:"walls_left"`
}

// NextTurnPayload is the full board snapshot broadcast after every
// accepted move. game_started carries the same payload with only the
// type tag differing.
type NextTurnPayload struct {
	LobbyID         int          `json:"lobby_id"`
	Board           string       `json:"board"`
	CurrentPlayerID string       `json:"current_player_id"`
	HorizontalWalls [][2]int     `json:"horizontal_walls"`
	VerticalWalls   [][2]int     `json:"vertical_walls"`
	Players         []PlayerInfo `json:"players"`
}

// GameEndedPayload announces the end of a match.
type GameEndedPayload struct {
	LobbyID  int    `json:"lobby_id"`
	WinnerID string `json:"winner_id"`
}

// PlayerEventPayload identifies the player a disconnect or reconnect
// notification is about.
type PlayerEventPayload struct {
	PlayerID string `json:"player_id"`
}

func NewWelcome(text string) Envelope {
	return newEnvelope(Welcome, TextPayload{Message: text})
}

func NewNameRequest() Envelope {
	return newEnvelope(NameRequest, nil)
}

func NewNameResponse(name string) Envelope {
	return newEnvelope(NameResponse, NameResponsePayload{Name: name})
}

func NewWaiting(text string) Envelope {
	return newEnvelope(Waiting, TextPayload{Message: text})
}

func NewGameStarted(snapshot NextTurnPayload) Envelope {
	return newEnvelope(GameStarted, snapshot)
}

func NewNextTurn(snapshot NextTurnPayload) Envelope {
	return newEnvelope(NextTurn, snapshot)
}

func NewMove(move MovePayload) Envelope {
	return newEnvelope(Move, move)
}

func NewGameEnded(lobbyID int, winnerID string) Envelope {
	return newEnvelope(GameEnded, GameEndedPayload{LobbyID: lobbyID, WinnerID: winnerID})
}

func NewError(text string) Envelope {
	return newEnvelope(Error, TextPayload{Message: text})
}

func NewAck() Envelope {
	return newEnvelope(Ack, nil)
}

func NewHeartbeat() Envelope {
	return newEnvelope(Heartbeat, nil)
}

func NewPlayerDisconnected(playerID string) Envelope {
	return newEnvelope(PlayerDisconnected, PlayerEventPayload{PlayerID: playerID})
}

func NewPlayerReconnected(playerID string) Envelope {
	return newEnvelope(PlayerReconnected, PlayerEventPayload{PlayerID: playerID})
}

func NewAbandon() Envelope {
	return newEnvelope(Abandon, nil)
}
