package proto

import (
	"bytes"
	"encoding/json"
)

// MessageType is the enumerated "type" tag of a wire message.
type MessageType string

const (
	Welcome            MessageType = "welcome"
	NameRequest        MessageType = "name_request"
	NameResponse       MessageType = "name_response"
	Waiting            MessageType = "waiting"
	GameStarted        MessageType = "game_started"
	NextTurn           MessageType = "next_turn"
	Move               MessageType = "move"
	GameEnded          MessageType = "game_ended"
	Error              MessageType = "error"
	Ack                MessageType = "ack"
	Heartbeat          MessageType = "heartbeat"
	PlayerDisconnected MessageType = "player_disconnected"
	PlayerReconnected  MessageType = "player_reconnected"
	Abandon            MessageType = "abandon"
	WrongMessage       MessageType = "wrong_message"
)

var knownTypes = map[MessageType]struct{}{
	Welcome:            {},
	NameRequest:        {},
	NameResponse:       {},
	Waiting:            {},
	GameStarted:        {},
	NextTurn:           {},
	Move:               {},
	GameEnded:          {},
	Error:              {},
	Ack:                {},
	Heartbeat:          {},
	PlayerDisconnected: {},
	PlayerReconnected:  {},
	Abandon:            {},
	WrongMessage:       {},
}

var emptyObject = json.RawMessage("{}")

// Envelope is the wire representation of a message: a type tag plus a
// per-kind data payload. Envelopes are built through the factory
// constructors and are not mutated afterwards.
type Envelope struct {
	Type MessageType     `json:"type" validate:"required"`
	Data json.RawMessage `json:"data"`
}

// Decode parses a single wire frame. It never fails: malformed input or
// an unknown type tag yields a wrong_message envelope whose Valid()
// reports false.
func Decode(frame []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(bytes.TrimSpace(frame), &env); err != nil {
		return Envelope{Type: WrongMessage, Data: emptyObject}
	}
	if _, ok := knownTypes[env.Type]; !ok || env.Type == WrongMessage {
		return Envelope{Type: WrongMessage, Data: emptyObject}
	}
	if len(env.Data) == 0 {
		env.Data = emptyObject
	}
	return env
}

// Encode renders the envelope as a single wire frame without a trailing
// newline; framing is the transport's job.
func (e Envelope) Encode() []byte {
	if len(e.Data) == 0 {
		e.Data = emptyObject
	}
	data, err := json.Marshal(e)
	if err != nil {
		// An Envelope holds nothing json cannot marshal.
		return []byte(`{"type":"wrong_message","data":{}}`)
	}
	return data
}

// Valid reports whether the envelope carries a recognized message type.
func (e Envelope) Valid() bool {
	_, ok := knownTypes[e.Type]
	return ok && e.Type != WrongMessage
}

// DecodeData unmarshals the data payload into the given per-kind struct.
func (e Envelope) DecodeData(v any) error {
	return json.Unmarshal(e.Data, v)
}

func newEnvelope(t MessageType, payload any) Envelope {
	if payload == nil {
		return Envelope{Type: t, Data: emptyObject}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data = emptyObject
	}
	return Envelope{Type: t, Data: data}
}
