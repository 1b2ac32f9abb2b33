package ws

import (
	"encoding/json"
)

type Incoming struct {
	Event string          `json:"event"`
	ID    int             `json:"id"`
	Data  json.RawMessage `json:"data"`
}

// Outgoing is a reply to an Incoming message with the same ID. State pushes of subscribed games use ID 0.
type Outgoing struct {
	ID    int    `json:"id"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type GameRequest struct {
	GameID string `json:"game_id"`
}

type MoveRequest struct {
	GameID string `json:"game_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type AnalyzeRequest struct {
	GameID string `json:"game_id"`
	Level  int    `json:"level"`
}
