// Package types defines the JSON wire messages exchanged with clients over
// the per-room websocket channel.
package types

import (
	"encoding/json"

	"github.com/quizwire/trivia-backend/internal/game"
)

// ClientMessage is the inbound envelope. Type selects the operation; the
// other fields are read as that operation needs them.
//
//	start        -> Settings?, CustomData?
//	pickQuestion -> Coord
//	buzz         -> (nothing)
//	answer       -> Coord, Text
//	wager        -> Amount (string or number; non-numeric clamps to the round minimum)
//	judge        -> Judge
//	bulkJudge    -> BulkJudge
//	undo         -> (nothing)
//	skipToNext   -> (nothing)
//	setAutoJudge -> Enabled
//	setName      -> Text
//	chat         -> Text
type ClientMessage struct {
	Type       string               `json:"type"`
	Coord      string               `json:"coord,omitempty"`
	Text       string               `json:"text,omitempty"`
	Amount     json.RawMessage      `json:"amount,omitempty"`
	Enabled    bool                 `json:"enabled,omitempty"`
	Settings   *game.Settings       `json:"settings,omitempty"`
	CustomData string               `json:"customData,omitempty"`
	Judge      *game.JudgeRequest   `json:"judge,omitempty"`
	BulkJudge  []game.BulkJudgeItem `json:"bulkJudge,omitempty"`
}

// AmountString renders the wager amount for the engine: numbers as their
// literal text, strings unquoted, anything else verbatim (the engine clamps
// non-numeric input to the round minimum).
func (m ClientMessage) AmountString() string {
	var s string
	if err := json.Unmarshal(m.Amount, &s); err == nil {
		return s
	}
	return string(m.Amount)
}

// ServerMessage is the outbound envelope.
//
//	state   -> State (full public snapshot, re-sent after every mutation)
//	roster  -> Players
//	chat    -> Chat
//	cue     -> Cue (discrete presentation event)
//	results -> Results (final standings)
//	welcome -> PlayerID (the transient id assigned to this connection)
//	error   -> Error
type ServerMessage struct {
	Type     string            `json:"type"`
	State    *game.PublicState `json:"state,omitempty"`
	Players  []*game.Player    `json:"players,omitempty"`
	Chat     *game.ChatEntry   `json:"chat,omitempty"`
	Cue      *game.Cue         `json:"cue,omitempty"`
	Results  []game.Result     `json:"results,omitempty"`
	PlayerID string            `json:"playerId,omitempty"`
	Error    string            `json:"error,omitempty"`
}
