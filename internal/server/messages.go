package server

import "github.com/cabingames/duel-server-go/internal/game"

// Client-to-server message types.
const (
	MsgPlayerJoin          = "player_join"
	MsgPlayerAction        = "player_action"
	MsgCardPlacementUpdate = "card_placement_update"
	MsgSpecialAction       = "special_action"
	MsgStartNewRound       = "start_new_round"
)

// Server-to-client message types.
const (
	MsgNumbersAssigned      = "numbers_assigned"
	MsgGameStart            = "game_start"
	MsgGameFull             = "game_full"
	MsgGameState            = "game_state"
	MsgMoveAccepted         = "move_accepted"
	MsgOpponentMove         = "opponent_move"
	MsgWaitingForOpponent   = "waiting_for_opponent"
	MsgSpecialActionRequest = "special_action_request"
	MsgOpponentDisconnected = "opponent_disconnected"
	MsgOpponentReconnected  = "opponent_reconnected"
)

// ClientMessage is the inbound wire frame. Unused fields stay zero; the
// Type discriminates which ones matter.
type ClientMessage struct {
	Type       string               `json:"type"`
	PlayerID   string               `json:"player_id,omitempty"`
	CardID     int                  `json:"card_id,omitempty"`
	Slot       int                  `json:"slot,omitempty"`
	Action     string               `json:"action,omitempty"`
	ActionType string               `json:"action_type,omitempty"`
	Slots      [game.NumSlots][]int `json:"slots,omitempty"`
}

// ServerMessage is the outbound wire frame.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// HandAssignment is the payload of numbers_assigned: the full current
// hand, resent whole so clients never diff.
type HandAssignment struct {
	PlayerID string          `json:"player_id"`
	Cards    []game.CardView `json:"cards"`
}

// MovePayload is the payload of opponent_move after a round resolves: the
// opponent's revealed battlefield plus the resolution summary.
type MovePayload struct {
	Round          int                           `json:"round"`
	MoverID        string                        `json:"mover_id"`
	Slots          [game.NumSlots]*game.CardView `json:"slots"`
	MoverDeaths    []int                         `json:"mover_deaths,omitempty"`
	OpponentDeaths []int                         `json:"opponent_deaths,omitempty"`
	Vitality       int                           `json:"vitality"`
	Winner         string                        `json:"winner,omitempty"`
	GameOver       bool                          `json:"game_over"`
}
