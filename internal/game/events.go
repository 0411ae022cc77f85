// Package game runs the table: setup placement, the turn loop with its
// mandatory phases, action validation with feedback, negotiations, and
// the win check.
package game

import (
	"context"
	"time"
)

// Event kinds emitted by the controller.
const (
	EventSetup       = "setup"
	EventDiceRoll    = "dice_roll"
	EventProduction  = "production"
	EventDiscard     = "discard"
	EventRobber      = "robber"
	EventBuild       = "build"
	EventDevCard     = "dev_card"
	EventBankTrade   = "bank_trade"
	EventTrade       = "player_trade"
	EventNegotiation = "negotiation"
	EventChat        = "chat"
	EventDiplomacy   = "diplomacy"
	EventAward       = "award"
	EventTurnEnd     = "turn_end"
	EventGameOver    = "game_over"
)

// Event is one observable step of the game.
type Event struct {
	Turn   int       `json:"turn"`
	Seat   string    `json:"seat,omitempty"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// Recorder persists events. The controller tolerates recorder errors; a
// failed write never stops the game.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Observer receives events as they happen, for live views.
type Observer interface {
	Observe(ev Event)
}
