package game

import (
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/world"
)

// MovementMode names the stimulus source steering the player.
type MovementMode string

const (
	// MovementButtons steps one cell per press.
	MovementButtons MovementMode = "buttons"
	// MovementLive follows a live position feed.
	MovementLive MovementMode = "live"
)

// ParseMovementMode validates a wire or persisted mode string.
func ParseMovementMode(value string) (MovementMode, bool) {
	switch MovementMode(value) {
	case MovementButtons, MovementLive:
		return MovementMode(value), true
	default:
		return "", false
	}
}

// State is the player-facing game state. It is deliberately tiny: one held
// slot, the sticky win flag, the player's cell, and the movement mode.
// Everything else lives in the world's override layer.
type State struct {
	Held   world.Token
	Won    bool
	Player grid.Cell
	Mode   MovementMode
}

// DefaultState places an empty-handed player on the origin cell.
func DefaultState() State {
	return State{
		Held:   world.TokenNone,
		Won:    false,
		Player: grid.Cell{},
		Mode:   MovementButtons,
	}
}
