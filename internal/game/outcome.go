package game

import (
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/world"
)

// ActionKind classifies what a stimulus did to the game state. Advisory
// kinds report why nothing happened.
type ActionKind string

const (
	// ActionNone means the stimulus was absorbed without effect.
	ActionNone ActionKind = "none"
	// ActionPickup moved a token from a cell into the held slot.
	ActionPickup ActionKind = "pickup"
	// ActionPlace moved the held token into an empty cell.
	ActionPlace ActionKind = "place"
	// ActionCraft merged the held token with an equal one into double.
	ActionCraft ActionKind = "craft"
	// ActionMove relocated the player.
	ActionMove ActionKind = "move"
	// ActionTooFar rejects a click outside the interaction radius.
	ActionTooFar ActionKind = "too-far"
	// ActionNothingHere rejects an empty-handed click on an empty cell.
	ActionNothingHere ActionKind = "nothing-here"
	// ActionMismatch rejects a craft between unequal tokens.
	ActionMismatch ActionKind = "mismatch"
	// ActionFrozen rejects any stimulus after the win until a reset.
	ActionFrozen ActionKind = "frozen"
)

// Advisory reports whether the kind carries feedback only.
func (k ActionKind) Advisory() bool {
	switch k {
	case ActionTooFar, ActionNothingHere, ActionMismatch, ActionFrozen:
		return true
	}
	return false
}

// Outcome is the engine's answer to one stimulus. Callers persist and
// refresh visuals when Changed is set; they never inspect the world to
// find out what happened.
type Outcome struct {
	Kind    ActionKind
	Cell    grid.Cell
	Value   world.Token
	Held    world.Token
	Player  grid.Cell
	Changed bool
	WonNow  bool
}
