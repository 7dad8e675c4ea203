package server

import (
	"fmt"

	"merge-and-wander/server/internal/game"
	"merge-and-wander/server/internal/world"
)

// advisoryText renders the player-facing line for one outcome. Empty
// string means the outcome speaks for itself.
func advisoryText(out game.Outcome) string {
	switch out.Kind {
	case game.ActionPickup:
		return fmt.Sprintf("Picked up %d.", int(out.Value))
	case game.ActionPlace:
		return fmt.Sprintf("Placed %d.", int(out.Value))
	case game.ActionCraft:
		return fmt.Sprintf("Crafted %d!", int(out.Value))
	case game.ActionTooFar:
		return "Too far away."
	case game.ActionNothingHere:
		return "Nothing here."
	case game.ActionMismatch:
		return "Values don't match."
	case game.ActionFrozen:
		return "You already won. Reset to play again."
	default:
		return ""
	}
}

// heldText renders the held-slot summary.
func heldText(st game.State) string {
	if st.Held == world.TokenNone {
		return "Empty-handed."
	}
	return fmt.Sprintf("Holding %d.", int(st.Held))
}

// modeUnavailableText renders the status line for a movement source that
// refused to start. The previous source keeps running.
func modeUnavailableText(st game.State) string {
	return "Movement mode unavailable. " + heldText(st)
}

// statusText combines the win banner, the last outcome, and the held slot
// into the one-line status a surface shows.
func statusText(st game.State, out game.Outcome) string {
	if st.Won {
		return fmt.Sprintf("You win! Crafted %d. Reset to play again.", int(st.Held))
	}
	advisory := advisoryText(out)
	if advisory == "" {
		return heldText(st)
	}
	return advisory + " " + heldText(st)
}
