package game

import (
	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/world"
)

// Engine applies stimuli to the game state. It is not safe for concurrent
// use; callers serialize access, one stimulus at a time.
type Engine struct {
	world *world.World
	state State
}

// NewEngine binds an engine to a world and an initial state.
func NewEngine(w *world.World, st State) *Engine {
	if st.Mode == "" {
		st.Mode = MovementButtons
	}
	return &Engine{world: w, state: st}
}

// State returns a copy of the current game state.
func (e *Engine) State() State {
	if e == nil {
		return DefaultState()
	}
	return e.state
}

// Won reports whether the sticky win flag is set.
func (e *Engine) Won() bool {
	return e != nil && e.state.Won
}

// ClickCell resolves one cell activation against the crafting rules.
//
// Empty-handed clicks pick up; loaded clicks either place into emptiness,
// craft against an equal token, or bounce off a mismatch. Every mutation
// is written as an override; the procedural layer is never touched.
func (e *Engine) ClickCell(c grid.Cell) Outcome {
	if e == nil || e.world == nil {
		return Outcome{Kind: ActionNone}
	}
	if e.state.Won {
		return e.outcome(ActionFrozen, c, world.TokenNone)
	}
	rules := e.world.Rules()
	if grid.Chebyshev(c, e.state.Player) > rules.InteractionRadius {
		return e.outcome(ActionTooFar, c, world.TokenNone)
	}

	value := e.world.EffectiveValue(c)
	switch {
	case e.state.Held == world.TokenNone && value == world.TokenNone:
		return e.outcome(ActionNothingHere, c, world.TokenNone)

	case e.state.Held == world.TokenNone:
		e.state.Held = value
		e.world.SetOverride(c, world.TokenNone)
		out := e.outcome(ActionPickup, c, value)
		out.Changed = true
		out.WonNow = e.checkWin()
		out.Held = e.state.Held
		return out

	case value == world.TokenNone:
		placed := e.state.Held
		e.world.SetOverride(c, placed)
		e.state.Held = world.TokenNone
		out := e.outcome(ActionPlace, c, placed)
		out.Changed = true
		return out

	case value != e.state.Held:
		return e.outcome(ActionMismatch, c, value)

	default:
		crafted := e.state.Held * 2
		e.state.Held = crafted
		e.world.SetOverride(c, world.TokenNone)
		out := e.outcome(ActionCraft, c, crafted)
		out.Changed = true
		out.WonNow = e.checkWin()
		out.Held = e.state.Held
		return out
	}
}

// MoveBy translates the player by whole cells. Movement freezes once won.
func (e *Engine) MoveBy(di, dj int) Outcome {
	if e == nil {
		return Outcome{Kind: ActionNone}
	}
	if e.state.Won {
		return e.outcome(ActionFrozen, e.state.Player, world.TokenNone)
	}
	if di == 0 && dj == 0 {
		return e.outcome(ActionNone, e.state.Player, world.TokenNone)
	}
	return e.MoveTo(e.state.Player.Offset(di, dj))
}

// MoveTo places the player on an absolute cell. Re-entering the current
// cell is absorbed so a noisy position feed does not churn saves.
func (e *Engine) MoveTo(c grid.Cell) Outcome {
	if e == nil {
		return Outcome{Kind: ActionNone}
	}
	if e.state.Won {
		return e.outcome(ActionFrozen, c, world.TokenNone)
	}
	if c == e.state.Player {
		return e.outcome(ActionNone, c, world.TokenNone)
	}
	e.state.Player = c
	out := e.outcome(ActionMove, c, world.TokenNone)
	out.Changed = true
	return out
}

// SetMode records the active movement mode. The mode rides along in every
// save so a reload resumes with the same source.
func (e *Engine) SetMode(mode MovementMode) bool {
	if e == nil || mode == e.state.Mode {
		return false
	}
	e.state.Mode = mode
	return true
}

// Reset replaces the state wholesale, clearing the win freeze.
func (e *Engine) Reset(st State) {
	if e == nil {
		return
	}
	if st.Mode == "" {
		st.Mode = MovementButtons
	}
	e.state = st
}

// checkWin latches the sticky win flag when the held slot reaches the
// target. Only the held slot counts; tokens parked in cells do not.
func (e *Engine) checkWin() bool {
	if e.state.Won {
		return false
	}
	rules := e.world.Rules()
	if int(e.state.Held) >= rules.WinTarget {
		e.state.Won = true
		return true
	}
	return false
}

func (e *Engine) outcome(kind ActionKind, c grid.Cell, v world.Token) Outcome {
	return Outcome{
		Kind:   kind,
		Cell:   c,
		Value:  v,
		Held:   e.state.Held,
		Player: e.state.Player,
	}
}
