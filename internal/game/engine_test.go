package game

import (
	"testing"

	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/world"
)

func saturatedEngine(t *testing.T) *Engine {
	t.Helper()
	rules := world.DefaultRules()
	rules.SpawnProbability = 1
	return NewEngine(world.New(rules), DefaultState())
}

func barrenEngine(t *testing.T) *Engine {
	t.Helper()
	rules := world.DefaultRules()
	rules.SpawnProbability = 0
	return NewEngine(world.New(rules), DefaultState())
}

func TestClickCellPicksUpToken(t *testing.T) {
	eng := saturatedEngine(t)
	c := grid.Cell{I: 1, J: 1}

	out := eng.ClickCell(c)

	if out.Kind != ActionPickup {
		t.Fatalf("expected pickup, got %q", out.Kind)
	}
	if !out.Changed {
		t.Fatalf("pickup must report a state change")
	}
	if out.Held != world.BaseTokenValue {
		t.Fatalf("expected held 1 after pickup, got %d", out.Held)
	}
	if eng.State().Held != world.BaseTokenValue {
		t.Fatalf("engine state held mismatch: %d", eng.State().Held)
	}
}

func TestClickCellPlacesHeldToken(t *testing.T) {
	eng := saturatedEngine(t)
	src := grid.Cell{I: 0, J: 1}
	dst := grid.Cell{I: 0, J: 2}

	eng.ClickCell(src)
	// Emptied by the pickup, src is now a valid placement target.
	out := eng.ClickCell(src)
	if out.Kind != ActionPlace {
		t.Fatalf("expected place into emptied cell, got %q", out.Kind)
	}
	if out.Value != world.BaseTokenValue {
		t.Fatalf("expected placed value 1, got %d", out.Value)
	}
	if eng.State().Held != world.TokenNone {
		t.Fatalf("expected empty hand after place, got %d", eng.State().Held)
	}

	// dst still has its procedural token, so an empty-handed click picks up.
	if out := eng.ClickCell(dst); out.Kind != ActionPickup {
		t.Fatalf("expected pickup at %v, got %q", dst, out.Kind)
	}
}

func TestClickCellCraftsEqualTokens(t *testing.T) {
	eng := saturatedEngine(t)
	first := grid.Cell{I: 1, J: 0}
	second := grid.Cell{I: 2, J: 0}

	eng.ClickCell(first)
	out := eng.ClickCell(second)

	if out.Kind != ActionCraft {
		t.Fatalf("expected craft, got %q", out.Kind)
	}
	if out.Held != 2 {
		t.Fatalf("expected held 2 after crafting two 1s, got %d", out.Held)
	}
	if out.WonNow {
		t.Fatalf("crafting a 2 must not win")
	}
	// The crafted-against cell is consumed.
	if out := eng.ClickCell(second); out.Kind != ActionPlace {
		t.Fatalf("expected crafted cell to be empty for placement, got %q", out.Kind)
	}
}

func TestClickCellMismatchLeavesEverythingAlone(t *testing.T) {
	eng := saturatedEngine(t)
	a := grid.Cell{I: 1, J: 0}
	b := grid.Cell{I: 2, J: 0}
	c := grid.Cell{I: 3, J: 0}

	eng.ClickCell(a)
	eng.ClickCell(b) // craft, held 2
	out := eng.ClickCell(c)

	if out.Kind != ActionMismatch {
		t.Fatalf("expected mismatch clicking a 1 while holding 2, got %q", out.Kind)
	}
	if out.Changed {
		t.Fatalf("mismatch must not change state")
	}
	if eng.State().Held != 2 {
		t.Fatalf("held must survive a mismatch, got %d", eng.State().Held)
	}
	if got := eng.ClickCell(c); got.Kind != ActionMismatch {
		t.Fatalf("cell value must survive a mismatch, got %q", got.Kind)
	}
}

func TestClickCellNothingHere(t *testing.T) {
	eng := barrenEngine(t)

	out := eng.ClickCell(grid.Cell{I: 1, J: 1})

	if out.Kind != ActionNothingHere {
		t.Fatalf("expected nothing-here, got %q", out.Kind)
	}
	if out.Changed {
		t.Fatalf("advisory outcome must not change state")
	}
}

func TestClickCellRespectsInteractionRadius(t *testing.T) {
	eng := saturatedEngine(t)

	near := grid.Cell{I: 3, J: 3}
	far := grid.Cell{I: 4, J: 0}

	if out := eng.ClickCell(far); out.Kind != ActionTooFar {
		t.Fatalf("expected too-far at distance 4, got %q", out.Kind)
	}
	if out := eng.ClickCell(near); out.Kind != ActionPickup {
		t.Fatalf("expected pickup at the radius boundary, got %q", out.Kind)
	}
}

func TestMoveByTranslatesPlayer(t *testing.T) {
	eng := barrenEngine(t)

	out := eng.MoveBy(1, 0)
	if out.Kind != ActionMove || !out.Changed {
		t.Fatalf("expected a move outcome, got %+v", out)
	}
	if eng.State().Player != (grid.Cell{I: 1, J: 0}) {
		t.Fatalf("expected player at (1,0), got %v", eng.State().Player)
	}

	eng.MoveBy(0, -1)
	eng.MoveBy(-2, 0)
	if eng.State().Player != (grid.Cell{I: -1, J: -1}) {
		t.Fatalf("expected player at (-1,-1), got %v", eng.State().Player)
	}
}

func TestMoveByZeroIsAbsorbed(t *testing.T) {
	eng := barrenEngine(t)
	out := eng.MoveBy(0, 0)
	if out.Kind != ActionNone || out.Changed {
		t.Fatalf("expected zero move to be absorbed, got %+v", out)
	}
}

func TestMoveToSameCellIsAbsorbed(t *testing.T) {
	eng := barrenEngine(t)
	out := eng.MoveTo(grid.Cell{})
	if out.Kind != ActionNone || out.Changed {
		t.Fatalf("expected same-cell MoveTo to be absorbed, got %+v", out)
	}
}

func TestMoveShiftsInteractionRange(t *testing.T) {
	eng := saturatedEngine(t)

	target := grid.Cell{I: 7, J: 0}
	if out := eng.ClickCell(target); out.Kind != ActionTooFar {
		t.Fatalf("expected too-far before walking, got %q", out.Kind)
	}

	eng.MoveBy(4, 0)
	if out := eng.ClickCell(target); out.Kind != ActionPickup {
		t.Fatalf("expected pickup after walking into range, got %q", out.Kind)
	}
}

// buildHeld drives the engine until the held slot carries the requested
// power-of-two value. Fresh token cells are consumed left to right; cells
// emptied along the way serve as parking spots for intermediate values.
func buildHeld(t *testing.T, eng *Engine, value world.Token, fresh *[]grid.Cell, empty *[]grid.Cell) {
	t.Helper()
	if value == world.BaseTokenValue {
		if len(*fresh) == 0 {
			t.Fatalf("ran out of fresh token cells")
		}
		c := (*fresh)[0]
		*fresh = (*fresh)[1:]
		out := eng.ClickCell(c)
		if out.Kind != ActionPickup {
			t.Fatalf("expected pickup at %v, got %q", c, out.Kind)
		}
		*empty = append(*empty, c)
		return
	}

	half := value / 2
	buildHeld(t, eng, half, fresh, empty)

	if len(*empty) == 0 {
		t.Fatalf("no empty cell available to park %d", half)
	}
	park := (*empty)[len(*empty)-1]
	*empty = (*empty)[:len(*empty)-1]

	if out := eng.ClickCell(park); out.Kind != ActionPlace {
		t.Fatalf("expected to park %d at %v, got %q", half, park, out.Kind)
	}
	buildHeld(t, eng, half, fresh, empty)
	out := eng.ClickCell(park)
	if out.Kind != ActionCraft {
		t.Fatalf("expected craft at %v, got %q", park, out.Kind)
	}
	if out.Held != value {
		t.Fatalf("expected held %d after craft, got %d", value, out.Held)
	}
	*empty = append(*empty, park)
}

func TestCraftingLadderReachesWinAndFreezes(t *testing.T) {
	eng := saturatedEngine(t)

	// Every cell within the radius holds a 1; sixteen of them fuel the
	// climb 1 -> 2 -> 4 -> 8 -> 16 -> 32.
	var fresh []grid.Cell
	for i := -3; i <= 3; i++ {
		for j := -3; j <= 3; j++ {
			fresh = append(fresh, grid.Cell{I: i, J: j})
		}
	}
	var empty []grid.Cell

	buildHeld(t, eng, 32, &fresh, &empty)

	st := eng.State()
	if st.Held != 32 {
		t.Fatalf("expected held 32, got %d", st.Held)
	}
	if !st.Won {
		t.Fatalf("expected the win flag to latch at 32")
	}

	if out := eng.ClickCell(grid.Cell{I: 0, J: 0}); out.Kind != ActionFrozen {
		t.Fatalf("expected clicks to freeze after winning, got %q", out.Kind)
	}
	if out := eng.MoveBy(1, 0); out.Kind != ActionFrozen {
		t.Fatalf("expected movement to freeze after winning, got %q", out.Kind)
	}
	if out := eng.MoveTo(grid.Cell{I: 5, J: 5}); out.Kind != ActionFrozen {
		t.Fatalf("expected absolute movement to freeze after winning, got %q", out.Kind)
	}
	if eng.State().Player != (grid.Cell{}) {
		t.Fatalf("player must not move while frozen, got %v", eng.State().Player)
	}
}

func TestWinIsDetectedOnPickup(t *testing.T) {
	rules := world.DefaultRules()
	rules.SpawnProbability = 0
	w := world.New(rules)
	w.SetOverride(grid.Cell{I: 1, J: 1}, 32)
	eng := NewEngine(w, DefaultState())

	out := eng.ClickCell(grid.Cell{I: 1, J: 1})
	if out.Kind != ActionPickup {
		t.Fatalf("expected pickup, got %q", out.Kind)
	}
	if !out.WonNow {
		t.Fatalf("picking up a target-sized token must win")
	}
	if !eng.Won() {
		t.Fatalf("win flag must latch")
	}
}

func TestResetClearsWinFreeze(t *testing.T) {
	rules := world.DefaultRules()
	rules.SpawnProbability = 0
	w := world.New(rules)
	w.SetOverride(grid.Cell{I: 0, J: 1}, 32)
	eng := NewEngine(w, DefaultState())

	eng.ClickCell(grid.Cell{I: 0, J: 1})
	if !eng.Won() {
		t.Fatalf("setup expected a win")
	}

	eng.Reset(DefaultState())
	w.RestoreOverrides(nil)

	if eng.Won() {
		t.Fatalf("reset must clear the win flag")
	}
	if out := eng.MoveBy(1, 0); out.Kind != ActionMove {
		t.Fatalf("expected movement to resume after reset, got %q", out.Kind)
	}
}

func TestSetModeReportsChanges(t *testing.T) {
	eng := barrenEngine(t)

	if eng.SetMode(MovementButtons) {
		t.Fatalf("setting the current mode must be a no-op")
	}
	if !eng.SetMode(MovementLive) {
		t.Fatalf("expected mode switch to report a change")
	}
	if eng.State().Mode != MovementLive {
		t.Fatalf("expected live mode, got %q", eng.State().Mode)
	}
}

func TestParseMovementMode(t *testing.T) {
	if mode, ok := ParseMovementMode("buttons"); !ok || mode != MovementButtons {
		t.Fatalf("expected buttons mode, got %q ok=%v", mode, ok)
	}
	if mode, ok := ParseMovementMode("live"); !ok || mode != MovementLive {
		t.Fatalf("expected live mode, got %q ok=%v", mode, ok)
	}
	if _, ok := ParseMovementMode("teleport"); ok {
		t.Fatalf("expected unknown mode to be rejected")
	}
}

func TestAdvisoryKinds(t *testing.T) {
	advisories := []ActionKind{ActionTooFar, ActionNothingHere, ActionMismatch, ActionFrozen}
	for _, kind := range advisories {
		if !kind.Advisory() {
			t.Fatalf("expected %q to be advisory", kind)
		}
	}
	for _, kind := range []ActionKind{ActionPickup, ActionPlace, ActionCraft, ActionMove, ActionNone} {
		if kind.Advisory() {
			t.Fatalf("expected %q not to be advisory", kind)
		}
	}
}
