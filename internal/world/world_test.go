package world

import (
	"testing"

	"merge-and-wander/server/internal/grid"
)

func TestNewNormalizesRules(t *testing.T) {
	w := New(Rules{})

	rules := w.Rules()
	if rules.Seed != DefaultSeed {
		t.Fatalf("expected default seed %q, got %q", DefaultSeed, rules.Seed)
	}
	if rules.CellSizeDegrees != DefaultCellSizeDegrees {
		t.Fatalf("expected default cell size, got %v", rules.CellSizeDegrees)
	}
	if rules.WinTarget != DefaultWinTarget {
		t.Fatalf("expected default win target, got %d", rules.WinTarget)
	}
}

func TestEffectiveValuePrefersOverride(t *testing.T) {
	rules := DefaultRules()
	rules.SpawnProbability = 1
	w := New(rules)

	c := grid.Cell{I: 4, J: -2}
	if got := w.EffectiveValue(c); got != BaseTokenValue {
		t.Fatalf("expected base token before override, got %d", got)
	}

	w.SetOverride(c, 8)
	if got := w.EffectiveValue(c); got != 8 {
		t.Fatalf("expected override value 8, got %d", got)
	}
}

func TestOverrideToEmptyMasksBase(t *testing.T) {
	rules := DefaultRules()
	rules.SpawnProbability = 1
	w := New(rules)

	c := grid.Cell{I: 0, J: 0}
	w.SetOverride(c, TokenNone)

	if got := w.EffectiveValue(c); got != TokenNone {
		t.Fatalf("expected pinned-empty cell to resolve empty, got %d", got)
	}
	if got := w.BaseValue(c); got != BaseTokenValue {
		t.Fatalf("base layer must stay untouched, got %d", got)
	}
}

func TestUntouchedCellDefersToBase(t *testing.T) {
	rules := DefaultRules()
	rules.SpawnProbability = 0
	w := New(rules)

	if got := w.EffectiveValue(grid.Cell{I: 9, J: 9}); got != TokenNone {
		t.Fatalf("expected empty cell with zero spawn probability, got %d", got)
	}
	if w.OverrideCount() != 0 {
		t.Fatalf("resolution must not create override entries, have %d", w.OverrideCount())
	}
}

func TestRestoreOverridesReplacesWholeLayer(t *testing.T) {
	w := New(DefaultRules())
	w.SetOverride(grid.Cell{I: 1, J: 1}, 2)

	w.RestoreOverrides([]OverrideEntry{
		{Cell: grid.Cell{I: 5, J: 5}, Value: 4},
	})

	if _, ok := w.overrides.Lookup(grid.Cell{I: 1, J: 1}); ok {
		t.Fatalf("expected pre-restore entry to be gone")
	}
	if v, ok := w.overrides.Lookup(grid.Cell{I: 5, J: 5}); !ok || v != 4 {
		t.Fatalf("expected restored entry value 4, got %d (present=%v)", v, ok)
	}
}
