package world

import "merge-and-wander/server/internal/grid"

// World is the authoritative logical state of the lattice: immutable rules,
// the derived coordinate mapper, and the sparse override layer. Visual
// concerns never reach it; only gameplay mutations do, and those mutations
// only ever touch the overrides.
type World struct {
	rules     Rules
	mapper    grid.Mapper
	overrides *Overrides
}

// New builds a world from normalized rules and an empty override store.
func New(rules Rules) *World {
	normalized := rules.normalized()
	return &World{
		rules:     normalized,
		mapper:    normalized.Mapper(),
		overrides: NewOverrides(),
	}
}

// Rules returns the normalized configuration the world was built with.
func (w *World) Rules() Rules {
	if w == nil {
		return DefaultRules()
	}
	return w.rules
}

// Mapper returns the coordinate mapper implied by the rules.
func (w *World) Mapper() grid.Mapper {
	if w == nil {
		return DefaultRules().Mapper()
	}
	return w.mapper
}

// EffectiveValue resolves what a cell currently holds: the pinned override
// when one exists, the procedural base value otherwise.
func (w *World) EffectiveValue(c grid.Cell) Token {
	if w == nil {
		return TokenNone
	}
	if v, ok := w.overrides.Lookup(c); ok {
		return v
	}
	return BaseValue(w.rules, c)
}

// BaseValue exposes the pristine procedural content of a cell, ignoring
// overrides.
func (w *World) BaseValue(c grid.Cell) Token {
	if w == nil {
		return TokenNone
	}
	return BaseValue(w.rules, c)
}

// SetOverride pins a cell to a value.
func (w *World) SetOverride(c grid.Cell, v Token) {
	if w == nil {
		return
	}
	w.overrides.Set(c, v)
}

// OverrideCount reports how many cells are pinned.
func (w *World) OverrideCount() int {
	if w == nil {
		return 0
	}
	return w.overrides.Len()
}

// OverrideEntries lists the pinned cells in canonical order.
func (w *World) OverrideEntries() []OverrideEntry {
	if w == nil {
		return nil
	}
	return w.overrides.Entries()
}

// RestoreOverrides replaces the override layer wholesale, as a load does.
func (w *World) RestoreOverrides(entries []OverrideEntry) {
	if w == nil {
		return
	}
	w.overrides.Restore(entries)
}
