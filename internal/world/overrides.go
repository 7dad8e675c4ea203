package world

import (
	"sort"

	"merge-and-wander/server/internal/grid"
)

// OverrideEntry is one persisted override: a cell pinned to a value. A
// zero Value pins the cell to empty, which is distinct from no entry at
// all (no entry defers to the procedural layer).
type OverrideEntry struct {
	Cell  grid.Cell
	Value Token
}

// Overrides is the sparse mutation layer over the procedural base. Entries
// are never dropped while a session lives; a cell that was touched stays
// pinned even when it scrolls out of view.
type Overrides struct {
	entries map[grid.Cell]Token
}

// NewOverrides returns an empty override store.
func NewOverrides() *Overrides {
	return &Overrides{entries: make(map[grid.Cell]Token)}
}

// Lookup reports the pinned value for a cell and whether the cell is
// pinned at all. (TokenNone, true) means overridden-to-empty; (_, false)
// means untouched.
func (o *Overrides) Lookup(c grid.Cell) (Token, bool) {
	if o == nil || o.entries == nil {
		return TokenNone, false
	}
	v, ok := o.entries[c]
	return v, ok
}

// Set pins a cell to a value. Pinning to TokenNone records emptiness
// rather than deleting the entry.
func (o *Overrides) Set(c grid.Cell, v Token) {
	if o == nil {
		return
	}
	if o.entries == nil {
		o.entries = make(map[grid.Cell]Token)
	}
	o.entries[c] = v
}

// Len reports how many cells are pinned.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Entries lists every pinned cell ordered by row then column, so repeated
// snapshots of the same state encode identically.
func (o *Overrides) Entries() []OverrideEntry {
	if o == nil || len(o.entries) == 0 {
		return nil
	}
	entries := make([]OverrideEntry, 0, len(o.entries))
	for c, v := range o.entries {
		entries = append(entries, OverrideEntry{Cell: c, Value: v})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Cell.I != entries[b].Cell.I {
			return entries[a].Cell.I < entries[b].Cell.I
		}
		return entries[a].Cell.J < entries[b].Cell.J
	})
	return entries
}

// Restore replaces the whole store with the given entries. Later
// duplicates win, matching decode order.
func (o *Overrides) Restore(entries []OverrideEntry) {
	if o == nil {
		return
	}
	o.entries = make(map[grid.Cell]Token, len(entries))
	for _, e := range entries {
		o.entries[e.Cell] = e.Value
	}
}
