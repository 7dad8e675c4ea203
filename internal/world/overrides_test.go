package world

import (
	"testing"

	"merge-and-wander/server/internal/grid"
)

func TestOverridesDistinguishEmptyFromAbsent(t *testing.T) {
	o := NewOverrides()
	pinned := grid.Cell{I: 1, J: 2}
	untouched := grid.Cell{I: 3, J: 4}

	o.Set(pinned, TokenNone)

	if v, ok := o.Lookup(pinned); !ok || v != TokenNone {
		t.Fatalf("expected pinned-empty entry, got value %d present=%v", v, ok)
	}
	if _, ok := o.Lookup(untouched); ok {
		t.Fatalf("expected untouched cell to have no entry")
	}
	if o.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", o.Len())
	}
}

func TestOverridesEntriesAreSorted(t *testing.T) {
	o := NewOverrides()
	o.Set(grid.Cell{I: 2, J: 0}, 4)
	o.Set(grid.Cell{I: -1, J: 5}, 1)
	o.Set(grid.Cell{I: 2, J: -3}, 2)
	o.Set(grid.Cell{I: -1, J: -5}, TokenNone)

	entries := o.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	want := []grid.Cell{
		{I: -1, J: -5},
		{I: -1, J: 5},
		{I: 2, J: -3},
		{I: 2, J: 0},
	}
	for idx, cell := range want {
		if entries[idx].Cell != cell {
			t.Fatalf("entry %d: expected %v, got %v", idx, cell, entries[idx].Cell)
		}
	}
}

func TestOverridesSetReplacesValue(t *testing.T) {
	o := NewOverrides()
	c := grid.Cell{I: 0, J: 0}

	o.Set(c, 1)
	o.Set(c, 2)

	if v, _ := o.Lookup(c); v != 2 {
		t.Fatalf("expected latest value 2, got %d", v)
	}
	if o.Len() != 1 {
		t.Fatalf("expected one entry after replacement, got %d", o.Len())
	}
}

func TestNilOverridesAreInert(t *testing.T) {
	var o *Overrides
	o.Set(grid.Cell{}, 1)
	if _, ok := o.Lookup(grid.Cell{}); ok {
		t.Fatalf("nil store must report absence")
	}
	if o.Len() != 0 || o.Entries() != nil {
		t.Fatalf("nil store must be empty")
	}
}
