package view

import (
	"testing"

	"merge-and-wander/server/internal/grid"
)

type renderedRect struct {
	bounds grid.Bounds
	label  string
}

// recordingSurface captures every drawing call for assertions.
type recordingSurface struct {
	rects    map[Handle]renderedRect
	removed  []Handle
	statuses []string
	pans     []grid.LatLng
	markers  []grid.LatLng
}

var _ Surface = (*recordingSurface)(nil)

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{rects: make(map[Handle]renderedRect)}
}

func (s *recordingSurface) RenderRect(h Handle, b grid.Bounds, label string) {
	s.rects[h] = renderedRect{bounds: b, label: label}
}

func (s *recordingSurface) UpdateLabel(h Handle, label string) {
	r, ok := s.rects[h]
	if !ok {
		return
	}
	r.label = label
	s.rects[h] = r
}

func (s *recordingSurface) RemoveRect(h Handle) {
	delete(s.rects, h)
	s.removed = append(s.removed, h)
}

func (s *recordingSurface) PanTo(p grid.LatLng)      { s.pans = append(s.pans, p) }
func (s *recordingSurface) MoveMarker(p grid.LatLng) { s.markers = append(s.markers, p) }
func (s *recordingSurface) SetStatus(text string)    { s.statuses = append(s.statuses, text) }

func (s *recordingSurface) labelAt(m *Manager, c grid.Cell) (string, bool) {
	h, ok := m.handles[c]
	if !ok {
		return "", false
	}
	r, ok := s.rects[h]
	return r.label, ok
}

func testViewMapper() grid.Mapper {
	return grid.NewMapper(grid.LatLng{}, 1e-4)
}

func TestReconcileCoversViewport(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 0)

	// 3 rows x 4 columns of cells plus the partially covered border.
	b := grid.Bounds{South: 0, West: 0, North: 0.00025, East: 0.00035}
	result := m.Reconcile(b, func(grid.Cell) string { return "" })

	if result.Clipped {
		t.Fatalf("small viewport must not clip")
	}
	if result.Rendered != m.MaterializedCount() {
		t.Fatalf("rendered %d but materialized %d", result.Rendered, m.MaterializedCount())
	}
	if len(surface.rects) != result.Rendered {
		t.Fatalf("surface holds %d rects, manager rendered %d", len(surface.rects), result.Rendered)
	}
	// Corner cells must be materialized: floor semantics put the NE corner
	// point in cell (2,3).
	for _, c := range []grid.Cell{{I: 0, J: 0}, {I: 2, J: 3}} {
		if !m.Contains(c) {
			t.Fatalf("expected cell %v to be materialized", c)
		}
	}
}

func TestReconcileRebuildsFromScratch(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 0)
	b := grid.Bounds{South: 0, West: 0, North: 0.0002, East: 0.0002}

	first := m.Reconcile(b, nil)
	second := m.Reconcile(b, nil)

	if second.Removed != first.Rendered {
		t.Fatalf("expected %d removals on rebuild, got %d", first.Rendered, second.Removed)
	}
	if second.Rendered != first.Rendered {
		t.Fatalf("same bounds must render the same count, got %d vs %d", second.Rendered, first.Rendered)
	}
	if len(surface.rects) != second.Rendered {
		t.Fatalf("stale rects left on surface: %d alive, want %d", len(surface.rects), second.Rendered)
	}
	if len(surface.removed) != first.Rendered {
		t.Fatalf("expected every first-pass rect to be destroyed, removed %d", len(surface.removed))
	}
}

func TestReconcileBindsLabels(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 0)
	b := grid.Bounds{South: 0, West: 0, North: 0.0002, East: 0.0002}

	m.Reconcile(b, func(c grid.Cell) string {
		if c.I == 1 && c.J == 1 {
			return "4"
		}
		return ""
	})

	if label, ok := surface.labelAt(m, grid.Cell{I: 1, J: 1}); !ok || label != "4" {
		t.Fatalf("expected label 4 at (1,1), got %q ok=%v", label, ok)
	}
	if label, ok := surface.labelAt(m, grid.Cell{I: 0, J: 0}); !ok || label != "" {
		t.Fatalf("expected unlabeled rect at (0,0), got %q ok=%v", label, ok)
	}
}

func TestRefreshCellUpdatesOnlyMaterialized(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 0)
	b := grid.Bounds{South: 0, West: 0, North: 0.0002, East: 0.0002}
	m.Reconcile(b, nil)

	inView := grid.Cell{I: 1, J: 0}
	offView := grid.Cell{I: 50, J: 50}

	if !m.RefreshCell(inView, func(grid.Cell) string { return "2" }) {
		t.Fatalf("expected refresh of a materialized cell to succeed")
	}
	if label, ok := surface.labelAt(m, inView); !ok || label != "2" {
		t.Fatalf("expected updated label 2, got %q ok=%v", label, ok)
	}
	if m.RefreshCell(offView, func(grid.Cell) string { return "8" }) {
		t.Fatalf("expected refresh of an off-screen cell to be a no-op")
	}
}

func TestReconcileClipsPathologicalBounds(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 100)

	// A whole-degree viewport would cover 10000x10000 cells.
	b := grid.Bounds{South: 0, West: 0, North: 1, East: 1}
	result := m.Reconcile(b, nil)

	if !result.Clipped {
		t.Fatalf("expected pathological bounds to clip")
	}
	if result.Rendered > 100 {
		t.Fatalf("render burst exceeded budget: %d", result.Rendered)
	}
	if result.Rendered == 0 {
		t.Fatalf("clipping must still render something")
	}
}

func TestClearForgetsViewport(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 0)
	b := grid.Bounds{South: 0, West: 0, North: 0.0002, East: 0.0002}
	m.Reconcile(b, nil)

	m.Clear()

	if m.MaterializedCount() != 0 {
		t.Fatalf("expected no rects after clear, got %d", m.MaterializedCount())
	}
	if len(surface.rects) != 0 {
		t.Fatalf("expected surface to be emptied, %d rects alive", len(surface.rects))
	}
	if _, ok := m.LastBounds(); ok {
		t.Fatalf("expected viewport to be forgotten")
	}
	if result := m.Refresh(nil); result.Rendered != 0 {
		t.Fatalf("refresh without a viewport must render nothing, got %d", result.Rendered)
	}
}

func TestRefreshReplaysLastViewport(t *testing.T) {
	surface := newRecordingSurface()
	m := NewManager(surface, testViewMapper(), 0)
	b := grid.Bounds{South: 0, West: 0, North: 0.0002, East: 0.0002}

	first := m.Reconcile(b, nil)
	replay := m.Refresh(func(grid.Cell) string { return "1" })

	if replay.Rendered != first.Rendered {
		t.Fatalf("expected replay to render %d, got %d", first.Rendered, replay.Rendered)
	}
	if label, ok := surface.labelAt(m, grid.Cell{I: 0, J: 0}); !ok || label != "1" {
		t.Fatalf("expected replay to rebind labels, got %q ok=%v", label, ok)
	}
}

func TestSetSurfaceDropsStaleHandles(t *testing.T) {
	first := newRecordingSurface()
	m := NewManager(first, testViewMapper(), 0)
	b := grid.Bounds{South: 0, West: 0, North: 0.0002, East: 0.0002}
	m.Reconcile(b, nil)

	second := newRecordingSurface()
	m.SetSurface(second)

	if m.MaterializedCount() != 0 {
		t.Fatalf("expected no materialized cells after surface swap, got %d", m.MaterializedCount())
	}

	replay := m.Refresh(nil)
	if replay.Rendered == 0 {
		t.Fatalf("expected replay on the new surface to render")
	}
	if len(second.rects) != replay.Rendered {
		t.Fatalf("expected %d rects on the new surface, got %d", replay.Rendered, len(second.rects))
	}
	if len(first.removed) != 0 {
		t.Fatalf("swap must not issue removals against the old surface")
	}
}
