package view

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"merge-and-wander/server/internal/grid"
)

// DefaultMaxCells caps how many rects one reconcile may materialize.
// Pathological viewport bounds otherwise translate into an unbounded
// render burst.
const DefaultMaxCells = 4096

// LabelFunc resolves the label for a cell. Empty string renders an
// unlabeled rect.
type LabelFunc func(grid.Cell) string

// ReconcileResult summarizes one viewport rebuild.
type ReconcileResult struct {
	Rendered int
	Removed  int
	Clipped  bool
}

// Manager owns the flyweight layer between the logical lattice and a
// surface: which cells are materialized and under which handle. Its
// policy is rebuild-all; every viewport settle tears the old rects down
// and renders the covered range from scratch. Cheap, allocation-light
// visuals make that simpler and no slower than diffing.
type Manager struct {
	surface    Surface
	mapper     grid.Mapper
	visible    mapset.Set[grid.Cell]
	handles    map[grid.Cell]Handle
	nextHandle Handle
	maxCells   int

	lastBounds grid.Bounds
	hasBounds  bool
}

// NewManager binds a manager to a surface and a mapper.
func NewManager(surface Surface, mapper grid.Mapper, maxCells int) *Manager {
	if surface == nil {
		surface = NopSurface{}
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	return &Manager{
		surface:  surface,
		mapper:   mapper,
		visible:  mapset.New[grid.Cell](),
		handles:  make(map[grid.Cell]Handle),
		maxCells: maxCells,
	}
}

// SetSurface swaps the drawing target, dropping every handle that pointed
// at the old one. The next reconcile repopulates the new surface.
func (m *Manager) SetSurface(surface Surface) {
	if m == nil {
		return
	}
	if surface == nil {
		surface = NopSurface{}
	}
	m.clearLocal()
	m.surface = surface
}

// Reconcile rebuilds the materialized set to cover the given viewport.
// Destruction touches only visuals; the override layer never hears about
// cells scrolling away.
func (m *Manager) Reconcile(b grid.Bounds, label LabelFunc) ReconcileResult {
	if m == nil {
		return ReconcileResult{}
	}
	result := ReconcileResult{Removed: m.removeAll()}

	b = b.Normalized()
	m.lastBounds = b
	m.hasBounds = true

	min, max := m.mapper.CellRange(b)
	if grid.RangeCount(min, max) > m.maxCells {
		result.Clipped = true
		min, max = clampRange(min, max, m.maxCells)
	}

	for i := min.I; i <= max.I; i++ {
		for j := min.J; j <= max.J; j++ {
			c := grid.Cell{I: i, J: j}
			h := m.allocHandle()
			m.visible.Put(c)
			m.handles[c] = h
			text := ""
			if label != nil {
				text = label(c)
			}
			m.surface.RenderRect(h, m.mapper.CellBounds(c), text)
			result.Rendered++
		}
	}
	return result
}

// RefreshCell rebinds one materialized cell's label after a mutation.
// Off-screen cells are ignored; their next materialization reads the
// mutated state anyway.
func (m *Manager) RefreshCell(c grid.Cell, label LabelFunc) bool {
	if m == nil || !m.visible.Has(c) {
		return false
	}
	text := ""
	if label != nil {
		text = label(c)
	}
	m.surface.UpdateLabel(m.handles[c], text)
	return true
}

// Clear removes every materialized rect and forgets the viewport.
func (m *Manager) Clear() {
	if m == nil {
		return
	}
	m.removeAll()
	m.hasBounds = false
	m.lastBounds = grid.Bounds{}
}

// Refresh re-runs the last reconcile, if any viewport has settled yet.
func (m *Manager) Refresh(label LabelFunc) ReconcileResult {
	if m == nil || !m.hasBounds {
		return ReconcileResult{}
	}
	return m.Reconcile(m.lastBounds, label)
}

// MaterializedCount reports how many rects are alive.
func (m *Manager) MaterializedCount() int {
	if m == nil {
		return 0
	}
	return m.visible.Size()
}

// Contains reports whether a cell is currently materialized.
func (m *Manager) Contains(c grid.Cell) bool {
	return m != nil && m.visible.Has(c)
}

// LastBounds returns the bounds of the most recent settle.
func (m *Manager) LastBounds() (grid.Bounds, bool) {
	if m == nil {
		return grid.Bounds{}, false
	}
	return m.lastBounds, m.hasBounds
}

func (m *Manager) removeAll() int {
	removed := 0
	m.visible.Each(func(c grid.Cell) {
		m.surface.RemoveRect(m.handles[c])
		removed++
	})
	m.clearLocal()
	return removed
}

func (m *Manager) clearLocal() {
	m.visible = mapset.New[grid.Cell]()
	m.handles = make(map[grid.Cell]Handle)
}

func (m *Manager) allocHandle() Handle {
	m.nextHandle++
	return m.nextHandle
}

// clampRange shrinks an oversized cell range around its center so the
// cell count fits the budget, roughly preserving the aspect ratio.
func clampRange(min, max grid.Cell, budget int) (grid.Cell, grid.Cell) {
	if budget < 1 {
		budget = 1
	}
	rows := max.I - min.I + 1
	cols := max.J - min.J + 1
	total := rows * cols
	if total <= budget {
		return min, max
	}

	scale := math.Sqrt(float64(budget) / float64(total))
	newRows := int(float64(rows) * scale)
	if newRows < 1 {
		newRows = 1
	}
	if newRows > rows {
		newRows = rows
	}
	newCols := budget / newRows
	if newCols < 1 {
		newCols = 1
	}
	if newCols > cols {
		newCols = cols
	}

	centerI := min.I + rows/2
	centerJ := min.J + cols/2
	newMin := grid.Cell{I: centerI - newRows/2, J: centerJ - newCols/2}
	newMax := grid.Cell{I: newMin.I + newRows - 1, J: newMin.J + newCols - 1}
	return newMin, newMax
}
