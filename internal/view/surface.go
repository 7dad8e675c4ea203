package view

import "merge-and-wander/server/internal/grid"

// Handle identifies one materialized rectangle on a surface. Handles are
// allocated by the manager and stay opaque to it; surfaces key whatever
// they draw by them.
type Handle int64

// Surface is the one-way drawing contract a frontend implements. The
// engine pushes geometry and text through it and never learns how they
// are rendered. Input travels the other way, outside this interface, as
// plain cell and viewport coordinates.
type Surface interface {
	// RenderRect materializes a cell rectangle, optionally labeled.
	// An empty label means an unlabeled rect.
	RenderRect(h Handle, b grid.Bounds, label string)
	// UpdateLabel rebinds the label of an existing rect.
	UpdateLabel(h Handle, label string)
	// RemoveRect destroys a rect. Destroying visuals never touches
	// logical state.
	RemoveRect(h Handle)
	// PanTo recenters the viewport on a point.
	PanTo(p grid.LatLng)
	// MoveMarker relocates the player marker.
	MoveMarker(p grid.LatLng)
	// SetStatus replaces the status line.
	SetStatus(text string)
}

// NopSurface discards everything. It stands in before a frontend attaches
// and in tests that do not care about rendering.
type NopSurface struct{}

var _ Surface = NopSurface{}

func (NopSurface) RenderRect(Handle, grid.Bounds, string) {}
func (NopSurface) UpdateLabel(Handle, string)             {}
func (NopSurface) RemoveRect(Handle)                      {}
func (NopSurface) PanTo(grid.LatLng)                      {}
func (NopSurface) MoveMarker(grid.LatLng)                 {}
func (NopSurface) SetStatus(string)                       {}
