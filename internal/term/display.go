// Package term renders the world in a terminal. It is the local
// counterpart of the browser map: the session drives a Display through
// the same rendering-surface contract it uses for websocket clients,
// and a small event loop turns key presses and mouse clicks back into
// session stimuli.
package term

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"merge-and-wander/server/internal/grid"
	"merge-and-wander/server/internal/view"
)

// One world cell occupies tileWidth x tileHeight characters. Both are
// odd so a cell center projects onto a single character.
const (
	tileWidth  = 7
	tileHeight = 3
)

// statusRows is reserved at the bottom of the screen for the status
// line and the key help line.
const statusRows = 2

const (
	emptyRune  = '.'
	markerRune = '@'
)

var (
	styleEmpty  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleToken  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleMarker = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleStatus = tcell.StyleDefault.Reverse(true)
	styleHelp   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// rect is one materialized visual: cell-aligned geographic bounds plus
// the label bound to it.
type rect struct {
	bounds grid.Bounds
	label  string
}

// Display implements the rendering surface on a tcell screen. Surface
// calls only mutate a retained model under the lock; Draw projects the
// model onto the screen from the event loop, so the session can call in
// from any stimulus without touching terminal state.
type Display struct {
	screen tcell.Screen
	cell   float64

	mu     sync.Mutex
	rects  map[view.Handle]rect
	camera grid.LatLng
	marker grid.LatLng
	status string
	moved  bool
}

// NewDisplay wires a surface over an initialized screen. cellSize is
// the world's cell edge in degrees.
func NewDisplay(screen tcell.Screen, cellSize float64) *Display {
	return &Display{
		screen: screen,
		cell:   cellSize,
		rects:  make(map[view.Handle]rect),
		moved:  true,
	}
}

var _ view.Surface = (*Display)(nil)

// RenderRect materializes a cell rectangle.
func (d *Display) RenderRect(h view.Handle, b grid.Bounds, label string) {
	d.mu.Lock()
	d.rects[h] = rect{bounds: b.Normalized(), label: label}
	d.mu.Unlock()
}

// UpdateLabel rebinds the label of an existing rect.
func (d *Display) UpdateLabel(h view.Handle, label string) {
	d.mu.Lock()
	if r, ok := d.rects[h]; ok {
		r.label = label
		d.rects[h] = r
	}
	d.mu.Unlock()
}

// RemoveRect drops a rect from the retained model.
func (d *Display) RemoveRect(h view.Handle) {
	d.mu.Lock()
	delete(d.rects, h)
	d.mu.Unlock()
}

// PanTo recenters the camera on a point.
func (d *Display) PanTo(p grid.LatLng) {
	d.mu.Lock()
	if p != d.camera {
		d.camera = p
		d.moved = true
	}
	d.mu.Unlock()
}

// MoveMarker relocates the player marker.
func (d *Display) MoveMarker(p grid.LatLng) {
	d.mu.Lock()
	d.marker = p
	d.mu.Unlock()
}

// SetStatus replaces the status line.
func (d *Display) SetStatus(text string) {
	d.mu.Lock()
	d.status = text
	d.mu.Unlock()
}

// Invalidate marks the viewport dirty so the next Viewport call reports
// a change. The event loop calls it on terminal resize.
func (d *Display) Invalidate() {
	d.mu.Lock()
	d.moved = true
	d.mu.Unlock()
}

// Viewport reports the geographic bounds the grid area covers and
// whether they changed since the previous call. The event loop feeds a
// change back into the session as a settled viewport.
func (d *Display) Viewport() (grid.Bounds, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	width, gridH := d.geometry()
	latSpan := float64(gridH) / tileHeight * d.cell
	lngSpan := float64(width) / tileWidth * d.cell
	b := grid.Bounds{
		South: d.camera.Lat - latSpan/2,
		West:  d.camera.Lng - lngSpan/2,
		North: d.camera.Lat + latSpan/2,
		East:  d.camera.Lng + lngSpan/2,
	}
	changed := d.moved
	d.moved = false
	return b, changed
}

// PointAt maps a character cell back to the geographic point under its
// middle, for resolving mouse clicks. ok is false outside the grid
// area.
func (d *Display) PointAt(x, y int) (grid.LatLng, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	width, gridH := d.geometry()
	if x < 0 || x >= width || y < 0 || y >= gridH {
		return grid.LatLng{}, false
	}
	cx, cy := width/2, gridH/2
	return grid.LatLng{
		Lat: d.camera.Lat + float64(cy-y)*d.cell/tileHeight,
		Lng: d.camera.Lng + float64(x-cx)*d.cell/tileWidth,
	}, true
}

// geometry returns the usable width and grid height in characters,
// never smaller than one tile.
func (d *Display) geometry() (int, int) {
	width, height := d.screen.Size()
	gridH := height - statusRows
	if width < tileWidth {
		width = tileWidth
	}
	if gridH < tileHeight {
		gridH = tileHeight
	}
	return width, gridH
}

// Draw paints the retained model: rects first, then the player marker,
// then the status and help lines.
func (d *Display) Draw() {
	d.mu.Lock()
	rects := make([]rect, 0, len(d.rects))
	for _, r := range d.rects {
		rects = append(rects, r)
	}
	camera, marker, status := d.camera, d.marker, d.status
	d.mu.Unlock()

	width, height := d.screen.Size()
	gridH := height - statusRows
	p := projection{cell: d.cell, camera: camera, cx: width / 2, cy: gridH / 2}

	d.screen.Clear()
	for _, r := range rects {
		d.drawRect(p, r, width, gridH)
	}
	d.drawMarker(p, marker, width, gridH)
	drawLine(d.screen, height-2, width, status, styleStatus)
	drawLine(d.screen, height-1, width, helpLine, styleHelp)
	d.screen.Show()
}

func (d *Display) drawRect(p projection, r rect, width, gridH int) {
	x0, x1 := p.edgeX(r.bounds.West), p.edgeX(r.bounds.East)
	y0, y1 := p.edgeY(r.bounds.North), p.edgeY(r.bounds.South)
	if x1 <= 0 || x0 >= width || y1 <= 0 || y0 >= gridH {
		return
	}
	if r.label == "" {
		d.setClipped((x0+x1)/2, (y0+y1)/2, emptyRune, styleEmpty, width, gridH)
		return
	}
	label := []rune(r.label)
	if len(label) > tileWidth {
		label = label[:tileWidth]
	}
	x := (x0 + x1 - len(label)) / 2
	y := (y0 + y1) / 2
	for i, ch := range label {
		d.setClipped(x+i, y, ch, styleToken, width, gridH)
	}
}

// drawMarker overlays the player position. When the player stands on a
// labeled cell the digit under the marker stays visible, reversed.
func (d *Display) drawMarker(p projection, marker grid.LatLng, width, gridH int) {
	x, y := p.pointX(marker.Lng), p.pointY(marker.Lat)
	if x < 0 || x >= width || y < 0 || y >= gridH {
		return
	}
	ch, _, _, _ := d.screen.GetContent(x, y)
	if ch == ' ' || ch == emptyRune {
		ch = markerRune
	}
	d.screen.SetContent(x, y, ch, nil, styleMarker)
}

// setClipped writes one character, dropping anything outside the grid
// area so tiles never bleed into the status lines.
func (d *Display) setClipped(x, y int, ch rune, style tcell.Style, width, gridH int) {
	if x < 0 || x >= width || y < 0 || y >= gridH {
		return
	}
	d.screen.SetContent(x, y, ch, nil, style)
}

// drawLine writes one full-width row, truncating or padding the text.
func drawLine(s tcell.Screen, y, width int, text string, style tcell.Style) {
	runes := []rune(text)
	for x := 0; x < width; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		s.SetContent(x, y, ch, nil, style)
	}
}

// projection freezes the camera and screen geometry for one frame. The
// camera point sits at the middle of the center character, so with odd
// tile dimensions cell edges land on character boundaries.
type projection struct {
	cell   float64
	camera grid.LatLng
	cx, cy int
}

// edgeX projects a longitude boundary onto a column edge.
func (p projection) edgeX(lng float64) int {
	return int(math.Round(float64(p.cx) + 0.5 + (lng-p.camera.Lng)/p.cell*tileWidth))
}

// edgeY projects a latitude boundary onto a row edge. North is up, so
// larger latitudes land on smaller rows.
func (p projection) edgeY(lat float64) int {
	return int(math.Round(float64(p.cy) + 0.5 - (lat-p.camera.Lat)/p.cell*tileHeight))
}

// pointX projects a point onto the column containing it.
func (p projection) pointX(lng float64) int {
	return int(math.Floor(float64(p.cx) + 0.5 + (lng-p.camera.Lng)/p.cell*tileWidth))
}

// pointY projects a point onto the row containing it.
func (p projection) pointY(lat float64) int {
	return int(math.Floor(float64(p.cy) + 0.5 - (lat-p.camera.Lat)/p.cell*tileHeight))
}
