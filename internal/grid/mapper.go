package grid

import "math"

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a geographic rectangle. South/West is the minimum corner,
// North/East the maximum.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Normalized swaps inverted edges so South <= North and West <= East.
func (b Bounds) Normalized() Bounds {
	if b.South > b.North {
		b.South, b.North = b.North, b.South
	}
	if b.West > b.East {
		b.West, b.East = b.East, b.West
	}
	return b
}

// Contains reports whether the point lies inside the rectangle. Points on
// the southern and western edges are inside, matching cell ownership.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.South && p.Lat < b.North && p.Lng >= b.West && p.Lng < b.East
}

// Mapper converts between geographic coordinates and lattice cells. It is a
// pure value; two mappers with equal fields partition the globe identically.
type Mapper struct {
	OriginLat float64
	OriginLng float64
	CellSize  float64
}

// NewMapper builds a mapper, substituting a sane cell size when the given
// one is not positive.
func NewMapper(origin LatLng, cellSize float64) Mapper {
	if cellSize <= 0 {
		cellSize = 1e-4
	}
	return Mapper{OriginLat: origin.Lat, OriginLng: origin.Lng, CellSize: cellSize}
}

// CellAt maps a point to the cell that owns it. Each axis floors
// independently, so points on a cell's south or west edge belong to that
// cell and negative offsets land in negative indices rather than
// truncating toward zero.
func (m Mapper) CellAt(p LatLng) Cell {
	i := int(math.Floor((p.Lat - m.OriginLat) / m.CellSize))
	j := int(math.Floor((p.Lng - m.OriginLng) / m.CellSize))
	return Cell{I: i, J: j}
}

// CellBounds returns the geographic rectangle covered by a cell.
func (m Mapper) CellBounds(c Cell) Bounds {
	south := m.OriginLat + float64(c.I)*m.CellSize
	west := m.OriginLng + float64(c.J)*m.CellSize
	return Bounds{
		South: south,
		West:  west,
		North: south + m.CellSize,
		East:  west + m.CellSize,
	}
}

// Center returns the midpoint of a cell. The midpoint is strictly interior,
// so CellAt(Center(c)) == c for every cell.
func (m Mapper) Center(c Cell) LatLng {
	b := m.CellBounds(c)
	return LatLng{
		Lat: (b.South + b.North) / 2,
		Lng: (b.West + b.East) / 2,
	}
}

// CellRange returns the inclusive cell rectangle covering the viewport.
// The SW corner cell and the NE corner cell bound the range; every point
// inside the normalized bounds maps into it.
func (m Mapper) CellRange(b Bounds) (min, max Cell) {
	b = b.Normalized()
	min = m.CellAt(LatLng{Lat: b.South, Lng: b.West})
	max = m.CellAt(LatLng{Lat: b.North, Lng: b.East})
	return min, max
}

// RangeCount reports how many cells an inclusive range spans.
func RangeCount(min, max Cell) int {
	if max.I < min.I || max.J < min.J {
		return 0
	}
	return (max.I - min.I + 1) * (max.J - min.J + 1)
}
