package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell identifies one square of the world lattice by its integer row and
// column offsets from the origin. The zero value is the origin cell.
type Cell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Key renders the canonical "i,j" encoding used for wire payloads and
// persisted documents. Map keys inside the process stay the struct itself.
func (c Cell) Key() string {
	return fmt.Sprintf("%d,%d", c.I, c.J)
}

// ParseKey reverses Key. It rejects anything that does not round-trip.
func ParseKey(key string) (Cell, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("malformed cell key %q", key)
	}
	i, err := strconv.Atoi(parts[0])
	if err != nil {
		return Cell{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	j, err := strconv.Atoi(parts[1])
	if err != nil {
		return Cell{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	return Cell{I: i, J: j}, nil
}

// Offset returns the cell displaced by the given deltas.
func (c Cell) Offset(di, dj int) Cell {
	return Cell{I: c.I + di, J: c.J + dj}
}

// Chebyshev measures king-move distance between two cells. Diagonal
// neighbors count as distance 1.
func Chebyshev(a, b Cell) int {
	di := absInt(a.I - b.I)
	dj := absInt(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
