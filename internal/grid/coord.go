package grid

import (
	"fmt"
	"strings"
)

// Coord is an integer grid coordinate. The same type doubles as a relative
// offset vector; both are just rank-length integer tuples.
type Coord []int

func (c Coord) Clone() Coord {
	out := make(Coord, len(c))
	copy(out, c)
	return out
}

// Add returns c + o as a new coordinate.
func (c Coord) Add(o Coord) Coord {
	out := make(Coord, len(c))
	for i := range c {
		out[i] = c[i] + o[i]
	}
	return out
}

// AddInto writes c + o into dst, avoiding allocation on hot paths.
func (c Coord) AddInto(o, dst Coord) {
	for i := range c {
		dst[i] = c[i] + o[i]
	}
}

func (c Coord) Equal(o Coord) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	return true
}

func (c Coord) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
