package plan

import (
	"fmt"

	"github.com/san-kum/gridlab/internal/grid"
)

// Region is an axis-aligned box of grid coordinates, inclusive of both
// corners.
type Region struct {
	Lo, Hi grid.Coord
}

func (r Region) Rank() int { return len(r.Lo) }

// Points returns the number of coordinates in the region.
func (r Region) Points() int {
	n := 1
	for d := range r.Lo {
		n *= r.Hi[d] - r.Lo[d] + 1
	}
	return n
}

// Contains reports whether c lies inside the region.
func (r Region) Contains(c grid.Coord) bool {
	for d, v := range c {
		if v < r.Lo[d] || v > r.Hi[d] {
			return false
		}
	}
	return true
}

// Intersects reports whether two regions share at least one coordinate.
func (r Region) Intersects(other Region) bool {
	for d := range r.Lo {
		if r.Hi[d] < other.Lo[d] || r.Lo[d] > other.Hi[d] {
			return false
		}
	}
	return true
}

// ForEach invokes fn for every coordinate in the region, last dimension
// fastest. The coordinate passed to fn is reused between calls.
func (r Region) ForEach(fn func(grid.Coord)) {
	c := r.Lo.Clone()
	for {
		fn(c)
		d := r.Rank() - 1
		for d >= 0 {
			c[d]++
			if c[d] <= r.Hi[d] {
				break
			}
			c[d] = r.Lo[d]
			d--
		}
		if d < 0 {
			return
		}
	}
}

func (r Region) String() string {
	return fmt.Sprintf("[%v..%v]", r.Lo, r.Hi)
}
