package grid

import "fmt"

// BoundaryKind selects how neighbor reads outside the domain are resolved.
type BoundaryKind int

const (
	// Periodic wraps the coordinate modulo the extent.
	Periodic BoundaryKind = iota
	// ZeroClamp yields zero for any out-of-range read.
	ZeroClamp
	// EdgeClamp reads the nearest in-range cell.
	EdgeClamp
)

func (b BoundaryKind) String() string {
	switch b {
	case Periodic:
		return "periodic"
	case ZeroClamp:
		return "zero"
	case EdgeClamp:
		return "edge"
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// ParseBoundary converts a config string into a BoundaryKind.
func ParseBoundary(s string) (BoundaryKind, error) {
	switch s {
	case "periodic", "wrap":
		return Periodic, nil
	case "zero", "zero_clamp":
		return ZeroClamp, nil
	case "edge", "edge_clamp", "clamp":
		return EdgeClamp, nil
	}
	return 0, fmt.Errorf("%w: unknown boundary kind %q", ErrInvalidDomain, s)
}

// Extent is an inclusive index range along one dimension.
type Extent struct {
	Lo, Hi int
}

// Size returns the number of indices in the extent.
func (e Extent) Size() int { return e.Hi - e.Lo + 1 }

// Domain describes the active index region of a structured grid: one
// inclusive extent and one boundary policy per dimension. Rank is fixed for
// the lifetime of the domain.
type Domain struct {
	extents    []Extent
	boundaries []BoundaryKind
}

// New validates the extents and boundary kinds and builds a Domain.
func New(extents []Extent, boundaries []BoundaryKind) (*Domain, error) {
	if len(extents) == 0 {
		return nil, fmt.Errorf("%w: rank must be at least 1", ErrInvalidDomain)
	}
	if len(boundaries) != len(extents) {
		return nil, fmt.Errorf("%w: %d extents but %d boundary kinds",
			ErrInvalidDomain, len(extents), len(boundaries))
	}
	for d, e := range extents {
		if e.Lo > e.Hi {
			return nil, fmt.Errorf("%w: dimension %d has lo %d > hi %d",
				ErrInvalidDomain, d, e.Lo, e.Hi)
		}
	}
	dom := &Domain{
		extents:    make([]Extent, len(extents)),
		boundaries: make([]BoundaryKind, len(boundaries)),
	}
	copy(dom.extents, extents)
	copy(dom.boundaries, boundaries)
	return dom, nil
}

func (d *Domain) Rank() int { return len(d.extents) }

// Extent returns the inclusive range along dimension dim.
func (d *Domain) Extent(dim int) Extent { return d.extents[dim] }

// Boundary returns the boundary policy along dimension dim.
func (d *Domain) Boundary(dim int) BoundaryKind { return d.boundaries[dim] }

// Size returns the total number of active grid points.
func (d *Domain) Size() int {
	n := 1
	for _, e := range d.extents {
		n *= e.Size()
	}
	return n
}

// Contains reports whether c lies inside the active region.
func (d *Domain) Contains(c Coord) bool {
	for dim, v := range c {
		if v < d.extents[dim].Lo || v > d.extents[dim].Hi {
			return false
		}
	}
	return true
}

// Resolve maps a possibly out-of-range coordinate to a lookup decision.
// For in-range coordinates, and for boundary kinds that redirect to an
// in-range cell (Periodic, EdgeClamp), it writes the cell to read into dst
// and returns true. When any out-of-range dimension uses ZeroClamp it
// returns false: the read resolves to the zero value.
func (d *Domain) Resolve(c Coord, dst Coord) bool {
	for dim, v := range c {
		e := d.extents[dim]
		if v >= e.Lo && v <= e.Hi {
			dst[dim] = v
			continue
		}
		switch d.boundaries[dim] {
		case Periodic:
			n := e.Size()
			w := (v - e.Lo) % n
			if w < 0 {
				w += n
			}
			dst[dim] = e.Lo + w
		case ZeroClamp:
			return false
		case EdgeClamp:
			if v < e.Lo {
				dst[dim] = e.Lo
			} else {
				dst[dim] = e.Hi
			}
		}
	}
	return true
}

// LinearIndex maps an in-domain coordinate to its row-major position, with
// the last dimension varying fastest. This is the canonical ordering used by
// flat value slices.
func (d *Domain) LinearIndex(c Coord) int {
	idx := 0
	for dim, v := range c {
		idx = idx*d.extents[dim].Size() + (v - d.extents[dim].Lo)
	}
	return idx
}

// CoordAt maps a row-major position back to a coordinate.
func (d *Domain) CoordAt(idx int) Coord {
	c := make(Coord, d.Rank())
	for dim := d.Rank() - 1; dim >= 0; dim-- {
		n := d.extents[dim].Size()
		c[dim] = d.extents[dim].Lo + idx%n
		idx /= n
	}
	return c
}

// ForEach invokes fn for every coordinate in the domain, in linear order.
// The coordinate passed to fn is reused between calls.
func (d *Domain) ForEach(fn func(Coord)) {
	c := make(Coord, d.Rank())
	for dim := range c {
		c[dim] = d.extents[dim].Lo
	}
	for {
		fn(c)
		dim := d.Rank() - 1
		for dim >= 0 {
			c[dim]++
			if c[dim] <= d.extents[dim].Hi {
				break
			}
			c[dim] = d.extents[dim].Lo
			dim--
		}
		if dim < 0 {
			return
		}
	}
}
