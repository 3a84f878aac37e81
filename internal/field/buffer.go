// Package field provides dense, halo-padded storage for one time slice of a
// grid field. Buffers are addressed with the same logical coordinates as the
// domain; halo cells are reachable at indices up to the stencil radius beyond
// the extents.
package field

import (
	"fmt"

	"github.com/san-kum/gridlab/internal/grid"
)

// Buffer is strided storage over the domain extents plus a 2*radius halo per
// dimension. The executor owns a pair of buffers per run and rotates them
// between steps; nothing is reallocated after construction.
type Buffer struct {
	domain  *grid.Domain
	radius  []int
	strides []int
	data    []float64
}

// New allocates a zeroed buffer for the domain with the given per-dimension
// halo radius.
func New(d *grid.Domain, radius []int) (*Buffer, error) {
	if len(radius) != d.Rank() {
		return nil, fmt.Errorf("%w: radius rank %d, domain rank %d",
			grid.ErrRankMismatch, len(radius), d.Rank())
	}
	b := &Buffer{
		domain:  d,
		radius:  make([]int, d.Rank()),
		strides: make([]int, d.Rank()),
	}
	copy(b.radius, radius)

	size := 1
	for dim := d.Rank() - 1; dim >= 0; dim-- {
		b.strides[dim] = size
		size *= d.Extent(dim).Size() + 2*radius[dim]
	}
	b.data = make([]float64, size)
	return b, nil
}

// FromValues allocates a buffer and loads the active region from a flat
// slice in domain linear order. Halo cells start at zero.
func FromValues(d *grid.Domain, radius []int, values []float64) (*Buffer, error) {
	if len(values) != d.Size() {
		return nil, fmt.Errorf("field: got %d values for a domain of %d points",
			len(values), d.Size())
	}
	b, err := New(d, radius)
	if err != nil {
		return nil, err
	}
	i := 0
	d.ForEach(func(c grid.Coord) {
		b.Set(c, values[i])
		i++
	})
	return b, nil
}

func (b *Buffer) Domain() *grid.Domain { return b.domain }

// Radius returns the halo size per dimension.
func (b *Buffer) Radius() []int {
	r := make([]int, len(b.radius))
	copy(r, b.radius)
	return r
}

func (b *Buffer) index(c grid.Coord) int {
	idx := 0
	for dim, v := range c {
		idx += (v - b.domain.Extent(dim).Lo + b.radius[dim]) * b.strides[dim]
	}
	return idx
}

// At reads the cell at a logical coordinate. Coordinates up to the halo
// radius outside the domain are valid.
func (b *Buffer) At(c grid.Coord) float64 { return b.data[b.index(c)] }

// Set writes the cell at a logical coordinate.
func (b *Buffer) Set(c grid.Coord, v float64) { b.data[b.index(c)] = v }

// Fill sets every cell, halo included.
func (b *Buffer) Fill(v float64) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Values returns the active region as a flat slice in domain linear order.
func (b *Buffer) Values() []float64 {
	out := make([]float64, 0, b.domain.Size())
	b.domain.ForEach(func(c grid.Coord) {
		out = append(out, b.At(c))
	})
	return out
}

// CopyFrom copies another buffer's full contents. Domains and radii must
// match in shape.
func (b *Buffer) CopyFrom(other *Buffer) error {
	if len(other.data) != len(b.data) {
		return fmt.Errorf("field: buffer shapes differ (%d cells vs %d)", len(other.data), len(b.data))
	}
	copy(b.data, other.data)
	return nil
}
