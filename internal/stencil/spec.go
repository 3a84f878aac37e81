package stencil

import (
	"errors"
	"fmt"

	"github.com/san-kum/gridlab/internal/grid"
)

// Stencil construction errors.
var (
	// ErrInvalidStencil indicates an empty or degenerate offset set.
	ErrInvalidStencil = errors.New("stencil: invalid offset set")
)

// Entry pairs one relative neighbor offset with its coefficient provider.
type Entry struct {
	Offset grid.Coord
	Coeff  Coefficient
}

// Spec is a non-homogeneous linear stencil: a fixed set of unique relative
// offsets, each with a coefficient that may vary by position and time step.
// A Spec is immutable after construction and safe for concurrent evaluation.
type Spec struct {
	offsets []grid.Coord
	coeffs  []Coefficient
	radius  []int
}

// New validates the entries and builds a Spec. The offset set must be
// non-empty, all offsets must share the same rank, and no offset may repeat.
// The zero offset (self-coefficient) is legal.
func New(entries []Entry) (*Spec, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no offsets", ErrInvalidStencil)
	}
	rank := len(entries[0].Offset)
	if rank == 0 {
		return nil, fmt.Errorf("%w: zero-rank offset", ErrInvalidStencil)
	}

	s := &Spec{
		offsets: make([]grid.Coord, 0, len(entries)),
		coeffs:  make([]Coefficient, 0, len(entries)),
		radius:  make([]int, rank),
	}
	for i, e := range entries {
		if len(e.Offset) != rank {
			return nil, fmt.Errorf("%w: offset %d has rank %d, want %d",
				ErrInvalidStencil, i, len(e.Offset), rank)
		}
		if e.Coeff == nil {
			return nil, fmt.Errorf("%w: offset %v has no coefficient", ErrInvalidStencil, e.Offset)
		}
		for _, prev := range s.offsets {
			if prev.Equal(e.Offset) {
				return nil, fmt.Errorf("%w: duplicate offset %v", ErrInvalidStencil, e.Offset)
			}
		}
		s.offsets = append(s.offsets, e.Offset.Clone())
		s.coeffs = append(s.coeffs, e.Coeff)
		for d, v := range e.Offset {
			if v < 0 {
				v = -v
			}
			if v > s.radius[d] {
				s.radius[d] = v
			}
		}
	}
	return s, nil
}

func (s *Spec) Rank() int { return len(s.radius) }

// Len returns the number of offsets.
func (s *Spec) Len() int { return len(s.offsets) }

// Radius returns the per-dimension maximum offset magnitude. Halos are sized
// from this.
func (s *Spec) Radius() []int {
	r := make([]int, len(s.radius))
	copy(r, s.radius)
	return r
}

// Offsets returns the offset vectors in evaluation order.
func (s *Spec) Offsets() []grid.Coord {
	out := make([]grid.Coord, len(s.offsets))
	for i, o := range s.offsets {
		out[i] = o.Clone()
	}
	return out
}

// Evaluate computes the stencil sum at pos for the given time step:
// the sum over all offsets of coefficient(pos, step) times the neighbor value
// supplied by lookup. The accumulation order is the entry order passed to
// [New], which keeps repeated runs bit-identical.
func (s *Spec) Evaluate(pos grid.Coord, step int, lookup func(grid.Coord) float64) (float64, error) {
	neighbor := make(grid.Coord, len(pos))
	sum := 0.0
	for i, off := range s.offsets {
		c, err := s.coeffs[i].At(pos, step)
		if err != nil {
			return 0, err
		}
		pos.AddInto(off, neighbor)
		sum += c * lookup(neighbor)
	}
	return sum, nil
}
