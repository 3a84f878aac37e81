package stencil

import (
	"fmt"

	"github.com/san-kum/gridlab/internal/grid"
)

// Identity returns the stencil that copies every cell unchanged.
func Identity(rank int) (*Spec, error) {
	return New([]Entry{{Offset: make(grid.Coord, rank), Coeff: Constant(1)}})
}

// Heat returns the explicit forward-Euler heat kernel in the given rank:
// center weight 1 - 2*rank*alpha, axis neighbors alpha each, where
// alpha = k*dt/dx^2. Stable for alpha <= 1/(2*rank).
func Heat(rank int, alpha float64) (*Spec, error) {
	if rank < 1 {
		return nil, fmt.Errorf("%w: heat kernel needs rank >= 1", ErrInvalidStencil)
	}
	entries := []Entry{{
		Offset: make(grid.Coord, rank),
		Coeff:  Constant(1 - 2*float64(rank)*alpha),
	}}
	for d := 0; d < rank; d++ {
		lo := make(grid.Coord, rank)
		hi := make(grid.Coord, rank)
		lo[d], hi[d] = -1, 1
		entries = append(entries,
			Entry{Offset: lo, Coeff: Constant(alpha)},
			Entry{Offset: hi, Coeff: Constant(alpha)},
		)
	}
	return New(entries)
}

// BoxBlur returns the 3^rank-point uniform averaging kernel.
func BoxBlur(rank int) (*Spec, error) {
	if rank < 1 {
		return nil, fmt.Errorf("%w: box blur needs rank >= 1", ErrInvalidStencil)
	}
	points := 1
	for d := 0; d < rank; d++ {
		points *= 3
	}
	w := Constant(1 / float64(points))

	var entries []Entry
	off := make(grid.Coord, rank)
	for i := range off {
		off[i] = -1
	}
	for {
		entries = append(entries, Entry{Offset: off.Clone(), Coeff: w})
		d := rank - 1
		for d >= 0 {
			off[d]++
			if off[d] <= 1 {
				break
			}
			off[d] = -1
			d--
		}
		if d < 0 {
			break
		}
	}
	return New(entries)
}

// VariableHeat returns a heat kernel whose diffusivity varies by position,
// the non-homogeneous case. The alpha function must return values in
// [0, 1/(2*rank)] for stability; the center weight absorbs the remainder so
// the row sums to one everywhere.
func VariableHeat(rank int, alpha func(pos grid.Coord) float64) (*Spec, error) {
	if rank < 1 {
		return nil, fmt.Errorf("%w: heat kernel needs rank >= 1", ErrInvalidStencil)
	}
	center := Func(func(pos grid.Coord, _ int) (float64, error) {
		return 1 - 2*float64(rank)*alpha(pos), nil
	})
	side := Func(func(pos grid.Coord, _ int) (float64, error) {
		return alpha(pos), nil
	})
	entries := []Entry{{Offset: make(grid.Coord, rank), Coeff: center}}
	for d := 0; d < rank; d++ {
		lo := make(grid.Coord, rank)
		hi := make(grid.Coord, rank)
		lo[d], hi[d] = -1, 1
		entries = append(entries,
			Entry{Offset: lo, Coeff: side},
			Entry{Offset: hi, Coeff: side},
		)
	}
	return New(entries)
}
