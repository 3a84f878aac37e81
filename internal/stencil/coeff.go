package stencil

import "github.com/san-kum/gridlab/internal/grid"

// Coefficient supplies the weight of one stencil offset. Implementations
// must be pure: the value may depend only on the grid position and the time
// step, never on mutable shared state.
type Coefficient interface {
	At(pos grid.Coord, step int) (float64, error)
}

// Constant is a position- and time-independent coefficient, the homogeneous
// case.
type Constant float64

func (c Constant) At(grid.Coord, int) (float64, error) { return float64(c), nil }

// Func adapts a plain function to a Coefficient. Use it for non-homogeneous
// weights that vary by position or step.
type Func func(pos grid.Coord, step int) (float64, error)

func (f Func) At(pos grid.Coord, step int) (float64, error) { return f(pos, step) }
