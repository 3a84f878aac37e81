package stencil

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gridlab/internal/grid"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"zero rank offset", []Entry{{Offset: grid.Coord{}, Coeff: Constant(1)}}},
		{"rank mismatch", []Entry{
			{Offset: grid.Coord{0}, Coeff: Constant(1)},
			{Offset: grid.Coord{0, 1}, Coeff: Constant(1)},
		}},
		{"nil coefficient", []Entry{{Offset: grid.Coord{0}}}},
		{"duplicate offset", []Entry{
			{Offset: grid.Coord{1}, Coeff: Constant(0.5)},
			{Offset: grid.Coord{1}, Coeff: Constant(0.5)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			if !errors.Is(err, ErrInvalidStencil) {
				t.Errorf("expected ErrInvalidStencil, got %v", err)
			}
		})
	}
}

func TestRadius(t *testing.T) {
	s, err := New([]Entry{
		{Offset: grid.Coord{-2, 0}, Coeff: Constant(1)},
		{Offset: grid.Coord{0, 3}, Coeff: Constant(1)},
		{Offset: grid.Coord{1, -1}, Coeff: Constant(1)},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	r := s.Radius()
	if r[0] != 2 || r[1] != 3 {
		t.Errorf("radius = %v, want [2 3]", r)
	}
}

func TestEvaluateConstant(t *testing.T) {
	s, err := New([]Entry{
		{Offset: grid.Coord{-1}, Coeff: Constant(0.25)},
		{Offset: grid.Coord{0}, Coeff: Constant(0.5)},
		{Offset: grid.Coord{1}, Coeff: Constant(0.25)},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	// Field value equals the coordinate, so the sum is position dependent.
	lookup := func(c grid.Coord) float64 { return float64(c[0]) }

	got, err := s.Evaluate(grid.Coord{4}, 0, lookup)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	want := 0.25*3 + 0.5*4 + 0.25*5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("evaluate = %v, want %v", got, want)
	}
}

func TestEvaluateTimeDependent(t *testing.T) {
	var seenStep int
	s, err := New([]Entry{
		{Offset: grid.Coord{0}, Coeff: Func(func(pos grid.Coord, step int) (float64, error) {
			seenStep = step
			return float64(step), nil
		})},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	got, err := s.Evaluate(grid.Coord{0}, 3, func(grid.Coord) float64 { return 2 })
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if seenStep != 3 {
		t.Errorf("coefficient saw step %d, want 3", seenStep)
	}
	if got != 6 {
		t.Errorf("evaluate = %v, want 6", got)
	}
}

func TestEvaluateCoefficientError(t *testing.T) {
	wantErr := errors.New("coefficient blew up")
	s, err := New([]Entry{
		{Offset: grid.Coord{0}, Coeff: Func(func(grid.Coord, int) (float64, error) {
			return 0, wantErr
		})},
	})
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	_, err = s.Evaluate(grid.Coord{0}, 0, func(grid.Coord) float64 { return 1 })
	if !errors.Is(err, wantErr) {
		t.Errorf("expected coefficient error, got %v", err)
	}
}

func TestHeatKernelSumsToOne(t *testing.T) {
	for rank := 1; rank <= 3; rank++ {
		s, err := Heat(rank, 0.2)
		if err != nil {
			t.Fatalf("heat rank %d failed: %v", rank, err)
		}
		sum, err := s.Evaluate(make(grid.Coord, rank), 0, func(grid.Coord) float64 { return 1 })
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("rank %d heat kernel sums to %v, want 1", rank, sum)
		}
	}
}

func TestBoxBlurKernelSize(t *testing.T) {
	s, err := BoxBlur(2)
	if err != nil {
		t.Fatalf("blur failed: %v", err)
	}
	if s.Len() != 9 {
		t.Errorf("2-D blur has %d offsets, want 9", s.Len())
	}
	sum, err := s.Evaluate(grid.Coord{0, 0}, 0, func(grid.Coord) float64 { return 1 })
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("blur kernel sums to %v, want 1", sum)
	}
}

func TestVariableHeat(t *testing.T) {
	s, err := VariableHeat(1, func(pos grid.Coord) float64 {
		return 0.1 * float64(pos[0]+1)
	})
	if err != nil {
		t.Fatalf("variable heat failed: %v", err)
	}

	// Uniform field stays uniform: the kernel row sums to one at every
	// position regardless of the local alpha.
	for x := 0; x < 5; x++ {
		sum, err := s.Evaluate(grid.Coord{x}, 0, func(grid.Coord) float64 { return 3 })
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if math.Abs(sum-3) > 1e-12 {
			t.Errorf("at x=%d sum = %v, want 3", x, sum)
		}
	}
}
