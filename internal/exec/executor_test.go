package exec

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gridlab/internal/field"
	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/plan"
	"github.com/san-kum/gridlab/internal/stencil"
)

func testDomain(t *testing.T, size int, b grid.BoundaryKind) *grid.Domain {
	t.Helper()
	d, err := grid.New([]grid.Extent{{Lo: 0, Hi: size - 1}}, []grid.BoundaryKind{b})
	if err != nil {
		t.Fatalf("domain failed: %v", err)
	}
	return d
}

func averagingKernel(t *testing.T) *stencil.Spec {
	t.Helper()
	s, err := stencil.New([]stencil.Entry{
		{Offset: grid.Coord{-1}, Coeff: stencil.Constant(0.25)},
		{Offset: grid.Coord{0}, Coeff: stencil.Constant(0.5)},
		{Offset: grid.Coord{1}, Coeff: stencil.Constant(0.25)},
	})
	if err != nil {
		t.Fatalf("stencil failed: %v", err)
	}
	return s
}

func runPlan(t *testing.T, st plan.Strategy, d *grid.Domain, s *stencil.Spec, steps, workers int, initial []float64) []float64 {
	t.Helper()
	p, err := plan.Generate(st, d, s, steps)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	buf, err := field.FromValues(d, s.Radius(), initial)
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}
	out, err := New(Config{Workers: workers, ValidateValues: true}).Run(context.Background(), p, buf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out.Values()
}

func TestImpulseZeroClamp(t *testing.T) {
	d := testDomain(t, 5, grid.ZeroClamp)
	got := runPlan(t, plan.Direct(), d, averagingKernel(t), 1, 1,
		[]float64{0, 0, 1, 0, 0})

	want := []float64{0, 0.25, 0.5, 0.25, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestImpulsePeriodic(t *testing.T) {
	d := testDomain(t, 5, grid.Periodic)
	got := runPlan(t, plan.Direct(), d, averagingKernel(t), 1, 1,
		[]float64{1, 0, 0, 0, 0})

	want := []float64{0.5, 0.25, 0, 0, 0.25}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestImpulseEdgeClamp(t *testing.T) {
	d := testDomain(t, 5, grid.EdgeClamp)
	got := runPlan(t, plan.Direct(), d, averagingKernel(t), 1, 1,
		[]float64{1, 0, 0, 0, 0})

	// The left neighbor of cell 0 clamps onto cell 0 itself.
	want := []float64{0.75, 0.25, 0, 0, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestZeroFieldStaysZero(t *testing.T) {
	// A kernel whose weights sum to zero must keep an identically zero field
	// zero under every boundary policy.
	s, err := stencil.New([]stencil.Entry{
		{Offset: grid.Coord{-1}, Coeff: stencil.Constant(1)},
		{Offset: grid.Coord{0}, Coeff: stencil.Constant(-2)},
		{Offset: grid.Coord{1}, Coeff: stencil.Constant(1)},
	})
	if err != nil {
		t.Fatalf("stencil failed: %v", err)
	}

	for _, b := range []grid.BoundaryKind{grid.Periodic, grid.ZeroClamp, grid.EdgeClamp} {
		t.Run(b.String(), func(t *testing.T) {
			d := testDomain(t, 9, b)
			got := runPlan(t, plan.SpatialTiled([]int{4}), d, s, 5, 4, make([]float64, 9))
			for i, v := range got {
				if v != 0 {
					t.Errorf("cell %d = %v after 5 steps, want 0", i, v)
				}
			}
		})
	}
}

func TestStepAdditivity(t *testing.T) {
	d := testDomain(t, 16, grid.Periodic)
	s := averagingKernel(t)
	initial := make([]float64, 16)
	initial[5] = 1

	full := runPlan(t, plan.Direct(), d, s, 4, 1, initial)

	split := initial
	split = runPlan(t, plan.Direct(), d, s, 1, 1, split)
	split = runPlan(t, plan.Direct(), d, s, 3, 1, split)

	for i := range full {
		if math.Abs(full[i]-split[i]) > 1e-12 {
			t.Errorf("cell %d: 4 steps = %v, 1+3 steps = %v", i, full[i], split[i])
		}
	}
}

func TestTileSizeInvariance(t *testing.T) {
	d := testDomain(t, 23, grid.Periodic)
	s := averagingKernel(t)
	initial := make([]float64, 23)
	initial[3], initial[17] = 1, -0.5

	reference := runPlan(t, plan.Direct(), d, s, 6, 1, initial)

	for _, tile := range []int{1, 4, 7, 23, 40} {
		got := runPlan(t, plan.SpatialTiled([]int{tile}), d, s, 6, 4, initial)
		for i := range reference {
			if math.Abs(got[i]-reference[i]) > 1e-12 {
				t.Errorf("tile %d cell %d = %v, direct = %v", tile, i, got[i], reference[i])
			}
		}
	}
}

func TestStrategyEquivalence2D(t *testing.T) {
	d, err := grid.New(
		[]grid.Extent{{Lo: 0, Hi: 11}, {Lo: 0, Hi: 9}},
		[]grid.BoundaryKind{grid.Periodic, grid.EdgeClamp},
	)
	if err != nil {
		t.Fatalf("domain failed: %v", err)
	}
	s, err := stencil.Heat(2, 0.15)
	if err != nil {
		t.Fatalf("stencil failed: %v", err)
	}

	initial := make([]float64, d.Size())
	for i := range initial {
		initial[i] = math.Sin(float64(i) * 0.3)
	}

	reference := runPlan(t, plan.Direct(), d, s, 5, 1, initial)
	tiled := runPlan(t, plan.SpatialTiled([]int{5, 4}), d, s, 5, 8, initial)

	for i := range reference {
		if math.Abs(tiled[i]-reference[i]) > 1e-12 {
			t.Errorf("cell %d: tiled = %v, direct = %v", i, tiled[i], reference[i])
		}
	}
}

func TestZeroStepsReturnsInitial(t *testing.T) {
	d := testDomain(t, 5, grid.ZeroClamp)
	got := runPlan(t, plan.Direct(), d, averagingKernel(t), 0, 2,
		[]float64{1, 2, 3, 4, 5})
	for i, want := range []float64{1, 2, 3, 4, 5} {
		if got[i] != want {
			t.Errorf("cell %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestEvaluationErrorIdentifiesChunk(t *testing.T) {
	d := testDomain(t, 8, grid.ZeroClamp)
	s, err := stencil.New([]stencil.Entry{
		{Offset: grid.Coord{0}, Coeff: stencil.Func(func(pos grid.Coord, step int) (float64, error) {
			if pos[0] == 5 && step == 1 {
				return 0, errors.New("singular coefficient")
			}
			return 1, nil
		})},
	})
	if err != nil {
		t.Fatalf("stencil failed: %v", err)
	}

	p, err := plan.Generate(plan.SpatialTiled([]int{4}), d, s, 3)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	buf, err := field.FromValues(d, s.Radius(), make([]float64, 8))
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}

	_, err = New(DefaultConfig()).Run(context.Background(), p, buf)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	// Coefficients see the source step, so the failure surfaces while
	// computing step 2 in the tile holding cell 5.
	if evalErr.Step != 2 {
		t.Errorf("failing step = %d, want 2", evalErr.Step)
	}
	if !evalErr.Region.Contains(grid.Coord{5}) {
		t.Errorf("failing region %v does not contain cell 5", evalErr.Region)
	}
}

func TestNonFiniteValueFails(t *testing.T) {
	d := testDomain(t, 4, grid.ZeroClamp)
	s, err := stencil.New([]stencil.Entry{
		{Offset: grid.Coord{0}, Coeff: stencil.Constant(math.MaxFloat64)},
	})
	if err != nil {
		t.Fatalf("stencil failed: %v", err)
	}

	p, err := plan.Generate(plan.Direct(), d, s, 3)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	buf, err := field.FromValues(d, s.Radius(), []float64{2, 2, 2, 2})
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}

	_, err = New(DefaultConfig()).Run(context.Background(), p, buf)
	if !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestBufferMismatch(t *testing.T) {
	d := testDomain(t, 8, grid.ZeroClamp)
	s := averagingKernel(t)
	p, err := plan.Generate(plan.Direct(), d, s, 1)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// Halo smaller than the stencil radius.
	thin, err := field.FromValues(d, []int{0}, make([]float64, 8))
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}
	if _, err := New(DefaultConfig()).Run(context.Background(), p, thin); !errors.Is(err, ErrBufferMismatch) {
		t.Errorf("expected ErrBufferMismatch, got %v", err)
	}

	other := testDomain(t, 9, grid.ZeroClamp)
	wrong, err := field.FromValues(other, s.Radius(), make([]float64, 9))
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}
	if _, err := New(DefaultConfig()).Run(context.Background(), p, wrong); !errors.Is(err, ErrBufferMismatch) {
		t.Errorf("expected ErrBufferMismatch, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	d := testDomain(t, 64, grid.Periodic)
	s := averagingKernel(t)
	p, err := plan.Generate(plan.SpatialTiled([]int{8}), d, s, 50)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	buf, err := field.FromValues(d, s.Radius(), make([]float64, 64))
	if err != nil {
		t.Fatalf("buffer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Config{Workers: 4, ValidateValues: true}).Run(ctx, p, buf); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
