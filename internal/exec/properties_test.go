package exec_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gridlab/internal/exec"
	"github.com/san-kum/gridlab/internal/field"
	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/plan"
	"github.com/san-kum/gridlab/internal/stencil"
)

func execute(st plan.Strategy, d *grid.Domain, s *stencil.Spec, steps, workers int, initial []float64) []float64 {
	p, err := plan.Generate(st, d, s, steps)
	Expect(err).NotTo(HaveOccurred())
	buf, err := field.FromValues(d, s.Radius(), initial)
	Expect(err).NotTo(HaveOccurred())
	out, err := exec.New(exec.Config{Workers: workers, ValidateValues: true}).
		Run(context.Background(), p, buf)
	Expect(err).NotTo(HaveOccurred())
	return out.Values()
}

func wavyField(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Sin(float64(i)*0.37) + 0.2*math.Cos(float64(i)*1.1)
	}
	return values
}

var _ = Describe("executor properties", func() {
	var (
		domain *grid.Domain
		kernel *stencil.Spec
	)

	BeforeEach(func() {
		var err error
		domain, err = grid.New(
			[]grid.Extent{{Lo: 0, Hi: 47}},
			[]grid.BoundaryKind{grid.Periodic},
		)
		Expect(err).NotTo(HaveOccurred())
		kernel, err = stencil.Heat(1, 0.25)
		Expect(err).NotTo(HaveOccurred())
	})

	It("produces identical results across strategies and worker counts", func() {
		initial := wavyField(domain.Size())
		reference := execute(plan.Direct(), domain, kernel, 8, 1, initial)

		for _, tile := range []int{3, 8, 16} {
			for _, workers := range []int{1, 4} {
				got := execute(plan.SpatialTiled([]int{tile}), domain, kernel, 8, workers, initial)
				for i := range reference {
					Expect(got[i]).To(BeNumerically("~", reference[i], 1e-12),
						"tile %d workers %d cell %d", tile, workers, i)
				}
			}
		}
	})

	It("conserves mass for periodic diffusion", func() {
		initial := wavyField(domain.Size())
		before := 0.0
		for _, v := range initial {
			before += v
		}

		final := execute(plan.SpatialTiled([]int{8}), domain, kernel, 30, 4, initial)
		after := 0.0
		for _, v := range final {
			after += v
		}
		Expect(after).To(BeNumerically("~", before, 1e-9))
	})

	It("holds the field fixed under the identity kernel", func() {
		identity, err := stencil.Identity(1)
		Expect(err).NotTo(HaveOccurred())

		initial := wavyField(domain.Size())
		final := execute(plan.SpatialTiled([]int{5}), domain, identity, 12, 4, initial)
		Expect(final).To(Equal(initial))
	})

	It("decays a periodic mode at the analytic rate", func() {
		// A pure Fourier mode is an eigenvector of the heat kernel with
		// eigenvalue 1 - 2*alpha*(1 - cos(2*pi*k/n)).
		n := domain.Size()
		k := 3
		initial := make([]float64, n)
		for i := range initial {
			initial[i] = math.Cos(2 * math.Pi * float64(k*i) / float64(n))
		}

		steps := 10
		final := execute(plan.Direct(), domain, kernel, steps, 1, initial)

		lambda := 1 - 2*0.25*(1-math.Cos(2*math.Pi*float64(k)/float64(n)))
		scale := math.Pow(lambda, float64(steps))
		for i := range final {
			Expect(final[i]).To(BeNumerically("~", scale*initial[i], 1e-9))
		}
	})
})
