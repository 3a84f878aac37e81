package plan

import (
	"errors"
	"fmt"

	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/stencil"
)

// Plan construction and integrity errors.
var (
	// ErrInvalidPlanConfig indicates a bad strategy configuration, such as a
	// non-positive tile extent or a rank mismatch.
	ErrInvalidPlanConfig = errors.New("plan: invalid strategy configuration")

	// ErrPlanIntegrity indicates a chunk graph that cannot execute: a cycle,
	// a dangling predecessor, or a step whose regions do not cover the
	// domain. Always a strategy defect, never bad user data.
	ErrPlanIntegrity = errors.New("plan: chunk graph failed integrity check")
)

// Chunk is one indivisible unit of work: a spatial sub-region evaluated at
// one time step. Preds lists the arena indices of the previous-step chunks
// whose outputs this chunk reads; step-1 chunks have no predecessors and
// read the initial buffer.
type Chunk struct {
	Region Region
	Step   int
	Preds  []int
}

// Plan is a dependency-ordered decomposition of a multi-step stencil
// computation. Chunks live in a flat arena and reference each other by
// index, so the graph has no ownership cycles and traversal state can be
// kept in parallel slices.
type Plan struct {
	domain   *grid.Domain
	spec     *stencil.Spec
	steps    int
	strategy string
	chunks   []Chunk
}

func (p *Plan) Domain() *grid.Domain   { return p.domain }
func (p *Plan) Stencil() *stencil.Spec { return p.spec }
func (p *Plan) Steps() int             { return p.steps }
func (p *Plan) Strategy() string       { return p.strategy }

// Chunks returns the chunk arena. Callers must treat it as read-only.
func (p *Plan) Chunks() []Chunk { return p.chunks }

// Strategy decomposes the domain into the spatial tiles each step is split
// into. Generate turns the partition into the full chunk graph.
type Strategy interface {
	Name() string
	Partition(d *grid.Domain, s *stencil.Spec) ([]Region, error)
}

// Generate builds and validates a plan: one chunk per (tile, step) pair,
// with predecessors computed from the stencil's radius-expanded read region
// under the domain's boundary policy. Deterministic for identical inputs.
func Generate(st Strategy, d *grid.Domain, s *stencil.Spec, steps int) (*Plan, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: negative step count %d", ErrInvalidPlanConfig, steps)
	}
	if s.Rank() != d.Rank() {
		return nil, fmt.Errorf("%w: stencil rank %d, domain rank %d",
			ErrInvalidPlanConfig, s.Rank(), d.Rank())
	}

	tiles, err := st.Partition(d, s)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		domain:   d,
		spec:     s,
		steps:    steps,
		strategy: st.Name(),
		chunks:   make([]Chunk, 0, len(tiles)*steps),
	}

	// The read set of a tile is separable: per dimension it is a union of
	// intervals (the radius expansion clamped to the domain, plus wrapped
	// intervals on periodic dimensions). A previous-step tile is a
	// predecessor iff it meets the read set in every dimension. Because the
	// radius is symmetric per dimension, this set also covers the chunks
	// that still read the cells this chunk overwrites, which is what makes
	// two-buffer rotation safe.
	reads := make([][][2]int, len(tiles))
	for i, tile := range tiles {
		reads[i] = readIntervals(d, s.Radius(), tile)
	}

	for step := 1; step <= steps; step++ {
		base := len(p.chunks) - len(tiles) // start of previous step's chunks
		for i, tile := range tiles {
			c := Chunk{Region: tile, Step: step}
			if step > 1 {
				for j, prev := range tiles {
					if meetsReadSet(prev, reads[i]) {
						c.Preds = append(c.Preds, base+j)
					}
				}
			}
			p.chunks = append(p.chunks, c)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// readIntervals computes, per dimension, the in-domain intervals a tile
// reads at the previous step after boundary resolution.
func readIntervals(d *grid.Domain, radius []int, tile Region) [][2]int {
	out := make([][2]int, d.Rank())
	for dim := 0; dim < d.Rank(); dim++ {
		e := d.Extent(dim)
		lo, hi := tile.Lo[dim]-radius[dim], tile.Hi[dim]+radius[dim]

		// Clamped core interval. EdgeClamp resolves to cells already inside
		// it, and ZeroClamp contributes nothing beyond it.
		core := [2]int{max(lo, e.Lo), min(hi, e.Hi)}

		if d.Boundary(dim) != grid.Periodic || (lo >= e.Lo && hi <= e.Hi) {
			out[dim] = core
			continue
		}
		if hi-lo+1 >= e.Size() {
			// Expansion spans the whole dimension once wrapped.
			out[dim] = [2]int{e.Lo, e.Hi}
			continue
		}
		// The wrapped image of one contiguous interval is a single circular
		// arc of the same width; an arc with lo > hi wraps past the high end.
		out[dim] = [2]int{wrap(lo, e), wrap(hi, e)}
	}
	return out
}

func wrap(v int, e grid.Extent) int {
	n := e.Size()
	w := (v - e.Lo) % n
	if w < 0 {
		w += n
	}
	return e.Lo + w
}

// meetsReadSet reports whether a tile intersects the read set in every
// dimension, treating wrapped arcs correctly.
func meetsReadSet(tile Region, reads [][2]int) bool {
	for dim := range reads {
		arc := reads[dim]
		lo, hi := tile.Lo[dim], tile.Hi[dim]
		if arc[0] <= arc[1] {
			if hi < arc[0] || lo > arc[1] {
				return false
			}
		} else {
			// Wrapped arc: [arc[0], extent.Hi] union [extent.Lo, arc[1]].
			if hi < arc[0] && lo > arc[1] {
				return false
			}
		}
	}
	return true
}

// Validate performs the topological-feasibility pass the executor requires
// before touching any buffer: predecessor indices must be in range and point
// one step back, each step's regions must tile the domain exactly, and the
// graph must be acyclic.
func (p *Plan) Validate() error {
	perStep := make(map[int]int) // step -> total points
	for i, c := range p.chunks {
		if c.Step < 1 || c.Step > p.steps {
			return fmt.Errorf("%w: chunk %d computes step %d of %d", ErrPlanIntegrity, i, c.Step, p.steps)
		}
		for d := 0; d < c.Region.Rank(); d++ {
			e := p.domain.Extent(d)
			if c.Region.Lo[d] < e.Lo || c.Region.Hi[d] > e.Hi || c.Region.Lo[d] > c.Region.Hi[d] {
				return fmt.Errorf("%w: chunk %d region %v outside domain", ErrPlanIntegrity, i, c.Region)
			}
		}
		perStep[c.Step] += c.Region.Points()
		if c.Step == 1 && len(c.Preds) != 0 {
			return fmt.Errorf("%w: step-1 chunk %d has predecessors", ErrPlanIntegrity, i)
		}
		for _, pi := range c.Preds {
			if pi < 0 || pi >= len(p.chunks) {
				return fmt.Errorf("%w: chunk %d references missing predecessor %d", ErrPlanIntegrity, i, pi)
			}
			if p.chunks[pi].Step != c.Step-1 {
				return fmt.Errorf("%w: chunk %d at step %d depends on chunk %d at step %d",
					ErrPlanIntegrity, i, c.Step, pi, p.chunks[pi].Step)
			}
		}
	}

	for step := 1; step <= p.steps; step++ {
		if perStep[step] != p.domain.Size() {
			return fmt.Errorf("%w: step %d covers %d of %d points",
				ErrPlanIntegrity, step, perStep[step], p.domain.Size())
		}
	}

	// Kahn's algorithm over the arena. Anything left unprocessed sits on a
	// cycle or behind one.
	indeg := make([]int, len(p.chunks))
	succs := make([][]int, len(p.chunks))
	for i, c := range p.chunks {
		indeg[i] = len(c.Preds)
		for _, pi := range c.Preds {
			succs[pi] = append(succs[pi], i)
		}
	}
	queue := make([]int, 0, len(p.chunks))
	for i, deg := range indeg {
		if deg == 0 {
			queue = append(queue, i)
		}
	}
	processed := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		processed++
		for _, s := range succs[i] {
			indeg[s]--
			if indeg[s] == 0 {
				queue = append(queue, s)
			}
		}
	}
	if processed != len(p.chunks) {
		return fmt.Errorf("%w: %d of %d chunks unreachable (dependency cycle)",
			ErrPlanIntegrity, len(p.chunks)-processed, len(p.chunks))
	}
	return nil
}
