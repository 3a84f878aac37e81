package exec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/san-kum/gridlab/internal/field"
	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/plan"
)

// Config controls executor behavior.
type Config struct {
	// Workers is the fixed worker pool size. Zero means GOMAXPROCS.
	Workers int
	// ValidateValues enables the NaN/Inf check on every written cell.
	ValidateValues bool
}

func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		ValidateValues: true,
	}
}

// Executor walks a plan's chunk graph with a fixed worker pool, rotating a
// pair of field buffers between steps. It performs no per-cell locking:
// same-step chunks may write the same destination buffer concurrently
// because plan strategies guarantee their regions are disjoint.
type Executor struct {
	workers  int
	validate bool
	logger   *slog.Logger
}

func New(cfg Config) *Executor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Executor{
		workers:  workers,
		validate: cfg.ValidateValues,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger installs a logger for dispatch diagnostics.
func (e *Executor) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// node is the runtime companion of a chunk: an atomic predecessor counter
// plus a once-guard so each chunk reaches exactly one terminal state
// (evaluated or skipped) no matter how the run ends.
type node struct {
	idx        int
	chunk      plan.Chunk
	depCount   atomic.Int32
	dependents []int
	once       sync.Once
}

// Run executes the plan against the initial buffer and returns the buffer
// holding the final step. The executor takes ownership of the initial
// buffer for the duration of the run; callers must not alias it.
//
// A chunk is dispatched only after every predecessor's completion has been
// observed through its atomic counter, which gives the happens-before edge
// that makes predecessor writes visible. On the first evaluation failure
// dispatch stops, in-flight chunks drain, and the error is returned with
// the failing chunk's identity; buffer contents are then undefined.
func (e *Executor) Run(ctx context.Context, p *plan.Plan, initial *field.Buffer) (*field.Buffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkBuffer(p, initial); err != nil {
		return nil, err
	}
	if p.Steps() == 0 || len(p.Chunks()) == 0 {
		return initial, nil
	}

	next, err := field.New(initial.Domain(), initial.Radius())
	if err != nil {
		return nil, err
	}
	// Buffer for time step t is buffers[t%2]; the initial state is step 0.
	buffers := [2]*field.Buffer{initial, next}

	chunks := p.Chunks()
	nodes := make([]*node, len(chunks))
	for i, c := range chunks {
		n := &node{idx: i, chunk: c}
		n.depCount.Store(int32(len(c.Preds)))
		nodes[i] = n
	}
	for i, c := range chunks {
		for _, pi := range c.Preds {
			nodes[pi].dependents = append(nodes[pi].dependents, i)
		}
	}

	ready := make(chan *node, len(nodes))
	for _, n := range nodes {
		if n.depCount.Load() == 0 {
			ready <- n
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(len(nodes))

	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		cancel()
	}

	var skip func(n *node)
	skip = func(n *node) {
		n.once.Do(func() {
			wg.Done()
			for _, di := range n.dependents {
				skip(nodes[di])
			}
		})
	}

	e.logger.Debug("starting stencil run",
		"strategy", p.Strategy(), "steps", p.Steps(), "chunks", len(nodes), "workers", e.workers)

	for w := 0; w < e.workers; w++ {
		go func() {
			for n := range ready {
				n.once.Do(func() {
					defer wg.Done()

					if runCtx.Err() != nil {
						for _, di := range n.dependents {
							skip(nodes[di])
						}
						return
					}

					src := buffers[(n.chunk.Step-1)%2]
					dst := buffers[n.chunk.Step%2]
					if err := e.evalChunk(p, n.chunk, src, dst); err != nil {
						e.logger.Debug("chunk failed", "region", n.chunk.Region.String(),
							"step", n.chunk.Step, "error", err)
						fail(err)
						for _, di := range n.dependents {
							skip(nodes[di])
						}
						return
					}

					for _, di := range n.dependents {
						if nodes[di].depCount.Add(-1) == 0 {
							ready <- nodes[di]
						}
					}
				})
			}
		}()
	}

	wg.Wait()
	close(ready)

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("stencil run complete", "steps", p.Steps())
	return buffers[p.Steps()%2], nil
}

// evalChunk evaluates every point of the chunk's region against the source
// buffer, writing results to the destination buffer. Coefficients see the
// source time step; neighbor reads outside the domain resolve through the
// boundary policy.
func (e *Executor) evalChunk(p *plan.Plan, c plan.Chunk, src, dst *field.Buffer) error {
	spec := p.Stencil()
	dom := p.Domain()
	resolved := make(grid.Coord, dom.Rank())

	lookup := func(nb grid.Coord) float64 {
		if dom.Contains(nb) {
			return src.At(nb)
		}
		if dom.Resolve(nb, resolved) {
			return src.At(resolved)
		}
		return 0
	}

	var evalErr error
	c.Region.ForEach(func(pos grid.Coord) {
		if evalErr != nil {
			return
		}
		v, err := spec.Evaluate(pos, c.Step-1, lookup)
		if err != nil {
			evalErr = err
			return
		}
		if e.validate && (math.IsNaN(v) || math.IsInf(v, 0)) {
			evalErr = fmt.Errorf("%w at %v", ErrNonFinite, pos)
			return
		}
		dst.Set(pos, v)
	})
	if evalErr != nil {
		return &EvaluationError{Region: c.Region, Step: c.Step, Wrapped: evalErr}
	}
	return nil
}

func checkBuffer(p *plan.Plan, b *field.Buffer) error {
	d := b.Domain()
	if d.Rank() != p.Domain().Rank() {
		return fmt.Errorf("%w: buffer rank %d, plan rank %d", ErrBufferMismatch, d.Rank(), p.Domain().Rank())
	}
	for dim := 0; dim < d.Rank(); dim++ {
		if d.Extent(dim) != p.Domain().Extent(dim) {
			return fmt.Errorf("%w: extents differ on dimension %d", ErrBufferMismatch, dim)
		}
	}
	radius := b.Radius()
	for dim, r := range p.Stencil().Radius() {
		if radius[dim] < r {
			return fmt.Errorf("%w: halo %d on dimension %d, stencil radius %d",
				ErrBufferMismatch, radius[dim], dim, r)
		}
	}
	return nil
}
