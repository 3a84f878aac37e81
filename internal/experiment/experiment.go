// Package experiment wires a problem configuration into the core pipeline:
// domain + stencil -> plan -> executor -> final field.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/gridlab/internal/config"
	"github.com/san-kum/gridlab/internal/exec"
	"github.com/san-kum/gridlab/internal/field"
	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/metrics"
	"github.com/san-kum/gridlab/internal/plan"
	"github.com/san-kum/gridlab/internal/stencil"
)

// Result carries one completed run.
type Result struct {
	Initial  []float64
	Final    []float64
	Steps    int
	Strategy string
	Elapsed  time.Duration
	Metrics  map[string]float64
}

// Experiment owns the compiled objects for one problem configuration. Setup
// builds them; Run may be called repeatedly, each time with a fresh buffer.
type Experiment struct {
	cfg     *config.Config
	domain  *grid.Domain
	spec    *stencil.Spec
	plan    *plan.Plan
	exec    *exec.Executor
	metrics []metrics.Metric
	logger  *slog.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// SetLogger installs a logger propagated to the executor.
func (e *Experiment) SetLogger(l *slog.Logger) { e.logger = l }

func (e *Experiment) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }

// Setup compiles the configuration: domain, stencil, plan, executor. All
// validation errors surface here, before any buffer exists.
func (e *Experiment) Setup() error {
	domain, err := e.cfg.Domain()
	if err != nil {
		return err
	}
	spec, err := e.cfg.Spec()
	if err != nil {
		return err
	}
	strategy, err := e.cfg.PlanStrategy()
	if err != nil {
		return err
	}
	p, err := plan.Generate(strategy, domain, spec, e.cfg.Steps)
	if err != nil {
		return err
	}

	execCfg := exec.DefaultConfig()
	if e.cfg.Workers > 0 {
		execCfg.Workers = e.cfg.Workers
	}
	ex := exec.New(execCfg)
	if e.logger != nil {
		ex.SetLogger(e.logger)
	}

	e.domain = domain
	e.spec = spec
	e.plan = p
	e.exec = ex
	return nil
}

func (e *Experiment) Domain() *grid.Domain   { return e.domain }
func (e *Experiment) Spec() *stencil.Spec    { return e.spec }
func (e *Experiment) Plan() *plan.Plan       { return e.plan }
func (e *Experiment) Executor() *exec.Executor { return e.exec }

// Run executes the plan against the configured initial field.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.plan == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.RunFrom(ctx, e.cfg.InitialValues(e.domain))
}

// RunFrom executes the plan against a caller-supplied initial field.
func (e *Experiment) RunFrom(ctx context.Context, initial []float64) (*Result, error) {
	if e.plan == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	buf, err := field.FromValues(e.domain, e.spec.Radius(), initial)
	if err != nil {
		return nil, err
	}

	for _, m := range e.metrics {
		m.Reset()
		m.Observe(initial)
	}

	start := time.Now()
	out, err := e.exec.Run(ctx, e.plan, buf)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	final := out.Values()
	result := &Result{
		Initial:  initial,
		Final:    final,
		Steps:    e.plan.Steps(),
		Strategy: e.plan.Strategy(),
		Elapsed:  elapsed,
		Metrics:  make(map[string]float64),
	}
	for _, m := range e.metrics {
		m.Observe(final)
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
