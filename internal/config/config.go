package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/plan"
	"github.com/san-kum/gridlab/internal/stencil"
)

const (
	DefaultSteps  = 100
	DefaultAlpha  = 0.25
	DefaultExtent = 100
	DefaultTile   = 16
)

// Config is a YAML problem definition: the grid, the kernel, the plan
// strategy, and the initial field.
type Config struct {
	Name       string         `yaml:"name"`
	Extents    [][2]int       `yaml:"extents"`
	Boundaries []string       `yaml:"boundaries"`
	Kernel     string         `yaml:"kernel"`
	Alpha      float64        `yaml:"alpha"`
	Stencil    []StencilEntry `yaml:"stencil"`
	Steps      int            `yaml:"steps"`
	Strategy   string         `yaml:"strategy"`
	Tile       []int          `yaml:"tile"`
	Workers    int            `yaml:"workers"`
	Initial    InitialConfig  `yaml:"initial"`
}

// StencilEntry is one explicit offset with a constant coefficient. Explicit
// entries override the named kernel when present.
type StencilEntry struct {
	Offset []int   `yaml:"offset"`
	Coeff  float64 `yaml:"coeff"`
}

// InitialConfig describes how the initial field is generated.
type InitialConfig struct {
	Kind  string  `yaml:"kind"` // impulse | uniform | gaussian
	Value float64 `yaml:"value"`
	Sigma float64 `yaml:"sigma"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "heat",
		Extents:    [][2]int{{0, DefaultExtent - 1}},
		Boundaries: []string{"zero"},
		Kernel:     "heat",
		Alpha:      DefaultAlpha,
		Steps:      DefaultSteps,
		Strategy:   "tiled",
		Tile:       []int{DefaultTile},
		Initial:    InitialConfig{Kind: "impulse", Value: 1.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Domain builds the grid domain from the configured extents and boundaries.
func (c *Config) Domain() (*grid.Domain, error) {
	extents := make([]grid.Extent, len(c.Extents))
	for i, e := range c.Extents {
		extents[i] = grid.Extent{Lo: e[0], Hi: e[1]}
	}
	bounds := make([]grid.BoundaryKind, len(c.Boundaries))
	for i, s := range c.Boundaries {
		b, err := grid.ParseBoundary(s)
		if err != nil {
			return nil, err
		}
		bounds[i] = b
	}
	return grid.New(extents, bounds)
}

// Spec builds the stencil from explicit entries when given, otherwise from
// the named builtin kernel.
func (c *Config) Spec() (*stencil.Spec, error) {
	if len(c.Stencil) > 0 {
		entries := make([]stencil.Entry, len(c.Stencil))
		for i, e := range c.Stencil {
			entries[i] = stencil.Entry{
				Offset: grid.Coord(e.Offset),
				Coeff:  stencil.Constant(e.Coeff),
			}
		}
		return stencil.New(entries)
	}

	rank := len(c.Extents)
	switch c.Kernel {
	case "", "heat":
		return stencil.Heat(rank, c.Alpha)
	case "blur":
		return stencil.BoxBlur(rank)
	case "identity":
		return stencil.Identity(rank)
	default:
		return nil, fmt.Errorf("unknown kernel: %s", c.Kernel)
	}
}

// PlanStrategy builds the configured decomposition strategy.
func (c *Config) PlanStrategy() (plan.Strategy, error) {
	switch c.Strategy {
	case "", "tiled":
		tile := c.Tile
		if len(tile) == 0 {
			tile = make([]int, len(c.Extents))
			for i := range tile {
				tile[i] = DefaultTile
			}
		}
		return plan.SpatialTiled(tile), nil
	case "direct":
		return plan.Direct(), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", c.Strategy)
	}
}

// InitialValues generates the initial field in domain linear order.
func (c *Config) InitialValues(d *grid.Domain) []float64 {
	values := make([]float64, d.Size())
	amp := c.Initial.Value
	if amp == 0 {
		amp = 1.0
	}

	switch c.Initial.Kind {
	case "uniform":
		for i := range values {
			values[i] = amp
		}
	case "gaussian":
		sigma := c.Initial.Sigma
		if sigma == 0 {
			sigma = float64(d.Extent(0).Size()) / 25.0
		}
		i := 0
		d.ForEach(func(pos grid.Coord) {
			r2 := 0.0
			for dim, v := range pos {
				e := d.Extent(dim)
				x := float64(v) - float64(e.Lo+e.Hi)/2.0
				r2 += x * x
			}
			values[i] = amp * math.Exp(-r2/(2*sigma*sigma))
			i++
		})
	default: // impulse at the domain center
		center := make(grid.Coord, d.Rank())
		for dim := range center {
			e := d.Extent(dim)
			center[dim] = (e.Lo + e.Hi) / 2
		}
		values[d.LinearIndex(center)] = amp
	}
	return values
}
