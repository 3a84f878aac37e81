package plan

import (
	"fmt"

	"github.com/san-kum/gridlab/internal/grid"
	"github.com/san-kum/gridlab/internal/stencil"
)

// SpatialTiled returns a strategy that splits every step into fixed-size
// spatial tiles. Tiles at the same step with no mutual dependency run
// concurrently; the price is overlapping halo reads across tile seams.
// Tiles that do not divide the extent evenly are truncated at the high end.
func SpatialTiled(tile []int) Strategy {
	cp := make([]int, len(tile))
	copy(cp, tile)
	return tiledStrategy{tile: cp}
}

type tiledStrategy struct {
	tile []int
}

func (t tiledStrategy) Name() string { return "tiled" }

func (t tiledStrategy) Partition(d *grid.Domain, _ *stencil.Spec) ([]Region, error) {
	if len(t.tile) != d.Rank() {
		return nil, fmt.Errorf("%w: tile rank %d, domain rank %d",
			ErrInvalidPlanConfig, len(t.tile), d.Rank())
	}
	for dim, n := range t.tile {
		if n <= 0 {
			return nil, fmt.Errorf("%w: tile extent %d on dimension %d", ErrInvalidPlanConfig, n, dim)
		}
	}

	var tiles []Region
	lo := make(grid.Coord, d.Rank())
	for dim := range lo {
		lo[dim] = d.Extent(dim).Lo
	}
	for {
		hi := make(grid.Coord, d.Rank())
		for dim := range hi {
			hi[dim] = min(lo[dim]+t.tile[dim]-1, d.Extent(dim).Hi)
		}
		tiles = append(tiles, Region{Lo: lo.Clone(), Hi: hi})

		// Advance the tile origin like an odometer, last dimension fastest.
		dim := d.Rank() - 1
		for dim >= 0 {
			lo[dim] += t.tile[dim]
			if lo[dim] <= d.Extent(dim).Hi {
				break
			}
			lo[dim] = d.Extent(dim).Lo
			dim--
		}
		if dim < 0 {
			return tiles, nil
		}
	}
}
