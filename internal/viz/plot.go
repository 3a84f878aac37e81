// Package viz provides terminal rendering of grid fields: asciigraph line
// plots for 1-D profiles and a shaded-rune heatmap for 2-D slices.
package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// shades orders background-to-foreground density for heatmap cells.
var shades = []rune(" .:-=+*#%@")

// Profile plots a 1-D field slice as an ascii line graph.
func Profile(values []float64, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// Heatmap renders a 2-D field (rows x cols, row-major) with value-shaded
// runes.
func Heatmap(values []float64, rows, cols int) string {
	if rows*cols != len(values) || rows == 0 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t := (values[r*cols+c] - lo) / (hi - lo)
			idx := int(t * float64(len(shades)-1))
			sb.WriteRune(shades[idx])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
