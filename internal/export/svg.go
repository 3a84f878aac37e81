// Package export renders field evolution to standalone SVG images.
package export

import (
	"fmt"
	"math"
	"strings"
)

// SpaceTimeSVG renders a 1-D field's evolution as an image: one row of
// cells per recorded frame, colored by value. cell sets the pixel size of
// one grid cell.
func SpaceTimeSVG(frames [][]float64, cell int) string {
	if len(frames) == 0 || len(frames[0]) == 0 {
		return ""
	}
	if cell <= 0 {
		cell = 4
	}

	width := len(frames[0]) * cell
	height := len(frames) * cell

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, frame := range frames {
		for _, v := range frame {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for row, frame := range frames {
		for col, v := range frame {
			t := (v - lo) / (hi - lo)
			r, g, b := heatColor(t)
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="#%02x%02x%02x"/>
`, col*cell, row*cell, cell, cell, r, g, b))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// heatColor maps t in [0,1] onto a black-red-yellow-white ramp.
func heatColor(t float64) (r, g, b uint8) {
	t = math.Max(0, math.Min(1, t))
	switch {
	case t < 1.0/3:
		return uint8(255 * 3 * t), 0, 0
	case t < 2.0/3:
		return 255, uint8(255 * (3*t - 1)), 0
	default:
		return 255, 255, uint8(255 * (3*t - 2))
	}
}
