package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// FrameSVG draws display-space points as fixed-radius circles on a
// width×height canvas. Display y grows upwards, so it is flipped.
// Points outside the unit square are still emitted and simply fall off the
// visible canvas.
func FrameSVG(points []r2.Vec, width, height int, radius float64) string {
	var sb strings.Builder

	sb.WriteString(header(width, height))
	sb.WriteString("<g fill=\"#3ea6ff\">\n")

	for _, p := range points {
		cx, cy := toCanvas(p, width, height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, radius))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectorySVG draws the path of one particle through a sequence of
// display-space positions.
func TrajectorySVG(points []r2.Vec, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(header(width, height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x, y := toCanvas(p, width, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func header(width, height int) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func toCanvas(p r2.Vec, width, height int) (float64, float64) {
	return p.X * float64(width), (1 - p.Y) * float64(height)
}
