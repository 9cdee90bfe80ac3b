package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// blank is the empty braille cell. Dot bits are added to it.
const blank rune = 0x2800

// dotBits maps a dot's row and column inside a 2×4 braille cell to its bit.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in dots: Width*2 dots across
// and Height*4 dots down, with (0, 0) at the top-left.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

// NewCanvas returns a blank canvas of w×h cells.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width*2 && y < c.Height*4
}

// Set turns on the dot at (x, y). Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if c.inside(x, y) {
		c.Grid[y/4][x/2] |= dotBits[y%4][x%2]
	}
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	return c.inside(x, y) && c.Grid[y/4][x/2]&dotBits[y%4][x%2] != 0
}

// PlotPoints draws display-space points, with (0, 0) at the bottom-left
// dot and (1, 1) at the top-right one. Points outside the unit square are
// dropped.
func (c *Canvas) PlotPoints(points []r2.Vec) {
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	for _, p := range points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			continue
		}
		c.Set(int(math.Round(p.X*w)), int(math.Round((1-p.Y)*h)))
	}
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for _, row := range c.Grid {
		for j := range row {
			row[j] = blank
		}
	}
}

// DrawLine sets the dots of the segment from (x0, y0) to (x1, y1),
// endpoints included.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, sx := span(x0, x1)
	dy, sy := span(y0, y1)
	dy = -dy

	e := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// span returns the distance from a to b and the unit step towards b.
func span(a, b int) (int, int) {
	if b < a {
		return a - b, -1
	}
	return b - a, 1
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Height * (c.Width*3 + 1))
	for _, row := range c.Grid {
		for _, r := range row {
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
