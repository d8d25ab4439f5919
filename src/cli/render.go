package cli

import (
	"math"
	"strings"

	"github.com/ln64-git/hyprarrange/src/features/arrangement"
)

// grid is a fixed-size character canvas
type grid [][]rune

func newGrid(cols, rows int) grid {
	g := make(grid, rows)
	for y := range g {
		g[y] = []rune(strings.Repeat(" ", cols))
	}
	return g
}

func (g grid) set(x, y int, r rune) {
	if y >= 0 && y < len(g) && x >= 0 && x < len(g[y]) {
		g[y][x] = r
	}
}

func (g grid) box(x0, y0, x1, y1 int, horizontal, vertical, corner rune) {
	for x := x0; x <= x1; x++ {
		g.set(x, y0, horizontal)
		g.set(x, y1, horizontal)
	}
	for y := y0; y <= y1; y++ {
		g.set(x0, y, vertical)
		g.set(x1, y, vertical)
	}
	g.set(x0, y0, corner)
	g.set(x1, y0, corner)
	g.set(x0, y1, corner)
	g.set(x1, y1, corner)
}

func (g grid) fill(x0, y0, x1, y1 int, r rune) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.set(x, y, r)
		}
	}
}

// text writes s centered between x0 and x1, truncated to fit
func (g grid) text(x0, x1, y int, s string) {
	runes := []rune(s)
	width := x1 - x0 + 1
	if width <= 0 {
		return
	}
	if len(runes) > width {
		runes = runes[:width]
	}
	start := x0 + (width-len(runes))/2
	for i, r := range runes {
		g.set(start+i, y, r)
	}
}

func (g grid) String() string {
	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

type cellRect struct {
	x0, y0, x1, y1 int
}

func toCells(r arrangement.CanvasRect, sx, sy float64) cellRect {
	return cellRect{
		x0: int(math.Round(r.X * sx)),
		y0: int(math.Round(r.Y * sy)),
		x1: int(math.Round((r.X+r.Width)*sx)) - 1,
		y1: int(math.Round((r.Y+r.Height)*sy)) - 1,
	}
}

// renderLayout draws the layout on a cols x rows character grid.
// The selected monitor gets a '#' border, disabled monitors are shaded
// and the snap preview, when present, is dotted.
func renderLayout(v arrangement.LayoutView, cols, rows int) string {
	if cols <= 0 || rows <= 0 || v.Viewport.Width <= 0 || v.Viewport.Height <= 0 {
		return ""
	}
	g := newGrid(cols, rows)
	sx := float64(cols) / v.Viewport.Width
	sy := float64(rows) / v.Viewport.Height

	for _, mv := range v.Monitors {
		c := toCells(mv.Rect, sx, sy)
		if mv.Monitor.Disabled {
			g.fill(c.x0, c.y0, c.x1, c.y1, '.')
		} else {
			g.fill(c.x0+1, c.y0+1, c.x1-1, c.y1-1, ' ')
		}
		if mv.Selected {
			g.box(c.x0, c.y0, c.x1, c.y1, '=', '#', '#')
		} else {
			g.box(c.x0, c.y0, c.x1, c.y1, '-', '|', '+')
		}

		mid := (c.y0 + c.y1) / 2
		g.text(c.x0+1, c.x1-1, mid, mv.Monitor.Name)
		if mid+1 < c.y1 {
			g.text(c.x0+1, c.x1-1, mid+1, mv.Monitor.Resolution())
		}
	}

	if v.Preview != nil {
		c := toCells(*v.Preview, sx, sy)
		g.box(c.x0, c.y0, c.x1, c.y1, ':', ':', ':')
	}

	if v.Center != nil {
		x := int(math.Round(v.Center.X * sx))
		y := int(math.Round(v.Center.Y * sy))
		if y >= 0 && y < rows && x >= 0 && x < cols && g[y][x] == ' ' {
			g[y][x] = '*'
		}
	}

	return g.String()
}
