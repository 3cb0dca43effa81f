package draw

import (
	"io"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// Canvas is a monochrome bitmap shown on a terminal with half-block glyphs, so
// every cell holds two stacked pixels. Callers draw in logical coordinates that
// are scaled to the current terminal size. Render only emits cells that changed.
type Canvas struct {
	cols, rows int    // Terminal cells
	pixels     []bool // cols × rows*2, row-major

	logicalW, logicalH float64
	scaleX, scaleY     float64

	// What each cell showed after the last Render, and cells some overlay text
	// has drawn over since
	shown    []uint8
	dirty    []bool
	forceAll bool // Terminal is blank; draw every set cell

	offsetCol, offsetRow int // Cells skipped before the canvas when centered

	out       []byte
	scaled    []Point
	crossings []float64
	points    []Point
}

// NewCanvas returns an unscaled canvas: one logical unit per pixel.
func NewCanvas(cols, rows int) *Canvas {
	return NewScaledCanvas(cols, rows, float64(cols), float64(rows*2))
}

// NewScaledCanvas returns a canvas of cols × rows cells whose drawing space is
// logicalW × logicalH units.
func NewScaledCanvas(cols, rows int, logicalW, logicalH float64) *Canvas {
	c := &Canvas{logicalW: logicalW, logicalH: logicalH}
	c.Resize(cols, rows)
	return c
}

// Resize adapts the canvas to a new terminal size. The logical space is unchanged.
func (c *Canvas) Resize(cols, rows int) {
	if c.pixels == nil || cols != c.cols || rows != c.rows {
		c.cols, c.rows = cols, rows
		c.pixels = make([]bool, cols*rows*2)
		c.shown = make([]uint8, cols*rows)
		c.dirty = make([]bool, cols*rows)
		c.forceAll = true
	}
	c.scaleX = float64(cols) / c.logicalW
	c.scaleY = float64(rows*2) / c.logicalH
}

// SetOffset places the canvas offsetCol columns and offsetRow rows from the
// terminal's top-left corner.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol, c.offsetRow = col, row
}

// Layout accessors.
func (c *Canvas) OffsetCol() int      { return c.offsetCol }
func (c *Canvas) OffsetRow() int      { return c.offsetRow }
func (c *Canvas) TerminalWidth() int  { return c.cols }
func (c *Canvas) TerminalHeight() int { return c.rows }

// Clear unsets every pixel. The terminal is untouched until the next Render.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// toPixel scales a logical point to the nearest pixel.
func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(x * c.scaleX)), int(math.Round(y * c.scaleY))
}

func (c *Canvas) plot(px, py int) {
	if px >= 0 && px < c.cols && py >= 0 && py < c.rows*2 {
		c.pixels[py*c.cols+px] = true
	}
}

// Set sets the pixel at integer logical coordinates.
func (c *Canvas) Set(x, y int) {
	c.plot(c.toPixel(float64(x), float64(y)))
}

// SetFloat sets the pixel nearest to a logical point.
func (c *Canvas) SetFloat(x, y float64) {
	c.plot(c.toPixel(x, y))
}

// DrawLine draws a straight line between two logical points (Bresenham).
func (c *Canvas) DrawLine(from, to Point) {
	x, y := c.toPixel(from.X, from.Y)
	x2, y2 := c.toPixel(to.X, to.Y)

	dx, sx := x2-x, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y2-y, 1
	if dy < 0 {
		dy, sy = -dy, -1
	}

	for e := dx - dy; ; {
		c.plot(x, y)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x += sx
		}
		if e2 < dx {
			e += dx
			y += sy
		}
	}
}

// DrawPolygon outlines the closed polygon through points, filling it first when filled is set.
func (c *Canvas) DrawPolygon(points []Point, filled bool) {
	n := len(points)
	if n < 3 {
		return
	}
	if filled {
		c.fill(points)
	}
	for i, p := range points {
		c.DrawLine(p, points[(i+1)%n])
	}
}

// fill paints the polygon interior with an even-odd scanline pass in pixel space.
func (c *Canvas) fill(points []Point) {
	c.scaled = c.scaled[:0]
	top, bottom := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		sp := Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
		c.scaled = append(c.scaled, sp)
		top, bottom = min(top, sp.Y), max(bottom, sp.Y)
	}

	n := len(c.scaled)
	for y := int(math.Floor(top)); y <= int(math.Ceil(bottom)); y++ {
		scan := float64(y) + 0.5

		c.crossings = c.crossings[:0]
		for i, a := range c.scaled {
			b := c.scaled[(i+1)%n]
			if (a.Y <= scan) != (b.Y <= scan) {
				c.crossings = append(c.crossings, a.X+(scan-a.Y)/(b.Y-a.Y)*(b.X-a.X))
			}
		}
		slices.Sort(c.crossings)

		for i := 0; i+1 < len(c.crossings); i += 2 {
			for x := int(math.Ceil(c.crossings[i])); x <= int(math.Floor(c.crossings[i+1])); x++ {
				c.plot(x, y)
			}
		}
	}
}

// BorrowPoints returns a scratch slice of n points, valid until the next call.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.points) < n {
		c.points = make([]Point, n)
	}
	return c.points[:n]
}

// LogicalToTerminal returns the 1-based cell (within the canvas) holding a logical point.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}

// Half-block cell contents, indexing cellGlyphs.
const (
	cellEmpty uint8 = iota
	cellUpper
	cellLower
	cellFull
)

var cellGlyphs = [...]rune{BlockEmpty, BlockUpperHalf, BlockLowerHalf, BlockFull}

// cell returns what the cell at (col, row) should show.
func (c *Canvas) cell(col, row int) uint8 {
	var v uint8
	if c.pixels[row*2*c.cols+col] {
		v |= cellUpper
	}
	if c.pixels[(row*2+1)*c.cols+col] {
		v |= cellLower
	}
	return v
}

// ForceRedraw makes the next Render assume a blank terminal. Call it after
// clearing the screen.
func (c *Canvas) ForceRedraw() {
	c.forceAll = true
}

// MarkTextDirty schedules width cells from the 1-based canvas cell (col, row) to
// be repainted by the next Render, wiping any text written over them.
func (c *Canvas) MarkTextDirty(col, row, width int) {
	if row < 1 || row > c.rows {
		return
	}
	first, last := max(col-1, 0), min(col-1+width, c.cols)
	for x := first; x < last; x++ {
		c.dirty[(row-1)*c.cols+x] = true
	}
}

// Render writes the cells that differ from what the terminal shows.
func (c *Canvas) Render(w io.Writer) {
	c.out = c.out[:0]
	var glyph [utf8.UTFMax]byte

	for row := range c.rows {
		for col := range c.cols {
			i := row*c.cols + col
			v := c.cell(col, row)
			skip := v == c.shown[i] && !c.dirty[i]
			if c.forceAll {
				skip = v == cellEmpty
			}
			c.shown[i], c.dirty[i] = v, false
			if skip {
				continue
			}
			c.out = appendCursor(c.out, col+1+c.offsetCol, row+1+c.offsetRow)
			c.out = append(c.out, glyph[:utf8.EncodeRune(glyph[:], cellGlyphs[v])]...)
		}
	}
	c.forceAll = false

	writeChunks(w, c.out)
}

// RenderBorder frames the canvas when centering left room around it: bars on the
// sides when offset horizontally, rules above and below when offset vertically.
func (c *Canvas) RenderBorder(w io.Writer) {
	sides := c.offsetCol >= 1
	ends := c.offsetRow >= 1
	if !sides && !ends {
		return
	}

	left, right := c.offsetCol, c.offsetCol+c.cols+1
	top, bottom := c.offsetRow, c.offsetRow+c.rows+1
	rule := strings.Repeat("─", c.cols)

	var b []byte
	if ends {
		col, tl, tr, bl, br := c.offsetCol+1, "", "", "", ""
		if sides {
			col, tl, tr, bl, br = left, "┌", "┐", "└", "┘"
		}
		b = append(appendCursor(b, col, top), tl+rule+tr...)
		b = append(appendCursor(b, col, bottom), bl+rule+br...)
	}
	if sides {
		for row := top + 1; row < bottom; row++ {
			b = append(appendCursor(b, left, row), "│"...)
			b = append(appendCursor(b, right, row), "│"...)
		}
	}
	writeChunks(w, b)
}
