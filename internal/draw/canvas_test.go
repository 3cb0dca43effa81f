package draw

import (
	"strings"
	"testing"
)

func renderString(c *Canvas) string {
	var sb strings.Builder
	c.Render(&sb)
	return sb.String()
}

func TestRenderOnlyChangedCells(t *testing.T) {
	c := NewCanvas(10, 5)

	c.Set(2, 0) // top half of cell (row 1, col 3)
	out := renderString(c)
	if out != "\033[1;3H▀" {
		t.Fatalf("unexpected first render %q", out)
	}

	// Same pixels again: nothing to write
	c.Clear()
	c.Set(2, 0)
	if out := renderString(c); out != "" {
		t.Fatalf("expected empty diff, got %q", out)
	}

	// Adding the bottom half turns the cell full
	c.Set(2, 1)
	if out := renderString(c); out != "\033[1;3H█" {
		t.Fatalf("unexpected render after fill %q", out)
	}

	// Clearing the pixels erases the cell with a space
	c.Clear()
	if out := renderString(c); out != "\033[1;3H " {
		t.Fatalf("unexpected erase render %q", out)
	}
}

func TestMarkTextDirtyRewritesCells(t *testing.T) {
	c := NewCanvas(10, 5)
	renderString(c)

	c.MarkTextDirty(4, 2, 2)
	out := renderString(c)
	if out != "\033[2;4H \033[2;5H " {
		t.Fatalf("expected dirty cells rewritten, got %q", out)
	}
	if out := renderString(c); out != "" {
		t.Fatalf("expected dirty flags cleared, got %q", out)
	}

	// Out-of-range marks are ignored
	c.MarkTextDirty(0, 99, 3)
	c.MarkTextDirty(9, 1, 10)
	if out := renderString(c); out != "\033[1;9H \033[1;10H " {
		t.Fatalf("unexpected clipped dirty render %q", out)
	}
}

func TestForceRedrawSkipsEmptyCells(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	renderString(c)

	c.ForceRedraw()
	c.Clear()
	c.Set(0, 0)
	if out := renderString(c); out != "\033[1;1H▀" {
		t.Fatalf("expected full redraw of set cells only, got %q", out)
	}
}

func TestRenderAppliesOffset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.SetOffset(10, 5)
	c.Set(1, 1)
	if out := renderString(c); out != "\033[6;12H▄" {
		t.Fatalf("unexpected offset render %q", out)
	}
}

func TestLogicalToTerminal(t *testing.T) {
	c := NewScaledCanvas(120, 40, 120, 80)
	col, row := c.LogicalToTerminal(10, 20)
	if col != 11 || row != 11 {
		t.Fatalf("expected (11, 11), got (%d, %d)", col, row)
	}
}

func TestDrawPolygonFillsInterior(t *testing.T) {
	c := NewCanvas(10, 5)
	square := []Point{{X: 1, Y: 1}, {X: 6, Y: 1}, {X: 6, Y: 6}, {X: 1, Y: 6}}

	c.DrawPolygon(square, false)
	if c.pixels[3*c.cols+3] {
		t.Fatalf("outline-only polygon filled its interior")
	}

	c.DrawPolygon(square, true)
	if !c.pixels[3*c.cols+3] {
		t.Fatalf("expected interior pixel set")
	}
	if c.pixels[8*c.cols+8] {
		t.Fatalf("pixel outside the polygon set")
	}
}

func TestRenderBorder(t *testing.T) {
	c := NewCanvas(2, 1)

	var sb strings.Builder
	c.RenderBorder(&sb)
	if sb.Len() != 0 {
		t.Fatalf("expected no border without offset, got %q", sb.String())
	}

	c.SetOffset(1, 1)
	c.RenderBorder(&sb)
	want := "\033[1;1H┌──┐\033[3;1H└──┘\033[2;1H│\033[2;4H│"
	if sb.String() != want {
		t.Fatalf("got %q, want %q", sb.String(), want)
	}
}
