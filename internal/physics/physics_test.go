package physics

import (
	"math"
	"testing"
)

func TestWrappedDistanceSquared(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float64
		w, h           float64
		want           float64
	}{
		{"plain", 0, 0, 3, 4, 100, 100, 25},
		{"wraps x", 1, 0, 99, 0, 100, 100, 4},
		{"wraps y", 0, 98, 0, 2, 100, 100, 16},
		{"wraps both", 99, 99, 1, 1, 100, 100, 8},
		{"no wrap dims", 1, 0, 99, 0, 0, 0, 98 * 98},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrappedDistanceSquared(tt.x1, tt.y1, tt.x2, tt.y2, tt.w, tt.h)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCircleChecks(t *testing.T) {
	if !PointInCircle(3, 4, 0, 0, 5) {
		t.Errorf("expected point on the edge to be inside")
	}
	if PointInCircle(3, 4.1, 0, 0, 5) {
		t.Errorf("expected point past the edge to be outside")
	}
	if CirclesOverlap(0, 0, 1, 2, 0, 1) {
		t.Errorf("touching circles should not overlap")
	}
	if !CirclesOverlap(0, 0, 1, 1.5, 0, 1) {
		t.Errorf("expected overlap")
	}
}

func TestSpatialGridQueryAroundWraps(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)
	g.Insert(1, 1, 0)   // top-left cell
	g.Insert(99, 99, 1) // bottom-right cell, neighbour across the wrap
	g.Insert(50, 50, 2) // far away

	found := map[int]bool{}
	g.QueryAround(1, 1, func(i int) bool {
		found[i] = true
		return false
	})
	if !found[0] || !found[1] {
		t.Fatalf("expected wrapped neighbours found, got %v", found)
	}
	if found[2] {
		t.Fatalf("distant item returned by neighbourhood query")
	}

	g.Clear()
	count := 0
	g.QueryAround(1, 1, func(int) bool { count++; return false })
	if count != 0 {
		t.Fatalf("expected empty grid after clear, got %d items", count)
	}
}

func TestSpatialGridQueryNearOffsets(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)
	g.Insert(98, 50, 7)

	var gotDX, gotDY float64
	hits := 0
	g.QueryNear(2, 51, func(i int, dx, dy float64) bool {
		hits++
		gotDX, gotDY = dx, dy
		return false
	})
	if hits != 1 {
		t.Fatalf("expected 1 hit across the seam, got %d", hits)
	}
	if math.Abs(gotDX-(-4)) > 1e-9 || math.Abs(gotDY-(-1)) > 1e-9 {
		t.Fatalf("expected wrapped offset (-4, -1), got (%v, %v)", gotDX, gotDY)
	}
	if g.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", g.Len())
	}
}

func TestSpatialGridSmallWorldVisitsOnce(t *testing.T) {
	g := NewSpatialGrid(15, 15, 10) // 2x2 cells
	g.Insert(1, 1, 0)
	g.Insert(14, 14, 1)

	seen := map[int]int{}
	g.QueryAround(1, 1, func(i int) bool {
		seen[i]++
		return false
	})
	if seen[0] != 1 || seen[1] != 1 {
		t.Fatalf("expected each item exactly once, got %v", seen)
	}
}
