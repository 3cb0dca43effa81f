package physics

import "math"

// SpatialGrid buckets points by cell for broad-phase collision detection in a
// wrapping world. Queries look at the 3x3 neighborhood of cells around a position,
// wrapping across world edges, and report offsets the short way around the torus.
//
// Cell size must be >= the largest interaction distance, and the world dimensions
// should be multiples of it so the wrapped neighborhood is exact at the seams.
type SpatialGrid struct {
	worldW, worldH float64
	invCellSize    float64
	cols, rows     int
	cells          [][]gridItem // Reset to [:0] between frames, never reallocated
	count          int
}

// gridItem is an inserted point and the caller's index for it.
type gridItem struct {
	index int
	x, y  float64
}

// NewSpatialGrid creates a grid covering worldW x worldH.
func NewSpatialGrid(worldW, worldH, cellSize float64) *SpatialGrid {
	cols := max(int(math.Ceil(worldW/cellSize)), 1)
	rows := max(int(math.Ceil(worldH/cellSize)), 1)

	return &SpatialGrid{
		worldW:      worldW,
		worldH:      worldH,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       make([][]gridItem, cols*rows),
	}
}

// Clear empties the grid, keeping cell capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds index at (x, y).
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], gridItem{index: index, x: x, y: y})
	g.count++
}

// Len returns the number of inserted items.
func (g *SpatialGrid) Len() int {
	return g.count
}

// QueryAround calls fn with the index of every item in the 3x3 neighborhood of (x, y).
// Iteration stops when fn returns true.
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	g.QueryNear(x, y, func(index int, _, _ float64) bool {
		return fn(index)
	})
}

// QueryNear is QueryAround that also passes the wrapped offset (dx, dy) from (x, y)
// to each item, so callers can do narrow-phase checks across world edges.
func (g *SpatialGrid) QueryNear(x, y float64, fn func(index int, dx, dy float64) bool) {
	col, row := g.posToCell(x, y)
	c0, nc := neighborhood(col, g.cols)
	r0, nr := neighborhood(row, g.rows)

	for i := 0; i < nr; i++ {
		r := (r0 + i + g.rows) % g.rows
		for j := 0; j < nc; j++ {
			c := (c0 + j + g.cols) % g.cols
			for _, it := range g.cells[r*g.cols+c] {
				dx := WrapDelta(it.x-x, g.worldW)
				dy := WrapDelta(it.y-y, g.worldH)
				if fn(it.index, dx, dy) {
					return
				}
			}
		}
	}
}

// neighborhood returns the first cell and cell count to visit around i on an axis of n
// cells. Axes narrower than three cells are visited whole so no cell is seen twice.
func neighborhood(i, n int) (start, count int) {
	if n < 3 {
		return 0, n
	}
	return i - 1, 3
}

// posToCell maps world coordinates to a cell, clamping out-of-range positions.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = min(max(int(x*g.invCellSize), 0), g.cols-1)
	row = min(max(int(y*g.invCellSize), 0), g.rows-1)
	return col, row
}
