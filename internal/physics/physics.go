// Package physics provides collision detection and distance utilities
// for a world that wraps at its edges.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared calculates the squared distance between two points.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// WrappedDistanceSquared is DistanceSquared on a torus of size w x h: each axis
// uses the shorter way around. Non-positive dimensions disable wrapping on that axis.
func WrappedDistanceSquared(x1, y1, x2, y2, w, h float64) float64 {
	dx := WrapDelta(x2-x1, w)
	dy := WrapDelta(y2-y1, h)
	return dx*dx + dy*dy
}

// WrapDelta folds a coordinate difference into [-size/2, size/2].
func WrapDelta(d, size float64) float64 {
	if size <= 0 {
		return d
	}
	d = math.Mod(d, size)
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// CirclesOverlap checks if two circles overlap.
func CirclesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	minDist := r1 + r2
	return DistanceSquared(x1, y1, x2, y2) < minDist*minDist
}
