package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Simplify reduces a polyline using the Ramer-Douglas-Peucker algorithm.
// Points whose perpendicular distance to the local chord is at most epsilon
// are dropped. The result always preserves point order, never introduces new
// points, and keeps the first and last point of any input with two or more
// points. Inputs with fewer than three points are returned unchanged.
func Simplify(points []Point2D, epsilon float64) []Point2D {
	if len(points) < 3 {
		out := make([]Point2D, len(points))
		copy(out, points)
		return out
	}

	// Find the point farthest from the chord between the endpoints.
	first := points[0]
	last := points[len(points)-1]
	maxDist := 0.0
	maxIndex := 0
	for i := 1; i < len(points)-1; i++ {
		d := PerpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIndex = i
		}
	}

	if maxDist <= epsilon {
		// Entire span collapses to its endpoints.
		return []Point2D{first, last}
	}

	// Recurse on both halves and join, dropping the duplicated junction.
	left := Simplify(points[:maxIndex+1], epsilon)
	right := Simplify(points[maxIndex:], epsilon)
	return append(left, right[1:]...)
}

// PerpendicularDistance returns the distance from p to the line segment
// chord a-b. A degenerate chord (a == b) falls back to the point-to-point
// distance.
func PerpendicularDistance(p, a, b Point2D) float64 {
	va := r2.Vec{X: a.X, Y: a.Y}
	vb := r2.Vec{X: b.X, Y: b.Y}
	vp := r2.Vec{X: p.X, Y: p.Y}

	chord := r2.Sub(vb, va)
	length := r2.Norm(chord)
	if length == 0 {
		return r2.Norm(r2.Sub(vp, va))
	}
	return math.Abs(r2.Cross(chord, r2.Sub(vp, va))) / length
}
