// Package geom provides the point and vector primitives used across
// the consistency engine. All functions are pure and total: NaN or
// infinite coordinates are a distinguished invalid state that callers
// must check via IsFinite, never silently propagated into results.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// IsFinite reports whether all components of p are finite numbers.
func IsFinite(p v3.Vec) bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Distance returns the Euclidean distance between a and b.
// The result is NaN if either point is invalid.
func Distance(a, b v3.Vec) float64 {
	if !IsFinite(a) || !IsFinite(b) {
		return math.NaN()
	}
	return a.Sub(b).Length()
}

// WithinTolerance reports whether a and b are the same location, i.e.
// closer than tol. Invalid points are never within tolerance of anything.
func WithinTolerance(a, b v3.Vec, tol float64) bool {
	d := Distance(a, b)
	return !math.IsNaN(d) && d < tol
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b v3.Vec) v3.Vec {
	return a.Add(b).MulScalar(0.5)
}

// Direction returns the unit vector from a to b. ok is false when
// either point is invalid or the segment is too short to carry a
// meaningful direction.
func Direction(a, b v3.Vec) (dir v3.Vec, ok bool) {
	if !IsFinite(a) || !IsFinite(b) {
		return v3.Vec{}, false
	}
	d := b.Sub(a)
	if d.Length() < 1e-9 {
		return v3.Vec{}, false
	}
	return d.Normalize(), true
}

// IsDegenerate reports whether the segment from start to end is shorter
// than tol. Invalid endpoints count as degenerate: such a member cannot
// participate in clustering.
func IsDegenerate(start, end v3.Vec, tol float64) bool {
	if !IsFinite(start) || !IsFinite(end) {
		return true
	}
	return Distance(start, end) < tol
}

// Centroid returns the arithmetic mean of the given points. The zero
// vector is returned for an empty slice.
func Centroid(pts []v3.Vec) v3.Vec {
	if len(pts) == 0 {
		return v3.Vec{}
	}
	var sum v3.Vec
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.MulScalar(1.0 / float64(len(pts)))
}

// IsOrigin reports whether p sits at the coordinate origin within tol.
func IsOrigin(p v3.Vec, tol float64) bool {
	return WithinTolerance(p, v3.Vec{}, tol)
}

// SegmentBounds returns the axis-aligned bounding box of the segment
// from a to b, inflated by margin on every side.
func SegmentBounds(a, b v3.Vec, margin float64) (min, max v3.Vec) {
	min = v3.Vec{
		X: math.Min(a.X, b.X) - margin,
		Y: math.Min(a.Y, b.Y) - margin,
		Z: math.Min(a.Z, b.Z) - margin,
	}
	max = v3.Vec{
		X: math.Max(a.X, b.X) + margin,
		Y: math.Max(a.Y, b.Y) + margin,
		Z: math.Max(a.Z, b.Z) + margin,
	}
	return min, max
}
