package geometry

import "math"

// AreClose reports whether a and b intersect with positive area, or whether
// the Euclidean distance between their nearest edges is at most threshold.
// Touching rectangles have a gap of zero on the touching axis.
func AreClose(a, b Rect, threshold float64) bool {
	overlapX := math.Max(0, math.Min(a.MaxX, b.MaxX)-math.Max(a.MinX, b.MinX))
	overlapY := math.Max(0, math.Min(a.MaxY, b.MaxY)-math.Max(a.MinY, b.MinY))
	if overlapX > 0 && overlapY > 0 {
		return true
	}
	return math.Hypot(axisGap(a.MinX, a.MaxX, b.MinX, b.MaxX), axisGap(a.MinY, a.MaxY, b.MinY, b.MaxY)) <= threshold
}

// axisGap is the separation between [aMin,aMax] and [bMin,bMax], zero when
// they overlap or touch.
func axisGap(aMin, aMax, bMin, bMax float64) float64 {
	switch {
	case aMax < bMin:
		return bMin - aMax
	case bMax < aMin:
		return aMin - bMax
	default:
		return 0
	}
}
