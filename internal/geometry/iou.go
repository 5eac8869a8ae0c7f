package geometry

import "math"

// Intersection returns the overlapping area of a and b, zero when they are
// disjoint.
func Intersection(a, b Rect) float64 {
	left := math.Max(a.MinX, b.MinX)
	top := math.Max(a.MinY, b.MinY)
	right := math.Min(a.MaxX, b.MaxX)
	bottom := math.Min(a.MaxY, b.MaxY)
	if right < left || bottom < top {
		return 0
	}
	return (right - left) * (bottom - top)
}

// IoU is intersection over union. Two zero-area rectangles yield 0.
func IoU(a, b Rect) float64 {
	inter := Intersection(a, b)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
