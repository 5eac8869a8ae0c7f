// Package geometry implements the axis-aligned box algebra used to turn raw
// detector output into text-bubble regions: proximity tests, transitive
// merging, size filtering, IoU and duplicate suppression.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Rect is an axis-aligned rectangle in image pixel space.
// A well-formed Rect has MinX <= MaxX and MinY <= MaxY.
type Rect struct {
	MinX float64 `json:"x0"`
	MinY float64 `json:"y0"`
	MaxX float64 `json:"x1"`
	MaxY float64 `json:"y1"`
}

// NewRect builds a Rect from its corners without reordering them.
func NewRect(minX, minY, maxX, maxY float64) Rect {
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// FromImageRect converts an integer image rectangle.
func FromImageRect(r image.Rectangle) Rect {
	return Rect{
		MinX: float64(r.Min.X),
		MinY: float64(r.Min.Y),
		MaxX: float64(r.Max.X),
		MaxY: float64(r.Max.Y),
	}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// BBox lets a bare Rect be used wherever a Boxed value is expected.
func (r Rect) BBox() Rect { return r }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Contains reports whether o lies entirely inside r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.MinX >= r.MinX && o.MinY >= r.MinY && o.MaxX <= r.MaxX && o.MaxY <= r.MaxY
}

// Translate shifts the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{MinX: r.MinX + dx, MinY: r.MinY + dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}

// Scale multiplies x coordinates by sx and y coordinates by sy.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{MinX: r.MinX * sx, MinY: r.MinY * sy, MaxX: r.MaxX * sx, MaxY: r.MaxY * sy}
}

// ToImageRect converts r to integer pixel coordinates, flooring the minimum
// corner and ceiling the maximum one, clamped to bounds.
func (r Rect) ToImageRect(bounds image.Rectangle) image.Rectangle {
	x1 := clampInt(int(math.Floor(r.MinX)), bounds.Min.X, bounds.Max.X)
	y1 := clampInt(int(math.Floor(r.MinY)), bounds.Min.Y, bounds.Max.Y)
	x2 := clampInt(int(math.Ceil(r.MaxX)), bounds.Min.X, bounds.Max.X)
	y2 := clampInt(int(math.Ceil(r.MaxY)), bounds.Min.Y, bounds.Max.Y)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return image.Rect(x1, y1, x2, y2)
}

// Validate returns a *ValidationError if r has a minimum corner past its
// maximum corner on either axis.
func (r Rect) Validate() error {
	if r.MinX > r.MaxX || r.MinY > r.MaxY || math.IsNaN(r.MinX+r.MinY+r.MaxX+r.MaxY) {
		return &ValidationError{Index: -1, Rect: r}
	}
	return nil
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g,%g,%g]", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Boxed is implemented by anything carrying a bounding rectangle, such as
// detector regions or recognized text blocks.
type Boxed interface {
	BBox() Rect
}

func validateAll[T Boxed](items []T) error {
	for i, it := range items {
		if err := it.BBox().Validate(); err != nil {
			return &ValidationError{Index: i, Rect: it.BBox()}
		}
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
