package utils

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/disintegration/imaging"
)

// ToNRGBA returns img as an opaque RGB image with a zero origin. Alpha is
// flattened onto white so transparent uploads read like paper.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// CropImageRect cuts rect (absolute coordinates) out of img. A rect that
// misses img yields an empty image.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	if r := rect.Intersect(img.Bounds()); !r.Empty() {
		return imaging.Crop(img, r)
	}
	return imaging.New(0, 0, color.Transparent)
}

// CropRect crops a float rectangle, flooring the minimum corner and
// ceiling the maximum one. Coordinates are relative to img.Bounds().Min.
func CropRect(img image.Image, r geometry.Rect) image.Image {
	b := img.Bounds()
	rel := r.ToImageRect(image.Rect(0, 0, b.Dx(), b.Dy()))
	return CropImageRect(img, rel.Add(b.Min))
}

// CloneRGBA returns a zero-origin RGBA copy of img for drawing overlays.
func CloneRGBA(img image.Image) *image.RGBA {
	src := img.Bounds()
	out := image.NewRGBA(image.Rectangle{Max: src.Size()})
	draw.Draw(out, out.Rect, img, src.Min, draw.Src)
	return out
}

// DrawRect outlines rect in dst with a stroke of the given thickness drawn
// inward from the edges. Parts outside dst are clipped.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	t := max(thickness, 1)
	paint := image.NewUniform(col)
	edges := [4]image.Rectangle{
		{rect.Min, image.Pt(rect.Max.X, rect.Min.Y+t)},
		{image.Pt(rect.Min.X, rect.Max.Y-t), rect.Max},
		{rect.Min, image.Pt(rect.Min.X+t, rect.Max.Y)},
		{image.Pt(rect.Max.X-t, rect.Min.Y), rect.Max},
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(rect), paint, image.Point{}, draw.Over)
	}
}
