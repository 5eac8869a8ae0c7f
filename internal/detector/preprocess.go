package detector

import (
	"image"

	"github.com/disintegration/imaging"
)

// modelSize returns the input size for a w x h image: the longest side is
// capped at maxSide and both sides are rounded to a multiple of 32, the
// stride of the DB backbone.
func modelSize(w, h, maxSide int) (int, int) {
	scale := 1.0
	if longest := max(w, h); longest > maxSide {
		scale = float64(maxSide) / float64(longest)
	}
	round32 := func(v float64) int {
		n := int(v/32+0.5) * 32
		if n < 32 {
			n = 32
		}
		return n
	}
	return round32(float64(w) * scale), round32(float64(h) * scale)
}

func resizeForModel(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := modelSize(b.Dx(), b.Dy(), maxSide)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
