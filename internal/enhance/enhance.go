// Package enhance prepares scanned pages for detection by boosting contrast
// and sharpness.
package enhance

import (
	"image"

	"github.com/MeKo-Tech/bubblex/internal/utils"
	"github.com/disintegration/imaging"
)

// Options expresses enhancement as multiplicative factors, 1.0 meaning no
// change.
type Options struct {
	Contrast  float64 `mapstructure:"contrast" yaml:"contrast" json:"contrast"`
	Sharpness float64 `mapstructure:"sharpness" yaml:"sharpness" json:"sharpness"`
}

// DefaultOptions boosts contrast by 1.8x and sharpness by 1.5x.
func DefaultOptions() Options {
	return Options{Contrast: 1.8, Sharpness: 1.5}
}

// Enabled reports whether any adjustment would change the image.
func (o Options) Enabled() bool {
	return o.Contrast != 1 || o.Sharpness != 1
}

// Apply converts img to opaque RGB and applies the configured adjustments.
func Apply(img image.Image, o Options) *image.NRGBA {
	out := utils.ToNRGBA(img)
	if o.Contrast > 0 && o.Contrast != 1 {
		out = imaging.AdjustContrast(out, contrastPercent(o.Contrast))
	}
	if o.Sharpness > 1 {
		out = sharpen(out, o.Sharpness)
	}
	return out
}

// contrastPercent maps a factor to imaging's percentage scale, where
// 0 is unchanged and +100 doubles the distance from mid-grey.
func contrastPercent(factor float64) float64 {
	p := (factor - 1) * 100
	if p < -100 {
		return -100
	}
	if p > 100 {
		return 100
	}
	return p
}

// sharpen blends the image with a sharpened copy: factor 1 is the original
// and factor 2 is a full unsharp mask.
func sharpen(img *image.NRGBA, factor float64) *image.NRGBA {
	sharp := imaging.Sharpen(img, 1.0)
	amount := factor - 1
	if amount > 1 {
		amount = 1
	}
	return imaging.Overlay(img, sharp, image.Pt(0, 0), amount)
}
