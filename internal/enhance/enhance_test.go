package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestContrastPercent(t *testing.T) {
	assert.InDelta(t, 80.0, contrastPercent(1.8), 1e-9)
	assert.InDelta(t, 0.0, contrastPercent(1.0), 1e-9)
	assert.InDelta(t, 100.0, contrastPercent(5), 1e-9)
	assert.InDelta(t, -100.0, contrastPercent(-3), 1e-9)
}

func TestApply_IncreasesContrast(t *testing.T) {
	img := imaging.New(4, 4, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	img.Set(0, 0, color.NRGBA{R: 160, G: 160, B: 160, A: 255})

	out := Apply(img, Options{Contrast: 1.8, Sharpness: 1})
	dark := out.NRGBAAt(1, 1)
	light := out.NRGBAAt(0, 0)
	assert.Less(t, dark.R, uint8(100))
	assert.Greater(t, light.R, uint8(160))
}

func TestApply_KeepsSizeAndOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 30, 25))
	out := Apply(img, DefaultOptions())
	assert.Equal(t, image.Rect(0, 0, 20, 15), out.Bounds())
}

func TestApply_Identity(t *testing.T) {
	img := imaging.New(3, 3, color.NRGBA{R: 12, G: 34, B: 56, A: 255})
	o := Options{Contrast: 1, Sharpness: 1}
	assert.False(t, o.Enabled())
	out := Apply(img, o)
	assert.Equal(t, img.Pix, out.Pix)
	assert.True(t, DefaultOptions().Enabled())
}
