package testutil

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MeKo-Tech/bubblex/internal/detector"
	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/utils"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// Page returns a white page with a solid black block for each ink rectangle.
func Page(width, height int, inks ...image.Rectangle) *image.NRGBA {
	img := imaging.New(width, height, color.White)
	for _, r := range inks {
		r = r.Intersect(img.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// SavePage writes img as a PNG under t.TempDir and returns its path.
func SavePage(t *testing.T, img image.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, utils.SavePNG(img, path))
	return path
}

// DataURL encodes img as a PNG data URL.
func DataURL(t *testing.T, img image.Image) string {
	t.Helper()
	s, err := utils.EncodePNGBase64(img)
	require.NoError(t, err)
	return "data:image/png;base64," + s
}

// InkDetector reports one region covering all dark pixels of its input and
// records the size of every image it is given.
type InkDetector struct {
	Confidence float64

	mu    sync.Mutex
	sizes []image.Point
}

// Detect implements the pipeline detector contract.
func (d *InkDetector) Detect(_ context.Context, img image.Image) ([]detector.Region, error) {
	b := img.Bounds()
	d.mu.Lock()
	d.sizes = append(d.sizes, b.Size())
	d.mu.Unlock()

	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 128 {
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}
		}
	}
	if maxX < minX {
		return nil, nil
	}
	conf := d.Confidence
	if conf == 0 {
		conf = 0.9
	}
	r := geometry.NewRect(float64(minX-b.Min.X), float64(minY-b.Min.Y), float64(maxX-b.Min.X+1), float64(maxY-b.Min.Y+1))
	return []detector.Region{{Box: r, Confidence: conf}}, nil
}

// Sizes returns the image sizes seen so far.
func (d *InkDetector) Sizes() []image.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]image.Point(nil), d.sizes...)
}
