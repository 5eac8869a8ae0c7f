package testutil

import (
	"context"
	"image"
	"testing"

	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInkDetector(t *testing.T) {
	page := Page(200, 100, image.Rect(10, 20, 30, 50), image.Rect(100, 60, 120, 70))
	det := &InkDetector{}

	regions, err := det.Detect(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, geometry.NewRect(10, 20, 120, 70), regions[0].Box)
	assert.InDelta(t, 0.9, regions[0].Confidence, 1e-9)

	regions, err = det.Detect(context.Background(), Page(50, 50))
	require.NoError(t, err)
	assert.Empty(t, regions)
	assert.Equal(t, []image.Point{{200, 100}, {50, 50}}, det.Sizes())
}

func TestDataURLDecodes(t *testing.T) {
	img, format, err := utils.DecodeBase64Image(DataURL(t, Page(12, 8)))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Pt(12, 8), img.Bounds().Size())
}

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.True(t, FileExists(root+"/go.mod"))
}
