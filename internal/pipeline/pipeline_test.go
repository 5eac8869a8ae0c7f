package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/MeKo-Tech/bubblex/internal/detector"
	"github.com/MeKo-Tech/bubblex/internal/enhance"
	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/testutil"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDetector struct {
	regions []detector.Region
	err     error
}

func (d staticDetector) Detect(context.Context, image.Image) ([]detector.Region, error) {
	return d.regions, d.err
}

// sizeRecognizer answers with the crop size.
type sizeRecognizer struct {
	err error
}

func (r sizeRecognizer) Recognize(_ context.Context, img image.Image) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()), nil
}

func (sizeRecognizer) Name() string { return "size" }

type fixedRecognizer string

func (f fixedRecognizer) Recognize(context.Context, image.Image) (string, error) { return string(f), nil }
func (fixedRecognizer) Name() string                                            { return "fixed" }

type mapTranslator struct {
	out  map[string]string
	err  error
	mu   sync.Mutex
	seen []string
}

func (m *mapTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	m.mu.Lock()
	m.seen = append(m.seen, lang)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.out[text], nil
}

func plainOptions() Options {
	o := DefaultOptions()
	o.Enhance = enhance.Options{Contrast: 1, Sharpness: 1}
	return o
}

func region(x0, y0, x1, y1, conf float64) detector.Region {
	return detector.Region{Box: geometry.NewRect(x0, y0, x1, y1), Confidence: conf}
}

func TestProcessMergesFiltersAndTranslates(t *testing.T) {
	det := staticDetector{regions: []detector.Region{
		region(0, 0, 50, 50, 0.7),
		region(55, 0, 100, 50, 0.9),
		region(300, 300, 310, 310, 0.99),
	}}
	tr := &mapTranslator{out: map[string]string{"hello": "안녕"}}
	p, err := New(det, fixedRecognizer("hello"), tr, DefaultOptions())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), imaging.New(400, 400, color.White), plainOptions())
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)

	blk := res.Blocks[0]
	assert.Equal(t, BBox{X0: 0, Y0: 0, X1: 100, Y1: 50}, blk.BBox)
	assert.Equal(t, "안녕", blk.Text)
	assert.Equal(t, "hello", blk.OriginalText)
	require.NotNil(t, blk.TranslatedText)
	assert.Equal(t, "안녕", *blk.TranslatedText)
	assert.Equal(t, BlockTypeBubble, blk.Type)
	assert.Equal(t, StyleNormal, blk.Style)
	assert.InDelta(t, 0.9, blk.Confidence, 1e-9)
	assert.Equal(t, []string{"Korean"}, tr.seen)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 1, res.Tiles)
}

func TestProcessUnchangedTranslationLeavesNil(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(0, 0, 60, 60, 0.8)}}
	tr := &mapTranslator{out: map[string]string{"OK": "OK"}}
	p, err := New(det, fixedRecognizer("OK"), tr, DefaultOptions())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), imaging.New(100, 100, color.White), plainOptions())
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Nil(t, res.Blocks[0].TranslatedText)
	assert.Equal(t, "OK", res.Blocks[0].Text)
}

func TestProcessTranslationFailureFallsBack(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(0, 0, 60, 60, 0.8)}}
	tr := &mapTranslator{err: errors.New("connection refused")}
	p, err := New(det, fixedRecognizer("hello"), tr, DefaultOptions())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), imaging.New(100, 100, color.White), plainOptions())
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "hello", res.Blocks[0].Text)
	assert.Nil(t, res.Blocks[0].TranslatedText)
}

func TestProcessBlankTextSkipsTranslation(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(0, 0, 60, 60, 0.8)}}
	tr := &mapTranslator{}
	p, err := New(det, fixedRecognizer(""), tr, DefaultOptions())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), imaging.New(100, 100, color.White), plainOptions())
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Empty(t, tr.seen)
	assert.Empty(t, res.Blocks[0].Text)
}

func TestProcessRecognitionErrorFails(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(0, 0, 60, 60, 0.8)}}
	p, err := New(det, sizeRecognizer{err: errors.New("model offline")}, nil, DefaultOptions())
	require.NoError(t, err)

	_, err = p.Process(context.Background(), imaging.New(100, 100, color.White), plainOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recognition failed")
	assert.Contains(t, err.Error(), "model offline")
}

func TestProcessDetectionError(t *testing.T) {
	p, err := New(staticDetector{err: errors.New("session closed")}, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)
	_, err = p.Process(context.Background(), imaging.New(10, 10, color.White), plainOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detection failed")
}

func TestProcessMalformedDetectorBox(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(10, 0, 0, 10, 0.8)}}
	p, err := New(det, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)
	_, err = p.Process(context.Background(), imaging.New(10, 10, color.White), plainOptions())
	assert.ErrorIs(t, err, geometry.ErrMalformedRect)
}

func TestProcessNoRegions(t *testing.T) {
	p, err := New(staticDetector{}, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)
	res, err := p.Process(context.Background(), imaging.New(10, 10, color.White), plainOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Blocks)
	assert.NotNil(t, res.Blocks)
	assert.Empty(t, res.Text())
}

func TestProcessPreservesOrderWithWorkers(t *testing.T) {
	det := staticDetector{regions: []detector.Region{
		region(0, 0, 40, 40, 0.8),
		region(100, 0, 150, 60, 0.8),
		region(200, 0, 270, 80, 0.8),
		region(300, 0, 390, 100, 0.8),
	}}
	p, err := New(det, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)

	opts := plainOptions()
	opts.Workers = 4
	res, err := p.Process(context.Background(), imaging.New(400, 200, color.White), opts)
	require.NoError(t, err)
	assert.Equal(t, "40x40\n50x60\n70x80\n90x100", res.Text())
}

func TestProcessTiledDeduplicatesOverlap(t *testing.T) {
	img := testutil.Page(2000, 1000, image.Rect(800, 100, 900, 200))
	det := &testutil.InkDetector{}
	p, err := New(det, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)

	res, err := p.Process(context.Background(), img, plainOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tiles)
	assert.Equal(t, []image.Point{{1500, 1000}, {1500, 1000}}, det.Sizes())
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, BBox{X0: 800, Y0: 100, X1: 900, Y1: 200}, res.Blocks[0].BBox)
	assert.Equal(t, "100x100", res.Blocks[0].Text)
}

func TestProcessTilingDisabled(t *testing.T) {
	det := &testutil.InkDetector{}
	p, err := New(det, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)

	opts := plainOptions()
	opts.Tiling = false
	res, err := p.Process(context.Background(), imaging.New(2000, 1000, color.White), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Tiles)
	assert.Equal(t, []image.Point{{2000, 1000}}, det.Sizes())
}

func TestProcessCancelledContext(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(0, 0, 60, 60, 0.8)}}
	p, err := New(det, sizeRecognizer{}, nil, DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Process(ctx, imaging.New(1600, 100, color.White), plainOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessReportsProgress(t *testing.T) {
	det := staticDetector{regions: []detector.Region{region(0, 0, 60, 60, 0.8), region(200, 0, 260, 60, 0.8)}}
	p, err := New(det, fixedRecognizer("a"), &mapTranslator{out: map[string]string{"a": "b"}}, DefaultOptions())
	require.NoError(t, err)

	var mu sync.Mutex
	var events []string
	opts := plainOptions()
	opts.Progress = ProgressFunc(func(stage Stage, current, total int) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, fmt.Sprintf("%s %d/%d", stage, current, total))
	})
	_, err = p.Process(context.Background(), imaging.New(300, 100, color.White), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"detect 0/1", "detect 1/1",
		"recognize 0/2", "recognize 1/2", "recognize 2/2",
		"translate 0/2", "translate 1/2", "translate 2/2",
	}, events)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, sizeRecognizer{}, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = New(staticDetector{}, nil, nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		ok     bool
	}{
		{"defaults", func(*Options) {}, true},
		{"negative threshold", func(o *Options) { o.MergeThreshold = -1 }, false},
		{"negative min", func(o *Options) { o.MinArea = -1 }, false},
		{"overlap equals size", func(o *Options) { o.TileOverlap = o.TileSize }, false},
		{"overlap ignored without tiling", func(o *Options) { o.Tiling = false; o.TileOverlap = o.TileSize }, true},
		{"iou above one", func(o *Options) { o.DedupeIoU = 1.5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			if tt.ok {
				assert.NoError(t, o.Validate())
			} else {
				assert.Error(t, o.Validate())
			}
		})
	}
}
