// Package pipeline turns a comic page into translated text blocks:
// enhance, detect, merge, filter, recognize, translate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/detector"
	"github.com/MeKo-Tech/bubblex/internal/enhance"
	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/recognizer"
	"github.com/MeKo-Tech/bubblex/internal/translator"
	"github.com/MeKo-Tech/bubblex/internal/utils"
)

// ErrNotInitialized is returned when Process is called on a pipeline
// without a detector or recognizer.
var ErrNotInitialized = errors.New("pipeline not initialized")

// Detector finds text regions in an image. *detector.Detector satisfies it.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]detector.Region, error)
}

// Pipeline holds the long-lived collaborators. It is safe for concurrent
// use as long as they are.
type Pipeline struct {
	detector   Detector
	recognizer recognizer.Recognizer
	translator translator.Translator
	defaults   Options
	closers    []io.Closer
}

// New wires a pipeline. A nil translator keeps recognized text as is.
func New(det Detector, rec recognizer.Recognizer, tr translator.Translator, defaults Options) (*Pipeline, error) {
	if det == nil || rec == nil {
		return nil, ErrNotInitialized
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}
	if tr == nil {
		tr = translator.Passthrough{}
	}
	return &Pipeline{detector: det, recognizer: rec, translator: tr, defaults: defaults}, nil
}

// Defaults returns a copy of the options used when callers pass none.
func (p *Pipeline) Defaults() Options { return p.defaults }

// Close releases owned resources (model sessions, clients).
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

func (p *Pipeline) own(c any) {
	if closer, ok := c.(io.Closer); ok {
		p.closers = append(p.closers, closer)
	}
}

// Process runs the full chain on img.
func (p *Pipeline) Process(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if p == nil || p.detector == nil || p.recognizer == nil {
		return nil, ErrNotInitialized
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	totalStart := time.Now()
	b := img.Bounds()
	out := &Result{Width: b.Dx(), Height: b.Dy(), Blocks: []TextBlock{}}
	slog.Debug("Starting bubble extraction", "width", out.Width, "height", out.Height)

	var working image.Image
	if opts.Enhance.Enabled() {
		working = enhance.Apply(img, opts.Enhance)
	} else {
		working = utils.ToNRGBA(img)
	}

	detStart := time.Now()
	regions, tiles, err := p.detect(ctx, working, opts)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	out.Tiles = tiles

	merged, err := geometry.Merge(detector.Boxes(regions), opts.MergeThreshold)
	if err != nil {
		return nil, fmt.Errorf("merge failed: %w", err)
	}
	kept, err := geometry.Filter(merged, opts.MinWidth, opts.MinHeight, opts.MinArea)
	if err != nil {
		return nil, fmt.Errorf("filter failed: %w", err)
	}
	out.Processing.DetectionNs = time.Since(detStart).Nanoseconds()
	bubblesDetected.Observe(float64(len(kept)))
	slog.Debug("Bubbles located",
		"regions", len(regions), "merged", len(merged), "kept", len(kept), "tiles", tiles)

	if len(kept) == 0 {
		out.Processing.TotalNs = time.Since(totalStart).Nanoseconds()
		return out, nil
	}

	recStart := time.Now()
	texts, err := p.recognizeAll(ctx, working, kept, opts)
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}
	out.Processing.RecognitionNs = time.Since(recStart).Nanoseconds()

	trStart := time.Now()
	translated, err := p.translateAll(ctx, texts, opts)
	if err != nil {
		return nil, err
	}
	out.Processing.TranslationNs = time.Since(trStart).Nanoseconds()

	out.Blocks = make([]TextBlock, len(kept))
	for i, r := range kept {
		out.Blocks[i] = newBlock(r, confidenceFor(r, regions), texts[i], translated[i])
	}
	out.Processing.TotalNs = time.Since(totalStart).Nanoseconds()
	return out, nil
}

// confidenceFor is the best detector confidence among regions that ended
// up inside r.
func confidenceFor(r geometry.Rect, regions []detector.Region) float64 {
	var best float64
	for _, reg := range regions {
		if r.Contains(reg.Box) && reg.Confidence > best {
			best = reg.Confidence
		}
	}
	return best
}
