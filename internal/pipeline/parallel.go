package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/utils"
)

type job struct {
	index int
}

type jobResult[T any] struct {
	index int
	value T
	err   error
}

// runPool calls fn for every index in [0, n) on up to workers goroutines
// and returns the values in index order. The first error cancels the
// remaining jobs.
func runPool[T any](
	ctx context.Context,
	workers, n int,
	stage Stage,
	progress ProgressCallback,
	fn func(ctx context.Context, i int) (T, error),
) ([]T, error) {
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = 1
	}
	workers = min(workers, n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress.OnStart(stage, n)
	defer progress.OnComplete(stage)

	jobs := make(chan job, n)
	results := make(chan jobResult[T], n)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case j, ok := <-jobs:
					if !ok {
						return
					}
					v, err := fn(ctx, j.index)
					select {
					case results <- jobResult[T]{index: j.index, value: v, err: err}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range n {
			select {
			case jobs <- job{index: i}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	done := 0
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("region %d: %w", r.index, r.err)
				progress.OnError(stage, r.index, r.err)
				cancel()
			}
			continue
		}
		out[r.index] = r.value
		done++
		progress.OnProgress(stage, done, n)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// recognizeAll crops every rectangle from img and recognizes it.
func (p *Pipeline) recognizeAll(ctx context.Context, img image.Image, rects []geometry.Rect, opts Options) ([]string, error) {
	return runPool(ctx, opts.Workers, len(rects), StageRecognize, opts.progress(),
		func(ctx context.Context, i int) (string, error) {
			crop := utils.CropRect(img, rects[i])
			if crop.Bounds().Empty() {
				return "", nil
			}
			return p.recognizer.Recognize(ctx, crop)
		})
}

// translateAll translates every non-blank text. A failed translation falls
// back to an empty result, which leaves the block untranslated.
func (p *Pipeline) translateAll(ctx context.Context, texts []string, opts Options) ([]string, error) {
	return runPool(ctx, opts.Workers, len(texts), StageTranslate, opts.progress(),
		func(ctx context.Context, i int) (string, error) {
			if strings.TrimSpace(texts[i]) == "" {
				return "", nil
			}
			out, err := p.translator.Translate(ctx, texts[i], opts.TargetLang)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				translationFallbacks.Inc()
				slog.Warn("Translation failed, keeping original text", "region", i, "error", err)
				return "", nil
			}
			return out, nil
		})
}
