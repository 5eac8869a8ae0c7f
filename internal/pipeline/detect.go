package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/bubblex/internal/detector"
	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/tiling"
)

// detect returns regions in img coordinates and the number of tiles used.
// Images larger than the tile size are split, detected per tile, shifted
// back by the tile offset and deduplicated.
func (p *Pipeline) detect(ctx context.Context, img image.Image, opts Options) ([]detector.Region, int, error) {
	progress := opts.progress()
	b := img.Bounds()

	if !opts.Tiling || (b.Dx() <= opts.TileSize && b.Dy() <= opts.TileSize) {
		progress.OnStart(StageDetect, 1)
		regions, err := p.detector.Detect(ctx, img)
		if err != nil {
			progress.OnError(StageDetect, 0, err)
			return nil, 0, err
		}
		progress.OnProgress(StageDetect, 1, 1)
		progress.OnComplete(StageDetect)
		return regions, 1, nil
	}

	tiles, err := tiling.Split(img, opts.TileSize, opts.TileOverlap)
	if err != nil {
		return nil, 0, err
	}
	slog.Debug("Detecting tiled", "tiles", len(tiles), "tile_size", opts.TileSize, "overlap", opts.TileOverlap)

	progress.OnStart(StageDetect, len(tiles))
	var all []detector.Region
	for i, t := range tiles {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		regions, err := p.detector.Detect(ctx, t.Image)
		if err != nil {
			progress.OnError(StageDetect, i, err)
			return nil, 0, fmt.Errorf("tile %d,%d: %w", t.Row, t.Col, err)
		}
		dx, dy := float64(t.Offset.X), float64(t.Offset.Y)
		for _, r := range regions {
			r.Box = r.Box.Translate(dx, dy)
			all = append(all, r)
		}
		progress.OnProgress(StageDetect, i+1, len(tiles))
	}
	progress.OnComplete(StageDetect)

	deduped, err := geometry.Dedupe(all, opts.DedupeIoU)
	if err != nil {
		return nil, 0, err
	}
	return deduped, len(tiles), nil
}
