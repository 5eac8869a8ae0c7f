package pipeline

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/bubblex/internal/enhance"
	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/tiling"
)

// Options tune a single Process call.
type Options struct {
	MergeThreshold float64         `mapstructure:"merge_threshold" yaml:"merge_threshold" json:"merge_threshold"`
	MinWidth       float64         `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MinHeight      float64         `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
	MinArea        float64         `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
	Tiling         bool            `mapstructure:"tiling" yaml:"tiling" json:"tiling"`
	TileSize       int             `mapstructure:"tile_size" yaml:"tile_size" json:"tile_size"`
	TileOverlap    int             `mapstructure:"tile_overlap" yaml:"tile_overlap" json:"tile_overlap"`
	DedupeIoU      float64         `mapstructure:"dedupe_iou" yaml:"dedupe_iou" json:"dedupe_iou"`
	Workers        int             `mapstructure:"workers" yaml:"workers" json:"workers"`
	Enhance        enhance.Options `mapstructure:"enhance" yaml:"enhance" json:"enhance"`
	TargetLang     string          `mapstructure:"target_lang" yaml:"target_lang" json:"target_lang"`

	Progress ProgressCallback `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultOptions returns the stock pipeline settings.
func DefaultOptions() Options {
	return Options{
		MergeThreshold: 10,
		MinWidth:       30,
		MinHeight:      30,
		MinArea:        900,
		Tiling:         true,
		TileSize:       tiling.DefaultMaxSize,
		TileOverlap:    tiling.DefaultOverlap,
		DedupeIoU:      geometry.DefaultIoUThreshold,
		Workers:        1,
		Enhance:        enhance.DefaultOptions(),
		TargetLang:     "Korean",
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	var errs []error
	if o.MergeThreshold < 0 {
		errs = append(errs, fmt.Errorf("merge threshold must be >= 0, got %g", o.MergeThreshold))
	}
	if o.MinWidth < 0 || o.MinHeight < 0 || o.MinArea < 0 {
		errs = append(errs, errors.New("minimum sizes must be >= 0"))
	}
	if o.Tiling {
		if o.TileSize <= 0 {
			errs = append(errs, fmt.Errorf("tile size must be > 0, got %d", o.TileSize))
		} else if o.TileOverlap < 0 || o.TileOverlap >= o.TileSize {
			errs = append(errs, fmt.Errorf("tile overlap must be in [0, %d), got %d", o.TileSize, o.TileOverlap))
		}
	}
	if o.DedupeIoU < 0 || o.DedupeIoU > 1 {
		errs = append(errs, fmt.Errorf("dedupe IoU must be in [0, 1], got %g", o.DedupeIoU))
	}
	if o.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", o.Workers))
	}
	return errors.Join(errs...)
}

func (o Options) progress() ProgressCallback {
	if o.Progress == nil {
		return NoOpProgressCallback{}
	}
	return o.Progress
}
