// Package tiling splits images that exceed the detector's working size into
// overlapping tiles.
package tiling

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Defaults used by the tiled detection path.
const (
	DefaultMaxSize = 1500
	DefaultOverlap = 750
)

// ErrInvalidStride is wrapped by ConfigurationError.
var ErrInvalidStride = errors.New("tile overlap must be smaller than tile size")

// ConfigurationError reports tiling parameters that leave no forward stride.
type ConfigurationError struct {
	MaxSize int
	Overlap int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v (max_size=%d, overlap=%d)", ErrInvalidStride, e.MaxSize, e.Overlap)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidStride }

// Tile is a cropped view of a source image.
type Tile struct {
	Image  image.Image
	Offset image.Point // top-left corner in source coordinates
	Row    int
	Col    int
	Width  int
	Height int
}

// Bounds returns the tile's region in source coordinates.
func (t Tile) Bounds() image.Rectangle {
	return image.Rect(t.Offset.X, t.Offset.Y, t.Offset.X+t.Width, t.Offset.Y+t.Height)
}

// Cell is a planned tile position without pixel data.
type Cell struct {
	Row, Col int
	Rect     image.Rectangle // relative to the image origin
}

// PlanTiles computes the tile grid for a width x height image.
//
// Images that fit within maxSize on both axes produce a single cell.
// Otherwise tiles advance by maxSize-overlap and the last row and column are
// pulled back so they end flush with the image edge.
func PlanTiles(width, height, maxSize, overlap int) ([]Cell, error) {
	if width <= maxSize && height <= maxSize {
		return []Cell{{Rect: image.Rect(0, 0, width, height)}}, nil
	}

	stride := maxSize - overlap
	if stride <= 0 {
		return nil, &ConfigurationError{MaxSize: maxSize, Overlap: overlap}
	}

	cols := ceilDiv(width-overlap, stride)
	rows := ceilDiv(height-overlap, stride)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([]Cell, 0, rows*cols)
	for row := range rows {
		y0 := row * stride
		if row == rows-1 {
			y0 = max(0, height-maxSize)
		}
		y1 := min(y0+maxSize, height)
		for col := range cols {
			x0 := col * stride
			if col == cols-1 {
				x0 = max(0, width-maxSize)
			}
			x1 := min(x0+maxSize, width)
			cells = append(cells, Cell{Row: row, Col: col, Rect: image.Rect(x0, y0, x1, y1)})
		}
	}
	return cells, nil
}

// Split crops img into the tiles planned by PlanTiles.
func Split(img image.Image, maxSize, overlap int) ([]Tile, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	b := img.Bounds()
	cells, err := PlanTiles(b.Dx(), b.Dy(), maxSize, overlap)
	if err != nil {
		return nil, err
	}

	tiles := make([]Tile, 0, len(cells))
	for _, c := range cells {
		var sub image.Image = img
		if len(cells) > 1 {
			sub = imaging.Crop(img, c.Rect.Add(b.Min))
		}
		tiles = append(tiles, Tile{
			Image:  sub,
			Offset: c.Rect.Min,
			Row:    c.Row,
			Col:    c.Col,
			Width:  c.Rect.Dx(),
			Height: c.Rect.Dy(),
		})
	}
	return tiles, nil
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
