package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/bubblex/internal/utils"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultOverlayColor is the box outline colour used when none is set.
const DefaultOverlayColor = "#ff3b30"

// ParseColor parses a "#rrggbb" or "#rgb" colour.
func ParseColor(hex string) (color.Color, error) {
	if hex == "" {
		hex = DefaultOverlayColor
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// RenderOverlay draws the block boxes over a copy of img.
func RenderOverlay(img image.Image, res *Result, boxColor color.Color, thickness int) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.CloneRGBA(img)
	if res == nil {
		return dst
	}
	for _, blk := range res.Blocks {
		rect := blk.BBox.Rect().ToImageRect(dst.Bounds())
		utils.DrawRect(dst, rect, boxColor, thickness)
	}
	return dst
}
