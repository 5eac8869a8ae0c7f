package pipeline

import (
	"strings"

	"github.com/MeKo-Tech/bubblex/internal/geometry"
)

const (
	// BlockTypeBubble is the only block type produced.
	BlockTypeBubble = "text_bubble"
	// StyleNormal is the only style produced.
	StyleNormal = "normal"
)

// BBox is a block rectangle in image pixels.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// BBoxOf converts a geometry rectangle.
func BBoxOf(r geometry.Rect) BBox {
	return BBox{X0: r.MinX, Y0: r.MinY, X1: r.MaxX, Y1: r.MaxY}
}

// Rect converts back to a geometry rectangle.
func (b BBox) Rect() geometry.Rect {
	return geometry.Rect{MinX: b.X0, MinY: b.Y0, MaxX: b.X1, MaxY: b.Y1}
}

// TextBlock is one speech bubble with its recognized and translated text.
// Text holds the translation when one was produced and differs from the
// original, otherwise the original.
type TextBlock struct {
	Text           string  `json:"text"`
	OriginalText   string  `json:"original_text"`
	TranslatedText *string `json:"translated_text"`
	BBox           BBox    `json:"bbox"`
	Type           string  `json:"type"`
	Style          string  `json:"style"`
	Confidence     float64 `json:"confidence"`
}

// Result is the output of one Process call.
type Result struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Blocks     []TextBlock `json:"text_blocks"`
	Tiles      int         `json:"tiles"`
	Processing struct {
		DetectionNs   int64 `json:"detection_ns"`
		RecognitionNs int64 `json:"recognition_ns"`
		TranslationNs int64 `json:"translation_ns"`
		TotalNs       int64 `json:"total_ns"`
	} `json:"processing"`
}

// Text joins the block texts with newlines.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	texts := make([]string, len(r.Blocks))
	for i, b := range r.Blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n")
}

func newBlock(rect geometry.Rect, conf float64, original, translated string) TextBlock {
	b := TextBlock{
		Text:         original,
		OriginalText: original,
		BBox:         BBoxOf(rect),
		Type:         BlockTypeBubble,
		Style:        StyleNormal,
		Confidence:   conf,
	}
	if translated != "" && translated != original {
		t := translated
		b.Text = t
		b.TranslatedText = &t
	}
	return b
}
