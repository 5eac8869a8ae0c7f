package server

import "github.com/MeKo-Tech/bubblex/internal/pipeline"

// OCRRequest is the JSON body of POST /ocr and of websocket messages.
// Pointer fields override the pipeline defaults when set.
type OCRRequest struct {
	Image          string   `json:"image"`
	TargetLang     string   `json:"target_lang,omitempty"`
	MergeThreshold *float64 `json:"merge_threshold,omitempty"`
	MinWidth       *float64 `json:"min_width,omitempty"`
	MinHeight      *float64 `json:"min_height,omitempty"`
	MinArea        *float64 `json:"min_area,omitempty"`
	Tile           *bool    `json:"tile,omitempty"`
	Overlay        bool     `json:"overlay,omitempty"`
}

// options applies the request overrides to defaults.
func (r OCRRequest) options(defaults pipeline.Options) pipeline.Options {
	o := defaults
	if r.TargetLang != "" {
		o.TargetLang = r.TargetLang
	}
	if r.MergeThreshold != nil {
		o.MergeThreshold = *r.MergeThreshold
	}
	if r.MinWidth != nil {
		o.MinWidth = *r.MinWidth
	}
	if r.MinHeight != nil {
		o.MinHeight = *r.MinHeight
	}
	if r.MinArea != nil {
		o.MinArea = *r.MinArea
	}
	if r.Tile != nil {
		o.Tiling = *r.Tile
	}
	return o
}

// OCRResponse is the success body of POST /ocr.
type OCRResponse struct {
	Text             string               `json:"text"`
	TextBlocks       []pipeline.TextBlock `json:"text_blocks"`
	Success          bool                 `json:"success"`
	BubblesCount     int                  `json:"bubbles_count"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
	Overlay          string               `json:"overlay,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Version string `json:"version,omitempty"`
}

// WSMessage is one server-to-client websocket frame. Type is "progress",
// "result" or "error".
type WSMessage struct {
	Type    string         `json:"type"`
	Stage   pipeline.Stage `json:"stage,omitempty"`
	Current int            `json:"current,omitempty"`
	Total   int            `json:"total,omitempty"`
	Error   string         `json:"error,omitempty"`
	*OCRResponse
}
