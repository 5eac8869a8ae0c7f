//go:build cgo

package recognizer

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/MeKo-Tech/bubblex/internal/utils"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs a local Tesseract engine. gosseract clients are not safe
// for concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract builds the backend. Config.Language takes Tesseract codes
// joined by '+', e.g. "eng+jpn".
func NewTesseract(cfg Config) (*Tesseract, error) {
	client := gosseract.NewClient()
	if cfg.Language != "" {
		if err := client.SetLanguage(splitLanguages(cfg.Language)...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set tesseract language: %w", err)
		}
	}
	return &Tesseract{client: client}, nil
}

// Name implements Recognizer.
func (t *Tesseract) Name() string { return "tesseract" }

// Close releases the engine.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := utils.EncodePNG(img)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return NormalizeText(text), nil
}
