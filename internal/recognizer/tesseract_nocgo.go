//go:build !cgo

package recognizer

import (
	"context"
	"errors"
	"image"
)

var errNoCgo = errors.New("tesseract recognizer requires a cgo build")

// Tesseract is unavailable without cgo.
type Tesseract struct{}

// NewTesseract always fails in builds without cgo.
func NewTesseract(Config) (*Tesseract, error) { return nil, errNoCgo }

// Name implements Recognizer.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(context.Context, image.Image) (string, error) { return "", errNoCgo }
