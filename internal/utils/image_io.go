package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when an upload carries no image data.
var ErrEmptyImage = errors.New("no image")

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp", ".tif", ".tiff"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadImage opens and decodes an image file.
func LoadImage(path string) (image.Image, string, error) {
	if path == "" {
		return nil, "", &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, "", &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: reading a user-provided image path is expected
	if err != nil {
		return nil, "", &ImageProcessingError{Operation: "load", Err: err}
	}
	return DecodeImage(data)
}

// DecodeImage decodes any registered format.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &ImageProcessingError{Operation: "decode", Err: err}
	}
	return img, format, nil
}

// DecodeBase64Image decodes a base64 payload. Anything up to the first
// comma (a data URL header such as "data:image/png;base64,") is dropped.
func DecodeBase64Image(payload string) (image.Image, string, error) {
	payload = strings.TrimSpace(payload)
	if _, rest, ok := strings.Cut(payload, ","); ok {
		payload = rest
	}
	if payload == "" {
		return nil, "", ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, "", &ImageProcessingError{Operation: "base64", Err: err}
		}
	}
	return DecodeImage(data)
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &ImageProcessingError{Operation: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

// EncodePNGBase64 encodes img as a base64 PNG without a data URL header.
func EncodePNGBase64(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// SavePNG writes img to path as PNG.
func SavePNG(img image.Image, path string) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	return nil
}
