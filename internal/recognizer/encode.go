package recognizer

import (
	"encoding/base64"
	"image"

	"github.com/MeKo-Tech/bubblex/internal/utils"
)

// pngDataURL encodes img as a PNG data URL for chat-style vision APIs.
func pngDataURL(img image.Image) (string, error) {
	data, err := utils.EncodePNG(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
