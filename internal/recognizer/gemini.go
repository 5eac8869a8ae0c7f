package recognizer

import (
	"context"
	"fmt"
	"image"

	"github.com/MeKo-Tech/bubblex/internal/utils"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when Config.Model is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini sends the crop to Google's Gemini API. Credentials come from
// Config.APIKey or the GOOGLE_* / GEMINI_API_KEY environment variables.
type Gemini struct {
	client *genai.Client
	cfg    Config
}

// NewGemini builds the backend.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if cfg.Model == "" || cfg.Model == "local-model" {
		cfg.Model = DefaultGeminiModel
	}
	return &Gemini{client: client, cfg: cfg}, nil
}

// Name implements Recognizer.
func (g *Gemini) Name() string { return "gemini" }

// Recognize implements Recognizer.
func (g *Gemini) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := utils.EncodePNG(img)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(g.cfg.Prompt),
		genai.NewPartFromBytes(data, "image/png"),
	}, genai.RoleUser)}

	gc := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.cfg.Temperature)}
	if g.cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return PostProcess(resp.Text()), nil
}
