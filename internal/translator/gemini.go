package translator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when Config.Model is empty or left at the
// local-server placeholder.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini translates through the Gemini API.
type Gemini struct {
	client *genai.Client
	cfg    Config
}

// NewGemini builds the backend. Without an API key the client reads the
// GOOGLE_* environment variables.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" && cfg.APIKey != "lm-studio" {
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

// Translate implements Translator.
func (g *Gemini) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	lang := LanguageName(targetLang, g.cfg.DefaultTarget)
	return g.generate(ctx, Prompt(text, lang), int32(g.cfg.MaxTokens))
}

// Probe implements Prober.
func (g *Gemini) Probe(ctx context.Context) error {
	_, err := g.generate(ctx, "test", 1)
	return err
}

func (g *Gemini) generate(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	gc := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.cfg.Temperature)}
	if maxTokens > 0 {
		gc.MaxOutputTokens = maxTokens
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
