package recognizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAI talks to any server implementing the OpenAI chat completions API
// with image inputs (OpenAI, LM Studio, vLLM, Ollama).
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAI builds the backend. An empty APIKey falls back to OPENAI_API_KEY.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai recognizer: model is required")
	}
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return &OpenAI{client: openai.NewClientWithConfig(oc), cfg: cfg}, nil
}

// Name implements Recognizer.
func (o *OpenAI) Name() string { return "openai" }

// Recognize implements Recognizer.
func (o *OpenAI) Recognize(ctx context.Context, img image.Image) (string, error) {
	url, err := pngDataURL(img)
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: o.cfg.Prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    url,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		}},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai recognition request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai recognition returned no choices")
	}
	return PostProcess(resp.Choices[0].Message.Content), nil
}
