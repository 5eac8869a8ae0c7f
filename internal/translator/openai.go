package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAI translates through an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAI builds the backend.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai translator: model is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAI{client: openai.NewClientWithConfig(oc), cfg: cfg}, nil
}

// Translate implements Translator. Blank text is returned as is.
func (o *OpenAI) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	lang := LanguageName(targetLang, o.cfg.DefaultTarget)
	return o.complete(ctx, Prompt(text, lang), o.cfg.MaxTokens)
}

// Probe sends a one-token request to confirm the server answers.
func (o *OpenAI) Probe(ctx context.Context) error {
	_, err := o.complete(ctx, "test", 1)
	return err
}

func (o *OpenAI) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: o.cfg.Temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("translation returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
