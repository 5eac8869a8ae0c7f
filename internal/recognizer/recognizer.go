// Package recognizer turns cropped text-bubble images into text using a
// pluggable backend: an OpenAI-compatible vision model, Gemini, Google Cloud
// Vision or a local Tesseract install.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultPrompt asks a vision model for the bubble's text only.
const DefaultPrompt = "Extract the text content from this image."

// ErrUnknownProvider is returned by New for unregistered provider names.
var ErrUnknownProvider = errors.New("unknown recognizer provider")

// Recognizer extracts the text shown in a single cropped region.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Name() string
}

// Config selects and tunes a backend. Fields a backend does not use are
// ignored.
type Config struct {
	Provider    string        `mapstructure:"provider" yaml:"provider" json:"provider"`
	Model       string        `mapstructure:"model" yaml:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	APIKey      string        `mapstructure:"api_key" yaml:"api_key" json:"-"`
	Prompt      string        `mapstructure:"prompt" yaml:"prompt" json:"prompt"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	Language    string        `mapstructure:"language" yaml:"language" json:"language"` // tesseract languages, e.g. "eng+jpn"
}

// DefaultConfig targets a local OpenAI-compatible server.
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "local-model",
		BaseURL:     "http://localhost:1234/v1",
		APIKey:      "lm-studio",
		Prompt:      DefaultPrompt,
		Temperature: 0.1,
		MaxTokens:   512,
		Timeout:     60 * time.Second,
		Language:    "eng",
	}
}

// Factory builds a backend from its configuration.
type Factory func(ctx context.Context, cfg Config) (Recognizer, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available to New under name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = f
}

// Providers lists the registered backend names in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Recognizer, error) {
	registryMu.RLock()
	f, ok := registry[strings.ToLower(cfg.Provider)]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, cfg.Provider, strings.Join(Providers(), ", "))
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return f(ctx, cfg)
}

func init() {
	Register("openai", func(_ context.Context, cfg Config) (Recognizer, error) { return NewOpenAI(cfg) })
	Register("gemini", func(ctx context.Context, cfg Config) (Recognizer, error) { return NewGemini(ctx, cfg) })
	Register("vision", func(ctx context.Context, cfg Config) (Recognizer, error) { return NewVision(ctx, cfg) })
	Register("tesseract", func(_ context.Context, cfg Config) (Recognizer, error) { return NewTesseract(cfg) })
}
