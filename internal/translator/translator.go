// Package translator translates recognized bubble text through a chat
// model, with an optional Redis cache in front.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownProvider is returned by New for unsupported provider names.
var ErrUnknownProvider = errors.New("unknown translator provider")

// Translator translates text into targetLang, a language name or tag.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Prober is implemented by backends that can check reachability cheaply.
type Prober interface {
	Probe(ctx context.Context) error
}

// CacheConfig configures the Redis translation cache. An empty RedisURL
// disables caching.
type CacheConfig struct {
	RedisURL  string        `mapstructure:"redis_url" yaml:"redis_url" json:"redis_url"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
	Namespace string        `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
}

// Config selects and tunes the translation backend.
type Config struct {
	Provider      string        `mapstructure:"provider" yaml:"provider" json:"provider"` // openai, gemini or none
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	APIKey        string        `mapstructure:"api_key" yaml:"api_key" json:"-"`
	Model         string        `mapstructure:"model" yaml:"model" json:"model"`
	Temperature   float32       `mapstructure:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	DefaultTarget string        `mapstructure:"default_target" yaml:"default_target" json:"default_target"`
	Probe         bool          `mapstructure:"probe" yaml:"probe" json:"probe"`
	ProbeRetries  uint64        `mapstructure:"probe_retries" yaml:"probe_retries" json:"probe_retries"`
	Cache         CacheConfig   `mapstructure:"cache" yaml:"cache" json:"cache"`
}

// DefaultConfig targets LM Studio on localhost.
func DefaultConfig() Config {
	return Config{
		Provider:      "openai",
		BaseURL:       "http://localhost:1234/v1",
		APIKey:        "lm-studio",
		Model:         "local-model",
		Temperature:   0.1,
		MaxTokens:     256,
		Timeout:       30 * time.Second,
		DefaultTarget: "Korean",
		Probe:         true,
		ProbeRetries:  3,
		Cache: CacheConfig{
			TTL:       24 * time.Hour,
			Namespace: "bubblex:tr",
		},
	}
}

// Prompt builds the completion-style instruction sent to the model.
func Prompt(text, lang string) string {
	return fmt.Sprintf("Translate the following text into %s.\nText: %s\n%s:", lang, text, lang)
}

// New builds the backend named by cfg.Provider. Provider "none" returns a
// translator that echoes its input.
func New(ctx context.Context, cfg Config) (Translator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return NewOpenAI(cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	case "none", "passthrough":
		return Passthrough{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Passthrough returns text unchanged.
type Passthrough struct{}

// Translate implements Translator.
func (Passthrough) Translate(_ context.Context, text, _ string) (string, error) { return text, nil }
