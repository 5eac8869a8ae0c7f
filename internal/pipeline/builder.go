package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/detector"
	"github.com/MeKo-Tech/bubblex/internal/recognizer"
	"github.com/MeKo-Tech/bubblex/internal/translator"
)

// Config holds component settings for a pipeline built from configuration.
type Config struct {
	Detector   detector.Config
	Recognizer recognizer.Config
	Translator translator.Config
	Options    Options
}

// DefaultConfig returns component defaults.
func DefaultConfig() Config {
	return Config{
		Detector:   detector.DefaultConfig(),
		Recognizer: recognizer.DefaultConfig(),
		Translator: translator.DefaultConfig(),
		Options:    DefaultOptions(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder starts from DefaultConfig.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// NewBuilderFromConfig starts from cfg.
func NewBuilderFromConfig(cfg Config) *Builder { return &Builder{cfg: cfg} }

// WithDetectorModelPath overrides the detector model path.
func (b *Builder) WithDetectorModelPath(path string) *Builder {
	if path != "" {
		b.cfg.Detector.ModelPath = path
	}
	return b
}

// WithDetectorThresholds sets DB thresholds.
func (b *Builder) WithDetectorThresholds(dbThresh, boxThresh float32) *Builder {
	b.cfg.Detector.DbThresh = dbThresh
	b.cfg.Detector.BoxThresh = boxThresh
	return b
}

// WithRecognizerProvider selects the recognizer backend.
func (b *Builder) WithRecognizerProvider(provider string) *Builder {
	if provider != "" {
		b.cfg.Recognizer.Provider = provider
	}
	return b
}

// WithTranslatorProvider selects the translator backend.
func (b *Builder) WithTranslatorProvider(provider string) *Builder {
	if provider != "" {
		b.cfg.Translator.Provider = provider
	}
	return b
}

// WithTargetLanguage sets the default translation target.
func (b *Builder) WithTargetLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Options.TargetLang = lang
	}
	return b
}

// WithWorkers sets the recognition/translation pool size.
func (b *Builder) WithWorkers(n int) *Builder {
	b.cfg.Options.Workers = n
	return b
}

// WithOptions replaces the default per-request options.
func (b *Builder) WithOptions(o Options) *Builder {
	b.cfg.Options = o
	return b
}

// Config returns the current configuration.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks the configuration without loading anything.
func (b *Builder) Validate() error {
	var errs []error
	if err := b.cfg.Detector.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("detector: %w", err))
	}
	if err := b.cfg.Options.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("options: %w", err))
	}
	return errors.Join(errs...)
}

// Build loads the detector model and creates the recognizer and translator
// clients. The translator is wrapped in a Redis cache when a URL is set and
// probed when enabled; probe or cache failures only log.
func (b *Builder) Build(ctx context.Context) (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	det, err := detector.New(b.cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector: %w", err)
	}

	rec, err := recognizer.New(ctx, b.cfg.Recognizer)
	if err != nil {
		_ = det.Close()
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	tr, rdbCloser, err := buildTranslator(ctx, b.cfg.Translator)
	if err != nil {
		_ = det.Close()
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	p, err := New(det, rec, tr, b.cfg.Options)
	if err != nil {
		_ = det.Close()
		return nil, err
	}
	p.own(det)
	p.own(rec)
	if rdbCloser != nil {
		p.own(rdbCloser)
	}
	slog.Info("Pipeline ready",
		"detector", b.cfg.Detector.ModelPath,
		"recognizer", rec.Name(),
		"translator", b.cfg.Translator.Provider)
	return p, nil
}

func buildTranslator(ctx context.Context, cfg translator.Config) (translator.Translator, io.Closer, error) {
	tr, err := translator.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var owned io.Closer
	if cfg.Cache.RedisURL != "" {
		rdb, err := translator.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			slog.Warn("Translation cache disabled", "error", err)
		} else {
			tr = translator.NewCached(tr, rdb, cfg.Cache.TTL, cfg.Cache.Namespace)
			owned = rdb
		}
	}

	if cfg.Probe {
		probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := translator.ProbeWithRetry(probeCtx, tr, cfg.ProbeRetries, 2*time.Second); err != nil {
			slog.Warn("Translator probe failed, translations will fall back to the original text",
				"base_url", cfg.BaseURL, "error", err)
		} else {
			slog.Info("Translator reachable", "base_url", cfg.BaseURL, "model", cfg.Model)
		}
	}
	return tr, owned, nil
}
