// Package server exposes the pipeline over HTTP and websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Processor is the part of *pipeline.Pipeline the server needs.
type Processor interface {
	Process(ctx context.Context, img image.Image, opts pipeline.Options) (*pipeline.Result, error)
	Defaults() pipeline.Options
}

// RateLimitConfig bounds requests per client IP. Zero limits are off.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxDataPerDay     int64 `mapstructure:"max_data_per_day" yaml:"max_data_per_day" json:"max_data_per_day"`
}

// AuthConfig enables HS256 bearer-token checks on the OCR endpoints when
// Secret is set.
type AuthConfig struct {
	Secret string `mapstructure:"secret" yaml:"secret" json:"-"`
	Issuer string `mapstructure:"issuer" yaml:"issuer" json:"issuer"`
}

// Config holds server settings.
type Config struct {
	Host            string          `mapstructure:"host" yaml:"host" json:"host"`
	Port            int             `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string          `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int64           `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	Timeout         time.Duration   `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayBoxColor string          `mapstructure:"overlay_box_color" yaml:"overlay_box_color" json:"overlay_box_color"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Auth            AuthConfig      `mapstructure:"auth" yaml:"auth" json:"auth"`
	Version         string          `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultConfig listens on localhost:5000.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5000,
		CORSOrigin:      "*",
		MaxUploadMB:     50,
		Timeout:         5 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		OverlayBoxColor: pipeline.DefaultOverlayColor,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
		},
	}
}

// Addr is host:port.
func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// Validate checks the listen address and colours.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB)
	}
	if _, err := pipeline.ParseColor(c.OverlayBoxColor); err != nil {
		return err
	}
	return nil
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	proc        Processor
	cfg         Config
	boxColor    color.Color
	rateLimiter *RateLimiter
	auth        *tokenVerifier
}

// New creates a server around proc.
func New(cfg Config, proc Processor) (*Server, error) {
	if proc == nil {
		return nil, errors.New("processor is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	boxColor, _ := pipeline.ParseColor(cfg.OverlayBoxColor)

	s := &Server{proc: proc, cfg: cfg, boxColor: boxColor}
	if cfg.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(cfg.RateLimit)
	}
	if cfg.Auth.Secret != "" {
		s.auth = &tokenVerifier{secret: []byte(cfg.Auth.Secret), issuer: cfg.Auth.Issuer}
	}
	return s, nil
}

// SetupRoutes registers every endpoint on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ocr", s.corsMiddleware(s.rateLimitMiddleware(s.authMiddleware(s.ocrHandler))))
	mux.HandleFunc("/ws/ocr", s.rateLimitMiddleware(s.authMiddleware(s.ocrWebSocketHandler)))
}

// Handler returns a mux with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting bubblex server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
