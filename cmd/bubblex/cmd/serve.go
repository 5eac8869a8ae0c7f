package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/server"
	"github.com/MeKo-Tech/bubblex/internal/version"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP OCR and translation service",
	Long: `Start an HTTP server for speech bubble OCR and translation.

Endpoints:
  POST /ocr      - JSON {"image": "<base64>", ...}, returns text blocks
  GET  /ws/ocr   - WebSocket, streams progress frames then the result
  GET  /health   - Health check
  GET  /metrics  - Prometheus metrics

Examples:
  bubblex serve
  bubblex serve --port 8080
  bubblex serve --host 0.0.0.0 --rate-limit-enabled`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		scfg := cfg.ToServerConfig()

		if cmd.Flags().Changed("host") {
			scfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			scfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("cors-origin") {
			scfg.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		if cmd.Flags().Changed("max-upload-size") {
			scfg.MaxUploadMB, _ = cmd.Flags().GetInt64("max-upload-size")
		}
		if cmd.Flags().Changed("timeout") {
			scfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
		}
		if cmd.Flags().Changed("shutdown-timeout") {
			scfg.ShutdownTimeout, _ = cmd.Flags().GetDuration("shutdown-timeout")
		}
		if cmd.Flags().Changed("rate-limit-enabled") {
			scfg.RateLimit.Enabled, _ = cmd.Flags().GetBool("rate-limit-enabled")
		}
		if cmd.Flags().Changed("requests-per-minute") {
			scfg.RateLimit.RequestsPerMinute, _ = cmd.Flags().GetInt("requests-per-minute")
		}
		if cmd.Flags().Changed("requests-per-hour") {
			scfg.RateLimit.RequestsPerHour, _ = cmd.Flags().GetInt("requests-per-hour")
		}
		if cmd.Flags().Changed("auth-secret") {
			scfg.Auth.Secret, _ = cmd.Flags().GetString("auth-secret")
		}
		scfg.Version = version.Version

		if scfg.Port < 1 || scfg.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", scfg.Port)
		}

		pcfg := cfg.ToPipelineConfig()
		if cmd.Flags().Changed("target-lang") {
			pcfg.Options.TargetLang, _ = cmd.Flags().GetString("target-lang")
		}
		if cmd.Flags().Changed("workers") {
			pcfg.Options.Workers, _ = cmd.Flags().GetInt("workers")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		proc, err := newProcessor(ctx, pcfg)
		if err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
		defer func() {
			if err := proc.Close(); err != nil {
				slog.Warn("Pipeline close failed", "error", err)
			}
		}()

		srv, err := server.New(scfg, proc)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		slog.Info("Pipeline ready",
			"addr", scfg.Addr(),
			"target_lang", pcfg.Options.TargetLang,
			"recognizer", pcfg.Recognizer.Provider,
			"translator", pcfg.Translator.Provider,
			"rate_limit", scfg.RateLimit.Enabled,
			"auth", scfg.Auth.Secret != "")
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 5000, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origin")
	serveCmd.Flags().Int64("max-upload-size", 50, "maximum request body size in MB")
	serveCmd.Flags().Duration("timeout", 5*time.Minute, "per-request processing timeout")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable per-client rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "requests per hour per client")
	serveCmd.Flags().String("auth-secret", "", "HS256 secret; when set, /ocr requires a bearer token")
	serveCmd.Flags().String("target-lang", "Korean", "default translation target language")
	serveCmd.Flags().Int("workers", 1, "concurrent recognition/translation requests")
}
