package cmd

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/bubblex/internal/config"
	"github.com/MeKo-Tech/bubblex/internal/models"
	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/MeKo-Tech/bubblex/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bubblex",
	Short: "Speech bubble OCR and translation",
	Long: `bubblex finds the speech bubbles on a comic or manga page, reads the
text inside each one and translates it.

It can run as a one-shot CLI over image files or as an HTTP service with a
JSON endpoint and a WebSocket endpoint that streams progress.

Examples:
  bubblex image page.png
  bubblex image page.png --format json --target-lang Japanese
  bubblex serve --port 8080
  bubblex models download`,
	Version:      version.String(),
	SilenceUsage: true,
}

// GetRootCommand returns the root command for main and tests.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, /etc/bubblex, $XDG_CONFIG_HOME/bubblex)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().String("models-dir", models.DefaultModelsDir,
		"directory containing ONNX models (can also be set via "+models.EnvModelsDir+")")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("models_dir", rootCmd.PersistentFlags().Lookup("models-dir"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg))
		return nil
	}
}

// loadConfig reads the config file, environment and bound flags.
func loadConfig() (*config.Config, error) {
	configLoader = config.NewLoader()
	cfg, err := configLoader.LoadWithFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	globalConfig = cfg
	return cfg, nil
}

// GetConfig returns the configuration loaded for the running command.
func GetConfig() *config.Config {
	if globalConfig == nil {
		cfg := config.DefaultConfig()
		return &cfg
	}
	return globalConfig
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ocrProcessor is the part of *pipeline.Pipeline the commands use.
type ocrProcessor interface {
	Process(ctx context.Context, img image.Image, opts pipeline.Options) (*pipeline.Result, error)
	Defaults() pipeline.Options
	Close() error
}

// newProcessor builds the pipeline. Tests replace it.
var newProcessor = func(ctx context.Context, cfg pipeline.Config) (ocrProcessor, error) {
	p, err := pipeline.NewBuilderFromConfig(cfg).Build(ctx)
	if err != nil {
		return nil, err
	}
	return p, nil
}
