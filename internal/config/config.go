//nolint:lll
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/bubblex/internal/detector"
	"github.com/MeKo-Tech/bubblex/internal/models"
	"github.com/MeKo-Tech/bubblex/internal/onnx"
	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/MeKo-Tech/bubblex/internal/recognizer"
	"github.com/MeKo-Tech/bubblex/internal/server"
	"github.com/MeKo-Tech/bubblex/internal/translator"
)

// Config represents the complete configuration for bubblex.
// It is loaded from configuration files, environment variables and
// command-line flags.
type Config struct {
	// Global settings
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline   pipeline.Options  `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Detector   DetectorConfig    `mapstructure:"detector" yaml:"detector" json:"detector"`
	Recognizer recognizer.Config `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Translator translator.Config `mapstructure:"translator" yaml:"translator" json:"translator"`
	Server     server.Config     `mapstructure:"server" yaml:"server" json:"server"`
	Output     OutputConfig      `mapstructure:"output" yaml:"output" json:"output"`
	Models     ModelsConfig      `mapstructure:"models" yaml:"models" json:"models"`
}

// DetectorConfig contains text detection settings.
type DetectorConfig struct {
	ModelPath    string         `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	UseServer    bool           `mapstructure:"use_server_model" yaml:"use_server_model" json:"use_server_model"`
	LibraryPath  string         `mapstructure:"library_path" yaml:"library_path" json:"library_path"`
	DbThresh     float32        `mapstructure:"db_thresh" yaml:"db_thresh" json:"db_thresh"`
	BoxThresh    float32        `mapstructure:"box_thresh" yaml:"box_thresh" json:"box_thresh"`
	UnclipRatio  float64        `mapstructure:"unclip_ratio" yaml:"unclip_ratio" json:"unclip_ratio"`
	MaxImageSize int            `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`
	NumThreads   int            `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	GPU          onnx.GPUConfig `mapstructure:"gpu" yaml:"gpu" json:"gpu"`
}

// OutputConfig contains CLI output settings.
type OutputConfig struct {
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	OverlayBoxColor string `mapstructure:"overlay_box_color" yaml:"overlay_box_color" json:"overlay_box_color"`
	OverlayWidth    int    `mapstructure:"overlay_width" yaml:"overlay_width" json:"overlay_width"`
}

// ModelsConfig contains model download settings.
type ModelsConfig struct {
	Repository string `mapstructure:"repository" yaml:"repository" json:"repository"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	det := detector.DefaultConfig()
	return Config{
		ModelsDir: models.DefaultModelsDir,
		LogLevel:  "info",
		LogFormat: "json",
		Pipeline:  pipeline.DefaultOptions(),
		Detector: DetectorConfig{
			DbThresh:     det.DbThresh,
			BoxThresh:    det.BoxThresh,
			UnclipRatio:  det.UnclipRatio,
			MaxImageSize: det.MaxImageSize,
			NumThreads:   det.NumThreads,
			GPU:          det.GPU,
		},
		Recognizer: recognizer.DefaultConfig(),
		Translator: translator.DefaultConfig(),
		Server:     server.DefaultConfig(),
		Output: OutputConfig{
			Format:          "text",
			OverlayBoxColor: pipeline.DefaultOverlayColor,
			OverlayWidth:    3,
		},
		Models: ModelsConfig{Repository: models.DefaultRepository},
	}
}

// Validate checks the settings that do not need the model files.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	validLogFormats := []string{"text", "json"}
	if c.LogFormat != "" && !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format: %s (must be one of: %s)", c.LogFormat, strings.Join(validLogFormats, ", "))
	}
	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}
	if _, err := pipeline.ParseColor(c.Output.OverlayBoxColor); err != nil {
		return fmt.Errorf("invalid overlay color: %w", err)
	}

	var errs []error
	if err := validateThreshold(float64(c.Detector.DbThresh), "detector.db_thresh"); err != nil {
		errs = append(errs, err)
	}
	if err := validateThreshold(float64(c.Detector.BoxThresh), "detector.box_thresh"); err != nil {
		errs = append(errs, err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if c.Recognizer.Provider == "" {
		errs = append(errs, errors.New("recognizer.provider cannot be empty"))
	}
	return errors.Join(errs...)
}

// DetectorModelPath is the configured model path, or the resolved default
// under the models directory.
func (c *Config) DetectorModelPath() string {
	if c.Detector.ModelPath != "" {
		return c.Detector.ModelPath
	}
	return models.DetectionModelPath(c.ModelsDir, c.Detector.UseServer)
}

// ToPipelineConfig converts the config to the pipeline builder format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Detector:   c.toDetectorConfig(),
		Recognizer: c.Recognizer,
		Translator: c.Translator,
		Options:    c.Pipeline,
	}
}

// ToServerConfig returns the server settings with the CLI overlay colour
// as fallback.
func (c *Config) ToServerConfig() server.Config {
	cfg := c.Server
	if cfg.OverlayBoxColor == "" {
		cfg.OverlayBoxColor = c.Output.OverlayBoxColor
	}
	return cfg
}

func (c *Config) toDetectorConfig() detector.Config {
	return detector.Config{
		ModelPath:    c.DetectorModelPath(),
		LibraryPath:  c.Detector.LibraryPath,
		DbThresh:     c.Detector.DbThresh,
		BoxThresh:    c.Detector.BoxThresh,
		UnclipRatio:  c.Detector.UnclipRatio,
		MaxImageSize: c.Detector.MaxImageSize,
		NumThreads:   c.Detector.NumThreads,
		GPU:          c.Detector.GPU,
	}
}

// validateThreshold validates that a threshold value is between 0.0 and 1.0.
func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("invalid %s: %f (must be between 0.0 and 1.0)", name, value)
	}
	return nil
}
