package detector

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/bubblex/internal/onnx"
	"github.com/yalue/onnxruntime_go"
)

// Config holds configuration for the text detector.
type Config struct {
	ModelPath    string         // Path to the ONNX DB detection model
	LibraryPath  string         // Optional ONNX Runtime shared library path
	DbThresh     float32        // Probability threshold for the binary mask (default: 0.3)
	BoxThresh    float32        // Minimum mean probability of a kept region (default: 0.5)
	UnclipRatio  float64        // DB unclip ratio used to grow shrunk regions (default: 1.5)
	MaxImageSize int            // Longest side fed to the model (default: 960)
	NumThreads   int            // Intra-op threads, 0 for runtime default
	GPU          onnx.GPUConfig // CUDA execution provider settings
}

// DefaultConfig returns a default detector configuration.
func DefaultConfig() Config {
	return Config{
		DbThresh:     0.3,
		BoxThresh:    0.5,
		UnclipRatio:  1.5,
		MaxImageSize: 960,
		GPU:          onnx.DefaultGPUConfig(),
	}
}

// Validate checks the thresholds and sizes.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return errors.New("model path cannot be empty")
	}
	if c.DbThresh <= 0 || c.DbThresh >= 1 {
		return fmt.Errorf("db threshold must be in (0,1), got %v", c.DbThresh)
	}
	if c.BoxThresh < 0 || c.BoxThresh > 1 {
		return fmt.Errorf("box threshold must be in [0,1], got %v", c.BoxThresh)
	}
	if c.UnclipRatio < 0 {
		return fmt.Errorf("unclip ratio must be non-negative, got %v", c.UnclipRatio)
	}
	if c.MaxImageSize < 32 {
		return fmt.Errorf("max image size must be at least 32, got %d", c.MaxImageSize)
	}
	return c.GPU.Validate()
}

// validateModelFile checks if the model file exists.
func validateModelFile(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// modelIO reads and checks the model's single 4D input and single output.
func modelIO(modelPath string) (onnxruntime_go.InputOutputInfo, onnxruntime_go.InputOutputInfo, error) {
	var none onnxruntime_go.InputOutputInfo
	inputs, outputs, err := onnxruntime_go.GetInputOutputInfo(modelPath)
	if err != nil {
		return none, none, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return none, none, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(outputs) != 1 {
		return none, none, fmt.Errorf("expected 1 output, got %d", len(outputs))
	}
	if len(inputs[0].Dimensions) != 4 {
		return none, none, fmt.Errorf("expected 4D input tensor, got %dD", len(inputs[0].Dimensions))
	}
	return inputs[0], outputs[0], nil
}
