package onnx

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/yalue/onnxruntime_go"
)

// GPUConfig selects the CUDA execution provider for a session.
type GPUConfig struct {
	UseGPU      bool   `mapstructure:"use_gpu" yaml:"use_gpu" json:"use_gpu"`
	DeviceID    int    `mapstructure:"device_id" yaml:"device_id" json:"device_id"`
	GPUMemLimit uint64 `mapstructure:"mem_limit" yaml:"mem_limit" json:"mem_limit"` // bytes, 0 = unlimited
}

// DefaultGPUConfig runs on CPU.
func DefaultGPUConfig() GPUConfig {
	return GPUConfig{}
}

// Validate checks the device selection.
func (c GPUConfig) Validate() error {
	if c.UseGPU && c.DeviceID < 0 {
		return fmt.Errorf("device ID must be non-negative, got %d", c.DeviceID)
	}
	return nil
}

// providerSettings returns the CUDA provider options for c.
func (c GPUConfig) providerSettings() map[string]string {
	settings := map[string]string{
		"device_id":                 strconv.Itoa(c.DeviceID),
		"arena_extend_strategy":     "kNextPowerOfTwo",
		"cudnn_conv_algo_search":    "DEFAULT",
		"do_copy_in_default_stream": "1",
	}
	if c.GPUMemLimit > 0 {
		settings["gpu_mem_limit"] = strconv.FormatUint(c.GPUMemLimit, 10)
	}
	return settings
}

// NewSessionOptions builds session options with the requested thread count
// and, if enabled, the CUDA execution provider. The caller owns the result.
func NewSessionOptions(gpu GPUConfig, numThreads int) (*onnxruntime_go.SessionOptions, error) {
	opts, err := onnxruntime_go.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}

	if numThreads > 0 {
		if err := opts.SetIntraOpNumThreads(numThreads); err != nil {
			_ = opts.Destroy()
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	if gpu.UseGPU {
		if err := appendCUDA(opts, gpu); err != nil {
			_ = opts.Destroy()
			return nil, err
		}
	}
	return opts, nil
}

func appendCUDA(opts *onnxruntime_go.SessionOptions, gpu GPUConfig) error {
	cudaOpts, err := onnxruntime_go.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("failed to create CUDA provider options (GPU may not be available): %w", err)
	}
	defer func() {
		if destroyErr := cudaOpts.Destroy(); destroyErr != nil {
			slog.Warn("failed to destroy CUDA provider options", "error", destroyErr)
		}
	}()

	if err := cudaOpts.Update(gpu.providerSettings()); err != nil {
		return fmt.Errorf("failed to update CUDA provider options: %w", err)
	}
	if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		return fmt.Errorf("failed to append CUDA execution provider: %w", err)
	}
	slog.Debug("CUDA execution provider enabled", "device_id", gpu.DeviceID)
	return nil
}
