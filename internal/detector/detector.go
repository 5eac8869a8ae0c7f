// Package detector finds text regions with a DB (differentiable
// binarization) model running on ONNX Runtime.
package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/mempool"
	"github.com/MeKo-Tech/bubblex/internal/onnx"
	"github.com/yalue/onnxruntime_go"
)

// Region is one detected text area in source image coordinates.
type Region struct {
	Box        geometry.Rect
	Confidence float64
}

// BBox implements geometry.Boxed.
func (r Region) BBox() geometry.Rect { return r.Box }

// Boxes extracts the rectangles of regions.
func Boxes(regions []Region) []geometry.Rect {
	out := make([]geometry.Rect, len(regions))
	for i, r := range regions {
		out[i] = r.Box
	}
	return out
}

// Detector performs text detection using ONNX Runtime.
type Detector struct {
	config     Config
	session    *onnxruntime_go.DynamicAdvancedSession
	inputInfo  onnxruntime_go.InputOutputInfo
	outputInfo onnxruntime_go.InputOutputInfo
	mu         sync.RWMutex
}

// New loads the model and creates an inference session.
func New(config Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := validateModelFile(config.ModelPath); err != nil {
		return nil, err
	}

	slog.Debug("Initializing detector",
		"model_path", config.ModelPath,
		"gpu_enabled", config.GPU.UseGPU,
		"max_image_size", config.MaxImageSize)

	if err := onnx.Init(config.LibraryPath, config.GPU.UseGPU); err != nil {
		return nil, err
	}

	inputInfo, outputInfo, err := modelIO(config.ModelPath)
	if err != nil {
		return nil, err
	}

	opts, err := onnx.NewSessionOptions(config.GPU, config.NumThreads)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := opts.Destroy(); err != nil {
			slog.Warn("failed to destroy session options", "error", err)
		}
	}()

	session, err := onnxruntime_go.NewDynamicAdvancedSession(config.ModelPath,
		[]string{inputInfo.Name}, []string{outputInfo.Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	slog.Debug("Detector initialized successfully", "input", inputInfo.Name, "output", outputInfo.Name)
	return &Detector{
		config:     config,
		session:    session,
		inputInfo:  inputInfo,
		outputInfo: outputInfo,
	}, nil
}

// Close releases the inference session.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return nil
	}
	err := d.session.Destroy()
	d.session = nil
	if err != nil {
		return fmt.Errorf("failed to destroy detector session: %w", err)
	}
	return nil
}

// Config returns a copy of the detector's configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Detect returns the text regions of img in img's pixel coordinates
// (relative to img.Bounds().Min).
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]Region, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	b := img.Bounds()

	resized := resizeForModel(img, d.config.MaxImageSize)
	tensor, err := onnx.ImageTensor(resized, onnx.ImageNetNormalization)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}

	prob, mapW, mapH, err := d.infer(tensor)
	if err != nil {
		return nil, err
	}
	defer mempool.Float32.Put(prob)

	regions := PostProcess(prob, mapW, mapH, PostProcessOptions{
		Threshold:   d.config.DbThresh,
		BoxThresh:   d.config.BoxThresh,
		UnclipRatio: d.config.UnclipRatio,
	})
	regions = ScaleRegions(regions, mapW, mapH, b.Dx(), b.Dy())

	slog.Debug("detection complete",
		"regions", len(regions),
		"map_size", fmt.Sprintf("%dx%d", mapW, mapH),
		"duration", time.Since(start))
	return regions, nil
}

// infer runs the session and returns the first channel of the output map.
func (d *Detector) infer(tensor onnx.Tensor) ([]float32, int, int, error) {
	if err := tensor.Verify(); err != nil {
		return nil, 0, 0, fmt.Errorf("invalid tensor: %w", err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.session == nil {
		return nil, 0, 0, errors.New("detector session is closed")
	}

	input, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() {
		if err := input.Destroy(); err != nil {
			slog.Warn("failed to destroy input tensor", "error", err)
		}
	}()

	outputs := []onnxruntime_go.Value{nil}
	if err := d.session.Run([]onnxruntime_go.Value{input}, outputs); err != nil {
		return nil, 0, 0, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		if err := outputs[0].Destroy(); err != nil {
			slog.Warn("failed to destroy output tensor", "error", err)
		}
	}()

	out, ok := outputs[0].(*onnxruntime_go.Tensor[float32])
	if !ok {
		return nil, 0, 0, fmt.Errorf("expected float32 tensor, got %T", outputs[0])
	}
	shape := out.GetShape()
	if len(shape) != 4 {
		return nil, 0, 0, fmt.Errorf("expected 4D output tensor, got %dD", len(shape))
	}
	w, h := int(shape[3]), int(shape[2])

	// The session owns the output buffer; copy the probability plane out.
	prob := mempool.Float32.Get(w * h)
	copy(prob, out.GetData()[:w*h])
	return prob, w, h, nil
}
