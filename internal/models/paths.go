// Package models locates and downloads the detector model files.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Detection model filenames.
const (
	DetectionMobile = "PP-OCRv5_mobile_det.onnx"
	DetectionServer = "PP-OCRv5_server_det.onnx"
)

// Directory layout categories.
const (
	TypeDetection = "detection"
	VariantMobile = "mobile"
	VariantServer = "server"
)

// DefaultModelsDir is used when nothing else is configured.
const DefaultModelsDir = "models"

// EnvModelsDir overrides the models directory.
const EnvModelsDir = "BUBBLEX_MODELS_DIR"

// ModelInfo describes a downloadable model.
type ModelInfo struct {
	Name        string
	Type        string
	Variant     string
	Filename    string
	Description string
	// RemotePath is the file path inside the model repository.
	RemotePath string
}

// Known lists the models the detector can use.
var Known = []ModelInfo{
	{
		Name:        "det-mobile",
		Type:        TypeDetection,
		Variant:     VariantMobile,
		Filename:    DetectionMobile,
		Description: "PP-OCRv5 mobile DB text detector",
		RemotePath:  "detection/v5/det.onnx",
	},
	{
		Name:        "det-server",
		Type:        TypeDetection,
		Variant:     VariantServer,
		Filename:    DetectionServer,
		Description: "PP-OCRv5 server DB text detector",
		RemotePath:  "detection/v5/det_server.onnx",
	},
}

// Lookup finds a known model by name.
func Lookup(name string) (ModelInfo, error) {
	for _, m := range Known {
		if m.Name == name {
			return m, nil
		}
	}
	return ModelInfo{}, fmt.Errorf("unknown model %q", name)
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

// GetModelsDir resolves the models directory.
// Priority: explicit argument, BUBBLEX_MODELS_DIR, project root + "models",
// then the relative "models".
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if root, err := findProjectRoot(); err == nil {
		return filepath.Join(root, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// PathFor is where m lives under modelsDir: <dir>/<type>/<variant>/<file>.
func PathFor(modelsDir string, m ModelInfo) string {
	return filepath.Join(GetModelsDir(modelsDir), m.Type, m.Variant, m.Filename)
}

// DetectionModelPath returns the organized path when it exists and the flat
// <dir>/<file> path otherwise.
func DetectionModelPath(modelsDir string, useServer bool) string {
	m := Known[0]
	if useServer {
		m = Known[1]
	}
	organized := PathFor(modelsDir, m)
	if _, err := os.Stat(organized); err == nil {
		return organized
	}
	flat := filepath.Join(GetModelsDir(modelsDir), m.Filename)
	if _, err := os.Stat(flat); err == nil {
		return flat
	}
	return organized
}

// ValidateModelExists reports a missing model file.
func ValidateModelExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("model file not found: %s: %w", path, err)
	}
	return nil
}
