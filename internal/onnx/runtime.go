// Package onnx bootstraps ONNX Runtime and converts images to input tensors.
package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/yalue/onnxruntime_go"
)

// LibraryEnvVar overrides the shared library location.
const LibraryEnvVar = "BUBBLEX_ONNXRUNTIME_LIB"

var (
	initOnce sync.Once
	initErr  error
)

// LibraryName returns the ONNX Runtime shared library file name for goos.
func LibraryName(goos string) (string, error) {
	switch goos {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// CandidatePaths lists the library locations tried in order: the explicit
// path, the environment override, system directories, then the working
// directory's onnxruntime/lib folder.
func CandidatePaths(explicit string, useGPU bool) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if env := os.Getenv(LibraryEnvVar); env != "" {
		paths = append(paths, env)
	}

	name, err := LibraryName(runtime.GOOS)
	if err != nil {
		return paths
	}
	if useGPU {
		paths = append(paths, filepath.Join("/opt/onnxruntime/gpu/lib", name))
	}
	paths = append(paths,
		filepath.Join("/usr/local/lib", name),
		filepath.Join("/usr/lib", name),
		filepath.Join("/opt/onnxruntime/cpu/lib", name),
	)
	if cwd, err := os.Getwd(); err == nil {
		if useGPU {
			paths = append(paths, filepath.Join(cwd, "onnxruntime", "gpu", "lib", name))
		}
		paths = append(paths, filepath.Join(cwd, "onnxruntime", "lib", name))
	}
	return paths
}

// ResolveLibrary returns the first candidate path that exists.
func ResolveLibrary(explicit string, useGPU bool) (string, error) {
	paths := CandidatePaths(explicit, useGPU)
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("ONNX Runtime library not found (tried %d locations, set %s)", len(paths), LibraryEnvVar)
}

// Init loads the shared library and initializes the runtime environment.
// Only the first call has an effect; later calls return its result.
func Init(libraryPath string, useGPU bool) error {
	initOnce.Do(func() {
		if onnxruntime_go.IsInitialized() {
			return
		}
		path, err := ResolveLibrary(libraryPath, useGPU)
		if err != nil {
			initErr = err
			return
		}
		onnxruntime_go.SetSharedLibraryPath(path)
		if err := onnxruntime_go.InitializeEnvironment(); err != nil {
			initErr = fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	})
	return initErr
}

// Shutdown tears the environment down. Call once at process exit.
func Shutdown() error {
	if !onnxruntime_go.IsInitialized() {
		return nil
	}
	if err := onnxruntime_go.DestroyEnvironment(); err != nil {
		return errors.Join(errors.New("failed to destroy ONNX Runtime environment"), err)
	}
	return nil
}
