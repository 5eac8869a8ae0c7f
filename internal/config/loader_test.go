package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate moves the test into an empty directory with no home config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestLoadWithNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := NewLoaderWithViper(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "Korean", cfg.Pipeline.TargetLang)
	assert.Equal(t, 30*time.Second, cfg.Translator.Timeout)
	assert.Equal(t, 1500, cfg.Pipeline.TileSize)
}

func TestLoadFromSearchPath(t *testing.T) {
	dir := isolate(t)
	content := `
server:
  port: 8080
pipeline:
  merge_threshold: 20
  target_lang: Japanese
translator:
  timeout: 10s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bubblex.yaml"), []byte(content), 0o600))

	loader := NewLoaderWithViper(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20.0, cfg.Pipeline.MergeThreshold, 1e-9)
	assert.Equal(t, "Japanese", cfg.Pipeline.TargetLang)
	assert.Equal(t, 10*time.Second, cfg.Translator.Timeout)
	assert.InDelta(t, 30.0, cfg.Pipeline.MinWidth, 1e-9, "unset keys keep defaults")
	assert.NotEmpty(t, loader.GetConfigFileUsed())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("BUBBLEX_SERVER_PORT", "9090")
	t.Setenv("BUBBLEX_TRANSLATOR_PROVIDER", "none")
	t.Setenv("BUBBLEX_PIPELINE_TILING", "false")

	cfg, err := NewLoaderWithViper(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "none", cfg.Translator.Provider)
	assert.False(t, cfg.Pipeline.Tiling)
}

func TestLoadWithMissingFile(t *testing.T) {
	isolate(t)
	_, err := NewLoaderWithViper(viper.New()).LoadWithFile("does-not-exist.yaml")
	assert.ErrorContains(t, err, "does not exist")
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := NewLoaderWithViper(viper.New()).LoadWithFile(path)
	assert.ErrorContains(t, err, "invalid log level")

	cfg, err := NewLoaderWithViper(viper.New()).LoadWithFileWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, "loud", cfg.LogLevel)
}

func TestGenerateDefaultConfigFileRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "generated.yaml")

	require.NoError(t, GenerateDefaultConfigFile(path))
	assert.Error(t, GenerateDefaultConfigFile(path), "existing files are not overwritten")

	cfg, err := NewLoaderWithViper(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestGetConfigSearchPaths(t *testing.T) {
	dir := isolate(t)
	paths := GetConfigSearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/etc/bubblex")
	assert.Contains(t, paths, filepath.Join(dir, "xdg", "bubblex"))
}
