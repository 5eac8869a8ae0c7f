package detector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.ModelPath = "model.onnx"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model path", func(c *Config) { c.ModelPath = "" }},
		{"db threshold zero", func(c *Config) { c.DbThresh = 0 }},
		{"box threshold above one", func(c *Config) { c.BoxThresh = 1.5 }},
		{"negative unclip", func(c *Config) { c.UnclipRatio = -1 }},
		{"tiny max size", func(c *Config) { c.MaxImageSize = 16 }},
		{"bad gpu device", func(c *Config) { c.GPU.UseGPU = true; c.GPU.DeviceID = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestNew_MissingModel(t *testing.T) {
	c := DefaultConfig()
	c.ModelPath = filepath.Join(t.TempDir(), "missing.onnx")
	_, err := New(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")
}

func TestDetect_ClosedDetector(t *testing.T) {
	d := &Detector{config: DefaultConfig()}
	require.NoError(t, d.Close())
	_, err := d.Detect(context.Background(), nil)
	assert.Error(t, err)
}
