package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"", "Korean"},
		{"  ", "Korean"},
		{"ko", "Korean"},
		{"ja", "Japanese"},
		{"en", "English"},
		{"Korean", "Korean"},
		{"klingon", "Klingon"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LanguageName(tt.in, "Korean"))
		})
	}
}
