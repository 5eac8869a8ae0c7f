package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverImages(t *testing.T) {
	dir := t.TempDir()
	touch := func(rel string) string {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o600))
		return p
	}
	b := touch("b.png")
	a := touch("a.JPG")
	touch("notes.txt")
	nested := touch("ch2/p1.webp")

	got, err := DiscoverImages([]string{dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, got)

	got, err = DiscoverImages([]string{dir}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, nested}, got)

	got, err = DiscoverImages([]string{nested, b}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{nested, b}, got, "explicit files keep their order")

	_, err = DiscoverImages([]string{filepath.Join(dir, "missing")}, false)
	assert.Error(t, err)
}
