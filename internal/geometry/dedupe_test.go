package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"identical", NewRect(0, 0, 10, 10), NewRect(0, 0, 10, 10), 1},
		{"disjoint", NewRect(0, 0, 10, 10), NewRect(20, 20, 30, 30), 0},
		{"half overlap", NewRect(0, 0, 10, 10), NewRect(5, 0, 15, 10), 50.0 / 150.0},
		{"contained", NewRect(0, 0, 10, 10), NewRect(0, 0, 5, 10), 0.5},
		{"touching", NewRect(0, 0, 10, 10), NewRect(10, 0, 20, 10), 0},
		{"both degenerate", NewRect(1, 1, 1, 1), NewRect(1, 1, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IoU(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, IoU(tt.b, tt.a), 1e-9)
		})
	}
}

type labeled struct {
	Box  Rect
	Text string
}

func (l labeled) BBox() Rect { return l.Box }

func TestDedupe(t *testing.T) {
	in := []labeled{
		{NewRect(0, 0, 10, 10), "small copy"},
		{NewRect(0, 0, 11, 10), "big"},
		{NewRect(100, 100, 105, 105), "other"},
		{NewRect(0, 0, 10, 10), "small copy 2"},
	}

	got, err := Dedupe(in, DefaultIoUThreshold)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "big", got[0].Text, "largest region survives and comes first")
	assert.Equal(t, "other", got[1].Text)
}

func TestDedupe_StableForEqualAreas(t *testing.T) {
	in := []Rect{NewRect(50, 50, 60, 60), NewRect(0, 0, 10, 10), NewRect(0, 0, 10, 10)}
	got, err := Dedupe(in, 0.7)
	require.NoError(t, err)
	assert.Equal(t, []Rect{NewRect(50, 50, 60, 60), NewRect(0, 0, 10, 10)}, got)
}

func TestDedupe_ThresholdIsStrict(t *testing.T) {
	// IoU of exactly 0.5 is not above a 0.5 threshold.
	in := []Rect{NewRect(0, 0, 10, 10), NewRect(0, 0, 5, 10)}
	got, err := Dedupe(in, 0.5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDedupe_Empty(t *testing.T) {
	got, err := Dedupe([]Rect{}, 0.7)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDedupe_RejectsMalformed(t *testing.T) {
	_, err := Dedupe([]Rect{NewRect(5, 0, 0, 5)}, 0.7)
	assert.ErrorIs(t, err, ErrMalformedRect)
}
