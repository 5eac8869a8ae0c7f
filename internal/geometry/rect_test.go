package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Basics(t *testing.T) {
	r := NewRect(2, 3, 12, 8)
	assert.InDelta(t, 10.0, r.Width(), 1e-9)
	assert.InDelta(t, 5.0, r.Height(), 1e-9)
	assert.InDelta(t, 50.0, r.Area(), 1e-9)
	assert.Equal(t, NewRect(0, 3, 12, 20), r.Union(NewRect(0, 10, 5, 20)))
	assert.True(t, r.Union(NewRect(0, 0, 1, 1)).Contains(r))
	assert.Equal(t, NewRect(12, 23, 22, 28), r.Translate(10, 20))
	assert.Equal(t, NewRect(4, 6, 24, 16), r.Scale(2, 2))
	assert.Equal(t, "[2,3,12,8]", r.String())
}

func TestRect_ToImageRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)
	assert.Equal(t, image.Rect(1, 2, 11, 13), NewRect(1.7, 2.2, 10.1, 12.5).ToImageRect(bounds))
	assert.Equal(t, image.Rect(0, 0, 100, 50), NewRect(-5, -5, 200, 200).ToImageRect(bounds))
	assert.Equal(t, image.Rect(100, 10, 100, 20), NewRect(150, 10, 160, 20).ToImageRect(bounds))
}

func TestRect_Validate(t *testing.T) {
	assert.NoError(t, NewRect(0, 0, 0, 0).Validate())
	assert.NoError(t, NewRect(0, 0, 1, 1).Validate())
	assert.ErrorIs(t, NewRect(1, 0, 0, 1).Validate(), ErrMalformedRect)
	assert.ErrorIs(t, NewRect(0, 1, 1, 0).Validate(), ErrMalformedRect)
}

func TestFromImageRect(t *testing.T) {
	assert.Equal(t, NewRect(1, 2, 3, 4), FromImageRect(image.Rect(1, 2, 3, 4)))
}
