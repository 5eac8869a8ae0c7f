package geometry

import (
	"errors"
	"fmt"
)

// ErrMalformedRect is wrapped by every ValidationError.
var ErrMalformedRect = errors.New("malformed rectangle")

// ValidationError reports a rectangle whose minimum corner lies past its
// maximum corner. Index is the position in the caller's slice, or -1 when
// the rectangle was validated on its own.
type ValidationError struct {
	Index int
	Rect  Rect
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrMalformedRect, e.Rect)
	}
	return fmt.Sprintf("%v at index %d: %s", ErrMalformedRect, e.Index, e.Rect)
}

func (e *ValidationError) Unwrap() error { return ErrMalformedRect }
