package geometry

// Filter keeps the rectangles whose width, height and area all reach the
// given minimums. Input order is preserved.
func Filter(rects []Rect, minWidth, minHeight, minArea float64) ([]Rect, error) {
	if err := validateAll(rects); err != nil {
		return nil, err
	}
	kept := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if Keep(r, minWidth, minHeight, minArea) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// Keep is the per-rectangle predicate used by Filter.
func Keep(r Rect, minWidth, minHeight, minArea float64) bool {
	w, h := r.Width(), r.Height()
	return w >= minWidth && h >= minHeight && w*h >= minArea
}
