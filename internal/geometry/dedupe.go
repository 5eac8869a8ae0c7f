package geometry

import "sort"

// DefaultIoUThreshold is the overlap above which two tile detections are
// treated as the same region.
const DefaultIoUThreshold = 0.7

// Dedupe drops near-duplicate regions. Regions are visited largest area
// first (ties keep input order) and a region survives unless its IoU with a
// region already kept exceeds iouThreshold. Survivors are returned in
// visiting order; dropped regions are discarded whole.
func Dedupe[T Boxed](regions []T, iouThreshold float64) ([]T, error) {
	if err := validateAll(regions); err != nil {
		return nil, err
	}

	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return regions[order[i]].BBox().Area() > regions[order[j]].BBox().Area()
	})

	kept := make([]T, 0, len(regions))
	for _, idx := range order {
		candidate := regions[idx].BBox()
		duplicate := false
		for _, k := range kept {
			if IoU(candidate, k.BBox()) > iouThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, regions[idx])
		}
	}
	return kept, nil
}
