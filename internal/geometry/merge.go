package geometry

// Merge collapses rectangles that are within threshold of each other into
// their common bounding box. Closeness is transitive: if a is close to b and
// b is close to c, all three end up in one output rectangle even when a and
// c are far apart. A grown group also absorbs any rectangle that is close to
// the group's bounding box, so no two output rectangles are close to each
// other.
//
// One rectangle is returned per group, ordered by the index of the group's
// first member in rects.
func Merge(rects []Rect, threshold float64) ([]Rect, error) {
	if err := validateAll(rects); err != nil {
		return nil, err
	}
	if len(rects) == 0 {
		return []Rect{}, nil
	}

	ds := newDisjointSet(len(rects))
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if AreClose(rects[i], rects[j], threshold) {
				ds.union(i, j)
			}
		}
	}

	for {
		roots, boxes := groupBounds(ds, rects)
		changed := false
		for a := range boxes {
			for b := a + 1; b < len(boxes); b++ {
				if ds.find(roots[a]) == ds.find(roots[b]) {
					continue
				}
				if AreClose(boxes[a], boxes[b], threshold) {
					ds.union(roots[a], roots[b])
					changed = true
				}
			}
		}
		if !changed {
			return boxes, nil
		}
	}
}

// groupBounds returns each group's root and bounding box, ordered by root.
// Roots are always the smallest member index, so this is first-member order.
func groupBounds(ds *disjointSet, rects []Rect) ([]int, []Rect) {
	slot := make(map[int]int)
	var roots []int
	var boxes []Rect
	for i, r := range rects {
		root := ds.find(i)
		k, ok := slot[root]
		if !ok {
			slot[root] = len(boxes)
			roots = append(roots, root)
			boxes = append(boxes, r)
			continue
		}
		boxes[k] = boxes[k].Union(r)
	}
	return roots, boxes
}

// disjointSet is a union-find whose representative is the smallest index.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &disjointSet{parent: p}
}

func (d *disjointSet) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	switch {
	case ra == rb:
		return
	case ra < rb:
		d.parent[rb] = ra
	default:
		d.parent[ra] = rb
	}
}
