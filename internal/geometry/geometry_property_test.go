package geometry

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genRect generates a well-formed rectangle inside a 500x500 canvas.
func genRect() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 450),
		gen.Float64Range(0, 450),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 50),
	).Map(func(vals []interface{}) Rect {
		x, ok := vals[0].(float64)
		if !ok {
			panic("expected float64")
		}
		y, ok := vals[1].(float64)
		if !ok {
			panic("expected float64")
		}
		w, ok := vals[2].(float64)
		if !ok {
			panic("expected float64")
		}
		h, ok := vals[3].(float64)
		if !ok {
			panic("expected float64")
		}
		return NewRect(x, y, x+w, y+h)
	})
}

func genRects() gopter.Gen {
	return gen.SliceOfN(25, genRect())
}

func mustMerge(rects []Rect, threshold float64) []Rect {
	out, err := Merge(rects, threshold)
	if err != nil {
		panic(err)
	}
	return out
}

func TestMerge_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("merging twice equals merging once", prop.ForAll(
		func(rects []Rect, threshold float64) bool {
			once := mustMerge(rects, threshold)
			twice := mustMerge(once, threshold)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		genRects(),
		gen.Float64Range(0, 30),
	))

	properties.Property("every input lies in exactly one output", prop.ForAll(
		func(rects []Rect, threshold float64) bool {
			out := mustMerge(rects, threshold)
			for _, r := range rects {
				n := 0
				for _, o := range out {
					if o.Contains(r) {
						n++
					}
				}
				if n != 1 {
					return false
				}
			}
			return true
		},
		genRects(),
		gen.Float64Range(0, 30),
	))

	properties.Property("no two outputs are close", prop.ForAll(
		func(rects []Rect, threshold float64) bool {
			out := mustMerge(rects, threshold)
			for i := range out {
				for j := i + 1; j < len(out); j++ {
					if AreClose(out[i], out[j], threshold) {
						return false
					}
				}
			}
			return true
		},
		genRects(),
		gen.Float64Range(0, 30),
	))

	properties.Property("raising the threshold never adds outputs", prop.ForAll(
		func(rects []Rect, t1, delta float64) bool {
			return len(mustMerge(rects, t1+delta)) <= len(mustMerge(rects, t1))
		},
		genRects(),
		gen.Float64Range(0, 20),
		gen.Float64Range(0, 20),
	))

	properties.TestingRun(t)
}

func TestFilter_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("kept boxes satisfy every minimum, dropped boxes violate one", prop.ForAll(
		func(rects []Rect, minW, minH, minArea float64) bool {
			kept, err := Filter(rects, minW, minH, minArea)
			if err != nil {
				return false
			}
			for _, r := range kept {
				if r.Width() < minW || r.Height() < minH || r.Area() < minArea {
					return false
				}
			}
			dropped := 0
			for _, r := range rects {
				if r.Width() < minW || r.Height() < minH || r.Area() < minArea {
					dropped++
				}
			}
			return len(kept)+dropped == len(rects)
		},
		genRects(),
		gen.Float64Range(0, 40),
		gen.Float64Range(0, 40),
		gen.Float64Range(0, 1600),
	))

	properties.TestingRun(t)
}

func TestIoU_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IoU stays within [0,1]", prop.ForAll(
		func(a, b Rect) bool {
			v := IoU(a, b)
			return v >= 0 && v <= 1+1e-12
		},
		genRect(),
		genRect(),
	))

	properties.Property("a box with area has IoU 1 with itself", prop.ForAll(
		func(a Rect) bool {
			if a.Area() == 0 {
				return IoU(a, a) == 0
			}
			return IoU(a, a) > 1-1e-12
		},
		genRect(),
	))

	properties.Property("boxes separated on x have IoU 0", prop.ForAll(
		func(a Rect, gap float64) bool {
			b := a.Translate(a.Width()+gap, 0)
			return IoU(a, b) == 0
		},
		genRect(),
		gen.Float64Range(0.001, 100),
	))

	properties.TestingRun(t)
}

func TestDedupe_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("deduplicating twice equals deduplicating once", prop.ForAll(
		func(rects []Rect, threshold float64) bool {
			once, err := Dedupe(rects, threshold)
			if err != nil {
				return false
			}
			twice, err := Dedupe(once, threshold)
			if err != nil || len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		genRects(),
		gen.Float64Range(0.1, 0.9),
	))

	properties.Property("kept boxes never overlap above the threshold", prop.ForAll(
		func(rects []Rect, threshold float64) bool {
			kept, err := Dedupe(rects, threshold)
			if err != nil {
				return false
			}
			for i := range kept {
				for j := i + 1; j < len(kept); j++ {
					if IoU(kept[i], kept[j]) > threshold {
						return false
					}
				}
			}
			return true
		},
		genRects(),
		gen.Float64Range(0.1, 0.9),
	))

	properties.TestingRun(t)
}
