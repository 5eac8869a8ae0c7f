package detector

import (
	"math"

	"github.com/MeKo-Tech/bubblex/internal/geometry"
	"github.com/MeKo-Tech/bubblex/internal/mempool"
)

// PostProcessOptions controls DB post-processing.
type PostProcessOptions struct {
	Threshold   float32 // binarization threshold on the probability map
	BoxThresh   float32 // minimum mean probability of a component
	UnclipRatio float64 // 0 disables unclipping
}

// compStats accumulates one connected component.
type compStats struct {
	count                  int
	sum                    float64
	minX, minY, maxX, maxY int
}

// PostProcess turns a w x h probability map into regions in map
// coordinates: threshold, 4-connected components, mean-probability filter,
// then unclip each component's box.
func PostProcess(prob []float32, w, h int, opts PostProcessOptions) []Region {
	if w <= 0 || h <= 0 || len(prob) != w*h {
		return nil
	}
	mask := binarize(prob, opts.Threshold)
	defer mempool.Bool.Put(mask)
	comps := connectedComponents(mask, prob, w, h)

	regions := make([]Region, 0, len(comps))
	for _, c := range comps {
		conf := c.sum / float64(c.count)
		if conf < float64(opts.BoxThresh) {
			continue
		}
		box := geometry.NewRect(float64(c.minX), float64(c.minY), float64(c.maxX+1), float64(c.maxY+1))
		box = unclip(box, opts.UnclipRatio)
		box = clampRect(box, float64(w), float64(h))
		regions = append(regions, Region{Box: box, Confidence: conf})
	}
	return regions
}

func binarize(prob []float32, t float32) []bool {
	mask := mempool.Bool.Get(len(prob))
	for i, p := range prob {
		mask[i] = p >= t
	}
	return mask
}

// connectedComponents labels 4-connected foreground pixels with an explicit
// stack and returns per-component stats in scan order of their first pixel.
func connectedComponents(mask []bool, prob []float32, w, h int) []compStats {
	visited := mempool.Bool.Get(w * h)
	defer mempool.Bool.Put(visited)
	var comps []compStats
	var stack []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		sx, sy := start%w, start/w
		st := compStats{minX: sx, minY: sy, maxX: sx, maxY: sy}
		visited[start] = true
		stack = append(stack[:0], start)

		for len(stack) > 0 {
			ci := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cx, cy := ci%w, ci/w

			st.count++
			st.sum += float64(prob[ci])
			st.minX, st.maxX = min(st.minX, cx), max(st.maxX, cx)
			st.minY, st.maxY = min(st.minY, cy), max(st.maxY, cy)

			for _, n := range [4][2]int{{cx + 1, cy}, {cx - 1, cy}, {cx, cy + 1}, {cx, cy - 1}} {
				nx, ny := n[0], n[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					stack = append(stack, ni)
				}
			}
		}
		comps = append(comps, st)
	}
	return comps
}

// unclip grows r by distance A*ratio/L on every side, where A is the area
// and L the perimeter. DB models predict shrunk text kernels and this
// restores the full extent.
func unclip(r geometry.Rect, ratio float64) geometry.Rect {
	if ratio <= 0 {
		return r
	}
	perimeter := 2 * (r.Width() + r.Height())
	if perimeter == 0 {
		return r
	}
	d := r.Area() * ratio / perimeter
	return geometry.NewRect(r.MinX-d, r.MinY-d, r.MaxX+d, r.MaxY+d)
}

func clampRect(r geometry.Rect, w, h float64) geometry.Rect {
	return geometry.NewRect(
		math.Max(0, r.MinX), math.Max(0, r.MinY),
		math.Min(w, r.MaxX), math.Min(h, r.MaxY),
	)
}

// ScaleRegions maps regions from a mapW x mapH probability map onto an
// origW x origH image.
func ScaleRegions(regions []Region, mapW, mapH, origW, origH int) []Region {
	if mapW == 0 || mapH == 0 {
		return regions
	}
	sx := float64(origW) / float64(mapW)
	sy := float64(origH) / float64(mapH)
	out := make([]Region, len(regions))
	for i, r := range regions {
		out[i] = Region{Box: r.Box.Scale(sx, sy), Confidence: r.Confidence}
	}
	return out
}
