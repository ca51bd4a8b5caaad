package plot

import "math"

// Camera angles for the isometric view, in radians.
const (
	azimuth   = -math.Pi / 3
	elevation = math.Pi / 6
	// wireframe lines drawn per grid direction
	wireLines = 24
)

type point2 struct{ x, y float64 }

// projector maps surface coordinates to a unit screen square.
type projector struct {
	center [3]float64
	scale  [3]float64
}

func newProjector(sf Surface) projector {
	var p projector
	for axis, grid := range [3][][]float64{sf.X, sf.Y, sf.Z} {
		var flat []float64
		for _, row := range grid {
			flat = append(flat, row...)
		}
		lo, hi, ok := robustRange(flat)
		if !ok {
			lo, hi = -1, 1
		}
		if hi == lo {
			lo, hi = lo-1, hi+1
		}
		p.center[axis] = (lo + hi) / 2
		p.scale[axis] = 2 / (hi - lo)
	}
	return p
}

// project returns screen coordinates in roughly [-1.5, 1.5], with y up.
func (p projector) project(x, y, z float64) (point2, bool) {
	if !finite(x) || !finite(y) || !finite(z) {
		return point2{}, false
	}
	nx := (x - p.center[0]) * p.scale[0]
	ny := (y - p.center[1]) * p.scale[1]
	nz := (z - p.center[2]) * p.scale[2]
	ca, sa := math.Cos(azimuth), math.Sin(azimuth)
	ce, se := math.Cos(elevation), math.Sin(elevation)
	sx := nx*ca - ny*sa
	depth := nx*sa + ny*ca
	sy := nz*ce + depth*se
	return point2{sx, sy}, true
}

// height normalizes z to [0, 1] for coloring.
func (p projector) height(z float64) float64 {
	h := ((z-p.center[2])*p.scale[2] + 1) / 2
	return math.Max(0, math.Min(1, h))
}

// strideIndices picks at most n evenly spaced indices out of size.
func strideIndices(size, n int) []int {
	if size <= n {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * float64(size-1) / float64(n-1)))
	}
	return idx
}

type segment struct {
	a, b point2
	h    float64
}

// wireframe projects a subsampled grid of the surface into line segments.
// Segments touching a non-finite sample are dropped.
func wireframe(sf Surface) []segment {
	if len(sf.Z) == 0 || len(sf.Z[0]) == 0 {
		return nil
	}
	p := newProjector(sf)
	rows, cols := len(sf.Z), len(sf.Z[0])
	at := func(i, j int) (point2, float64, bool) {
		q, ok := p.project(sf.X[i][j], sf.Y[i][j], sf.Z[i][j])
		return q, p.height(sf.Z[i][j]), ok
	}
	var segs []segment
	add := func(i0, j0, i1, j1 int) {
		a, ha, okA := at(i0, j0)
		b, hb, okB := at(i1, j1)
		if okA && okB {
			segs = append(segs, segment{a: a, b: b, h: (ha + hb) / 2})
		}
	}
	for _, i := range strideIndices(rows, wireLines) {
		for j := 0; j+1 < cols; j++ {
			add(i, j, i, j+1)
		}
	}
	for _, j := range strideIndices(cols, wireLines) {
		for i := 0; i+1 < rows; i++ {
			add(i, j, i+1, j)
		}
	}
	return segs
}
