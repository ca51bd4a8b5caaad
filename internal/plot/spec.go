// Package plot turns sampled calculus results into figures. A Spec is a
// backend-neutral description of a figure; Render draws it on a braille
// terminal canvas and ExportPNG rasterizes it to an image file.
package plot

import "math"

// Kind tags the figure layout.
type Kind int

const (
	Curve2D Kind = iota
	DualCurve2D
	Surface3D
	DualSurface3D
)

func (k Kind) String() string {
	switch k {
	case Curve2D:
		return "curve"
	case DualCurve2D:
		return "dual-curve"
	case Surface3D:
		return "surface"
	case DualSurface3D:
		return "dual-surface"
	}
	return "unknown"
}

// Series is one sampled curve. With Fill set, the area between the curve
// and Baseline is shaded.
type Series struct {
	Label    string
	X, Y     []float64
	Fill     bool
	Baseline float64
	Dashed   bool
}

// Marker is a labelled point.
type Marker struct {
	Label string
	X, Y  float64
}

// Guide is a full-width horizontal line (axhline) or, with Vertical set, a
// full-height vertical one (axvline).
type Guide struct {
	Label    string
	Value    float64
	Vertical bool
	Dashed   bool
}

// Panel is one set of 2D axes.
type Panel struct {
	Title   string
	XLabel  string
	YLabel  string
	Series  []Series
	Markers []Marker
	Guides  []Guide
}

// Surface is z sampled over a grid. X, Y and Z share the same shape; for
// surfaces of revolution X, Y and Z are all parametric coordinates.
type Surface struct {
	Title string
	X     [][]float64
	Y     [][]float64
	Z     [][]float64
}

// Spec describes a complete figure.
type Spec struct {
	Kind     Kind
	Panels   []Panel
	Surfaces []Surface
}

// NonFinite counts the NaN and ±Inf samples across every series and
// surface of the figure.
func (s *Spec) NonFinite() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, p := range s.Panels {
		for _, sr := range p.Series {
			n += countNonFinite(sr.Y)
		}
	}
	for _, sf := range s.Surfaces {
		for _, row := range sf.Z {
			n += countNonFinite(row)
		}
	}
	return n
}

func countNonFinite(vs []float64) int {
	n := 0
	for _, v := range vs {
		if !finite(v) {
			n++
		}
	}
	return n
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Config carries the sampling defaults.
type Config struct {
	// Samples per 2D curve. Odd, so symmetric windows contain 0 exactly.
	Samples int
	// Window is the half-width of the default domain [-Window, Window].
	Window float64
	// LimitRadius is the half-width of the domain around a limit point.
	LimitRadius float64
	// MeshSamples per axis for surfaces over a grid.
	MeshSamples int
	// ProfileSamples and AngleSamples size surfaces of revolution.
	ProfileSamples int
	AngleSamples   int
}

func DefaultConfig() Config {
	return Config{
		Samples:        401,
		Window:         10,
		LimitRadius:    5,
		MeshSamples:    61,
		ProfileSamples: 100,
		AngleSamples:   100,
	}
}
