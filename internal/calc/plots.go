package calc

import (
	"fmt"
	"math"

	"calcdeck/internal/plot"
	"calcdeck/internal/symbolic"
)

// Plot builders. Each returns nil when an expression cannot be compiled
// for sampling, for instance because it mentions a symbol other than the
// plotted variables; the calculation itself still succeeds.

func (d *Dispatcher) curve(e symbolic.Expr, x string, lo, hi float64) (xs, ys []float64, ok bool) {
	fn, err := d.engine.Lambdify(e, x)
	if err != nil {
		d.log.Debug("not plottable", "expr", e.String(), "err", err)
		return nil, nil, false
	}
	xs, ys = plot.Curve(fn, lo, hi, d.cfg.Samples)
	return xs, ys, true
}

func (d *Dispatcher) dualCurve(f, r symbolic.Expr, x, kind string) *plot.Spec {
	w := d.cfg.Window
	xs, fy, ok := d.curve(f, x, -w, w)
	if !ok {
		return nil
	}
	_, ry, ok := d.curve(r, x, -w, w)
	if !ok {
		return nil
	}
	return &plot.Spec{
		Kind: plot.DualCurve2D,
		Panels: []plot.Panel{
			{
				Title:  "Original Function",
				XLabel: x,
				YLabel: "y",
				Series: []plot.Series{{Label: "Function: " + f.String(), X: xs, Y: fy}},
			},
			{
				Title:  kind + " of Function",
				XLabel: x,
				YLabel: "y",
				Series: []plot.Series{{Label: kind + ": " + r.String(), X: xs, Y: ry}},
			},
		},
	}
}

func (d *Dispatcher) limitPlot(f symbolic.Expr, x string, point symbolic.Expr, p float64, l symbolic.Expr) *plot.Spec {
	lo, hi := p-d.cfg.LimitRadius, p+d.cfg.LimitRadius
	if math.IsInf(p, 0) {
		lo, hi = -d.cfg.Window, d.cfg.Window
	}
	xs, ys, ok := d.curve(f, x, lo, hi)
	if !ok {
		return nil
	}
	panel := plot.Panel{
		Title:  fmt.Sprintf("Limit of Function as %s approaches %s", x, point),
		XLabel: x,
		YLabel: "y",
		Series: []plot.Series{{Label: "Function: " + f.String(), X: xs, Y: ys}},
	}
	if lv, ok := symbolic.Value(l); ok && !math.IsInf(lv, 0) && !math.IsNaN(lv) {
		if math.IsInf(p, 0) {
			panel.Guides = append(panel.Guides, plot.Guide{Label: "Limit: " + l.String(), Value: lv, Dashed: true})
		} else {
			panel.Markers = append(panel.Markers, plot.Marker{Label: "Limit: " + l.String(), X: p, Y: lv})
		}
	}
	return &plot.Spec{Kind: plot.Curve2D, Panels: []plot.Panel{panel}}
}

func (d *Dispatcher) areaPlot(f symbolic.Expr, x string, a, b float64, lo, hi symbolic.Expr) *plot.Spec {
	xs, ys, ok := d.curve(f, x, a, b)
	if !ok {
		return nil
	}
	return &plot.Spec{Kind: plot.Curve2D, Panels: []plot.Panel{{
		Title:  fmt.Sprintf("Area under the curve from %s to %s", lo, hi),
		XLabel: x,
		YLabel: "y",
		Series: []plot.Series{{Label: "Function: " + f.String(), X: xs, Y: ys, Fill: true}},
	}}}
}

func (d *Dispatcher) revolutionPlot(f symbolic.Expr, x string, a, b float64, title string) *plot.Spec {
	fn, err := d.engine.Lambdify(f, x)
	if err != nil {
		d.log.Debug("not plottable", "expr", f.String(), "err", err)
		return nil
	}
	X, Y, Z := plot.Revolution(fn, a, b, d.cfg.ProfileSamples, d.cfg.AngleSamples)
	return &plot.Spec{Kind: plot.Surface3D, Surfaces: []plot.Surface{{Title: title, X: X, Y: Y, Z: Z}}}
}

func (d *Dispatcher) averagePlot(f symbolic.Expr, x string, a, b float64, lo, hi, avg symbolic.Expr) *plot.Spec {
	xs, ys, ok := d.curve(f, x, a, b)
	if !ok {
		return nil
	}
	av, _ := symbolic.Value(avg)
	return &plot.Spec{Kind: plot.Curve2D, Panels: []plot.Panel{{
		Title:  fmt.Sprintf("Average Value of Function from %s to %s", lo, hi),
		XLabel: x,
		YLabel: "y",
		Series: []plot.Series{{Label: "Function: " + f.String(), X: xs, Y: ys, Fill: true, Baseline: av}},
		Guides: []plot.Guide{{Label: "Average: " + shortFloat(av), Value: av, Dashed: true}},
	}}}
}

func (d *Dispatcher) centroidPlot(f symbolic.Expr, x string, a, b float64, lo, hi, xbar, ybar symbolic.Expr) *plot.Spec {
	xs, ys, ok := d.curve(f, x, a, b)
	if !ok {
		return nil
	}
	xv, _ := symbolic.Value(xbar)
	yv, _ := symbolic.Value(ybar)
	return &plot.Spec{Kind: plot.Curve2D, Panels: []plot.Panel{{
		Title:   fmt.Sprintf("Centroid of the region from %s to %s", lo, hi),
		XLabel:  x,
		YLabel:  "y",
		Series:  []plot.Series{{Label: "Function: " + f.String(), X: xs, Y: ys, Fill: true}},
		Markers: []plot.Marker{{Label: fmt.Sprintf("Centroid (%s, %s)", shortFloat(xv), shortFloat(yv)), X: xv, Y: yv}},
		Guides: []plot.Guide{
			{Value: xv, Vertical: true, Dashed: true},
			{Value: yv, Dashed: true},
		},
	}}}
}

func (d *Dispatcher) partialPlot(f, df symbolic.Expr, x, y string) *plot.Spec {
	ff, err := d.engine.Lambdify(f, x, y)
	if err != nil {
		d.log.Debug("not plottable", "expr", f.String(), "err", err)
		return nil
	}
	fd, err := d.engine.Lambdify(df, x, y)
	if err != nil {
		d.log.Debug("not plottable", "expr", df.String(), "err", err)
		return nil
	}
	w, n := d.cfg.Window, d.cfg.MeshSamples
	X, Y, Z := plot.Mesh(ff, -w, w, -w, w, n)
	_, _, DZ := plot.Mesh(fd, -w, w, -w, w, n)
	return &plot.Spec{Kind: plot.DualSurface3D, Surfaces: []plot.Surface{
		{Title: "Original Function", X: X, Y: Y, Z: Z},
		{Title: "Partial Derivative of Function", X: X, Y: Y, Z: DZ},
	}}
}

func (d *Dispatcher) chainPlot(c *chain, x string) *plot.Spec {
	w := d.cfg.Window
	xs, outer, ok := d.curve(c.composed, x, -w, w)
	if !ok {
		return nil
	}
	_, result, ok := d.curve(c.result, x, -w, w)
	if !ok {
		return nil
	}
	return &plot.Spec{Kind: plot.Curve2D, Panels: []plot.Panel{{
		Title:  "Chain Rule: Outer Function and its Derivative",
		XLabel: x,
		YLabel: "y",
		Series: []plot.Series{
			{Label: "Outer Function: " + c.composedText, X: xs, Y: outer},
			{Label: "Chain Rule Result: " + c.result.String(), X: xs, Y: result, Dashed: true},
		},
		Guides: []plot.Guide{{Value: 0}, {Value: 0, Vertical: true}},
	}}}
}

func shortFloat(v float64) string { return fmt.Sprintf("%.6g", v) }
