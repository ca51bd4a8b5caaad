package plot

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/gg"
)

// ErrEmptyFigure is returned when there is nothing to export.
var ErrEmptyFigure = errors.New("figure has nothing to draw")

const (
	pngMargin  = 56.0
	pngBG      = "#1a1b26"
	pngFG      = "#c0caf5"
	pngAxis    = "#565f89"
	pngTitleFG = "#ff9e64"
)

// ExportPNG rasterizes the figure to a PNG file of width×height pixels.
func ExportPNG(spec *Spec, path string, width, height int) error {
	if spec == nil || (len(spec.Panels) == 0 && len(spec.Surfaces) == 0) {
		return ErrEmptyFigure
	}
	dc := gg.NewContext(width, height)
	dc.SetHexColor(pngBG)
	dc.Clear()

	n := len(spec.Panels)
	if spec.Kind == Surface3D || spec.Kind == DualSurface3D {
		n = len(spec.Surfaces)
	}
	paneW := float64(width) / float64(n)
	for i := 0; i < n; i++ {
		x0 := paneW * float64(i)
		switch spec.Kind {
		case Curve2D, DualCurve2D:
			drawPanelPNG(dc, spec.Panels[i], x0, 0, paneW, float64(height))
		case Surface3D, DualSurface3D:
			drawSurfacePNG(dc, spec.Surfaces[i], x0, 0, paneW, float64(height))
		}
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// pane maps data coordinates into a pixel rectangle.
type pane struct {
	v          viewport
	x, y, w, h float64
}

func (p pane) at(x, y float64) (float64, float64) {
	px := p.x + (x-p.v.xmin)/(p.v.xmax-p.v.xmin)*p.w
	py := p.y + (p.v.ymax-y)/(p.v.ymax-p.v.ymin)*p.h
	return px, py
}

func (p pane) inY(y float64) bool { return y >= p.v.ymin && y <= p.v.ymax }

func drawPanelPNG(dc *gg.Context, p Panel, x0, y0, w, h float64) {
	pn := pane{v: panelViewport(p), x: x0 + pngMargin, y: y0 + pngMargin, w: w - 1.5*pngMargin, h: h - 2*pngMargin}

	dc.Push()
	dc.DrawRectangle(pn.x, pn.y, pn.w, pn.h)
	dc.Clip()

	dc.SetHexColor(pngAxis)
	dc.SetLineWidth(1)
	if pn.inY(0) {
		ax, ay := pn.at(pn.v.xmin, 0)
		bx, _ := pn.at(pn.v.xmax, 0)
		dc.DrawLine(ax, ay, bx, ay)
		dc.Stroke()
	}
	if pn.v.xmin <= 0 && pn.v.xmax >= 0 {
		ax, ay := pn.at(0, pn.v.ymax)
		_, by := pn.at(0, pn.v.ymin)
		dc.DrawLine(ax, ay, ax, by)
		dc.Stroke()
	}

	for i, s := range p.Series {
		if s.Fill {
			fillPNG(dc, pn, s, string(seriesColors[i%len(seriesColors)]))
		}
	}
	for _, g := range p.Guides {
		guidePNG(dc, pn, g)
	}
	for i, s := range p.Series {
		seriesPNG(dc, pn, s, string(seriesColors[i%len(seriesColors)]))
	}
	for _, m := range p.Markers {
		if !finite(m.X) || !finite(m.Y) {
			continue
		}
		mx, my := pn.at(m.X, m.Y)
		dc.SetHexColor(string(markerColor))
		dc.DrawCircle(mx, my, 5)
		dc.Fill()
	}
	dc.Pop()

	// frame, ticks and labels sit outside the clip
	dc.SetHexColor(pngAxis)
	dc.SetLineWidth(1)
	dc.DrawRectangle(pn.x, pn.y, pn.w, pn.h)
	dc.Stroke()

	dc.SetHexColor(pngFG)
	for _, t := range []float64{pn.v.xmin, (pn.v.xmin + pn.v.xmax) / 2, pn.v.xmax} {
		tx, _ := pn.at(t, pn.v.ymin)
		dc.DrawStringAnchored(tickLabel(t), tx, pn.y+pn.h+14, 0.5, 0.5)
	}
	for _, t := range []float64{pn.v.ymin, (pn.v.ymin + pn.v.ymax) / 2, pn.v.ymax} {
		_, ty := pn.at(pn.v.xmin, t)
		dc.DrawStringAnchored(tickLabel(t), pn.x-6, ty, 1, 0.5)
	}
	if p.XLabel != "" {
		dc.DrawStringAnchored(p.XLabel, pn.x+pn.w/2, pn.y+pn.h+30, 0.5, 0.5)
	}
	if p.YLabel != "" {
		dc.DrawStringAnchored(p.YLabel, x0+8, pn.y-12, 0, 0.5)
	}

	dc.SetHexColor(pngTitleFG)
	dc.DrawStringAnchored(p.Title, pn.x+pn.w/2, y0+pngMargin/2, 0.5, 0.5)

	// legend along the bottom edge
	lx := pn.x
	ly := y0 + h - 10
	for i, s := range p.Series {
		if s.Label == "" {
			continue
		}
		dc.SetHexColor(string(seriesColors[i%len(seriesColors)]))
		dc.DrawLine(lx, ly, lx+18, ly)
		dc.Stroke()
		dc.SetHexColor(pngFG)
		dc.DrawStringAnchored(s.Label, lx+24, ly, 0, 0.5)
		tw, _ := dc.MeasureString(s.Label)
		lx += 36 + tw
	}
}

// fillPNG shades each contiguous finite run between the curve and its
// baseline.
func fillPNG(dc *gg.Context, pn pane, s Series, hex string) {
	runStart := -1
	flush := func(end int) {
		if runStart < 0 || end-runStart < 1 {
			runStart = -1
			return
		}
		bx, by := pn.at(s.X[runStart], s.Baseline)
		dc.MoveTo(bx, by)
		for k := runStart; k <= end; k++ {
			dc.LineTo(pn.at(s.X[k], clampY(pn, s.Y[k])))
		}
		ex, ey := pn.at(s.X[end], s.Baseline)
		dc.LineTo(ex, ey)
		dc.ClosePath()
		dc.SetHexColor(hex + "55")
		dc.Fill()
		runStart = -1
	}
	for i := range s.X {
		if i < len(s.Y) && finite(s.Y[i]) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(min(len(s.X), len(s.Y)) - 1)
}

func clampY(pn pane, y float64) float64 {
	return math.Max(pn.v.ymin, math.Min(pn.v.ymax, y))
}

func guidePNG(dc *gg.Context, pn pane, g Guide) {
	if !finite(g.Value) {
		return
	}
	dc.SetHexColor(string(guideColor))
	dc.SetLineWidth(1.5)
	if g.Dashed {
		dc.SetDash(6, 4)
	}
	if g.Vertical {
		x, y0 := pn.at(g.Value, pn.v.ymax)
		_, y1 := pn.at(g.Value, pn.v.ymin)
		dc.DrawLine(x, y0, x, y1)
	} else {
		x0, y := pn.at(pn.v.xmin, g.Value)
		x1, _ := pn.at(pn.v.xmax, g.Value)
		dc.DrawLine(x0, y, x1, y)
	}
	dc.Stroke()
	dc.SetDash()
}

func seriesPNG(dc *gg.Context, pn pane, s Series, hex string) {
	dc.SetHexColor(hex)
	dc.SetLineWidth(2)
	if s.Dashed {
		dc.SetDash(8, 5)
	}
	open := false
	for i := 0; i < len(s.X) && i < len(s.Y); i++ {
		y := s.Y[i]
		if !finite(y) {
			open = false
			continue
		}
		if open && i > 0 {
			prev := s.Y[i-1]
			if (prev > pn.v.ymax && y < pn.v.ymin) || (prev < pn.v.ymin && y > pn.v.ymax) {
				open = false
			}
		}
		px, py := pn.at(s.X[i], y)
		if open {
			dc.LineTo(px, py)
		} else {
			dc.NewSubPath()
			dc.MoveTo(px, py)
			open = true
		}
	}
	dc.Stroke()
	dc.SetDash()
}

func drawSurfacePNG(dc *gg.Context, sf Surface, x0, y0, w, h float64) {
	segs := wireframe(sf)
	dc.SetHexColor(pngTitleFG)
	dc.DrawStringAnchored(sf.Title, x0+w/2, y0+pngMargin/2, 0.5, 0.5)
	if len(segs) == 0 {
		return
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range segs {
		for _, q := range []point2{s.a, s.b} {
			minX, maxX = math.Min(minX, q.x), math.Max(maxX, q.x)
			minY, maxY = math.Min(minY, q.y), math.Max(maxY, q.y)
		}
	}
	innerW, innerH := w-2*pngMargin, h-2*pngMargin
	spanX, spanY := math.Max(maxX-minX, 1e-9), math.Max(maxY-minY, 1e-9)
	scale := math.Min(innerW/spanX, innerH/spanY)
	offX := x0 + pngMargin + (innerW-spanX*scale)/2
	offY := y0 + pngMargin + (innerH-spanY*scale)/2

	dc.SetLineWidth(1)
	for _, s := range segs {
		col := heightColors[min(int(s.h*float64(len(heightColors))), len(heightColors)-1)]
		dc.SetHexColor(string(col))
		dc.DrawLine(offX+(s.a.x-minX)*scale, offY+(maxY-s.a.y)*scale, offX+(s.b.x-minX)*scale, offY+(maxY-s.b.y)*scale)
		dc.Stroke()
	}
}
