package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night palette, shared with the TUI.
var (
	seriesColors = []lipgloss.Color{"#7aa2f7", "#f7768e", "#9ece6a", "#bb9af7"}
	heightColors = []lipgloss.Color{"#3d59a1", "#7aa2f7", "#7dcfff", "#73daca", "#9ece6a", "#e0af68"}

	fillColor   = lipgloss.Color("#3d59a1")
	axisColor   = lipgloss.Color("#565f89")
	guideColor  = lipgloss.Color("#e0af68")
	markerColor = lipgloss.Color("#ff9e64")

	plotTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9e64"))
	tickStyle      = lipgloss.NewStyle().Foreground(axisColor)
	legendStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
)

const (
	yTickW = 8 // width of the y tick column
	// title, x ticks and legend rows around the canvas
	chromeRows = 3
)

// Render draws the figure into a width×height block of terminal text.
// Dual layouts split the width between two side-by-side views.
func Render(spec *Spec, width, height int) string {
	if spec == nil {
		return ""
	}
	var views []string
	switch spec.Kind {
	case Curve2D, DualCurve2D:
		for i, p := range spec.Panels {
			views = append(views, renderPanel(p, splitWidth(width, len(spec.Panels), i), height))
		}
	case Surface3D, DualSurface3D:
		for i, sf := range spec.Surfaces {
			views = append(views, renderSurface(sf, splitWidth(width, len(spec.Surfaces), i), height))
		}
	}
	if len(views) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func splitWidth(total, n, i int) int {
	if n <= 1 {
		return total
	}
	w := total / n
	if i == n-1 {
		w = total - w*(n-1)
	}
	return w
}

// ──────────────────────────── 2D panels ────────────────────────────

func renderPanel(p Panel, width, height int) string {
	cols := max(width-yTickW-1, 8)
	rows := max(height-chromeRows, 4)
	c := newCanvas(cols, rows)
	v := panelViewport(p)

	drawAxes(c, v)
	for _, s := range p.Series {
		if s.Fill {
			drawFill(c, v, s)
		}
	}
	for _, g := range p.Guides {
		drawGuide(c, v, g)
	}
	for i, s := range p.Series {
		drawSeries(c, v, s, seriesColors[i%len(seriesColors)])
	}
	for _, m := range p.Markers {
		drawMarker(c, v, m)
	}

	var sb strings.Builder
	sb.WriteString(plotTitleStyle.Render(truncate(p.Title, width)))
	sb.WriteString("\n")
	for r, line := range c.lines() {
		tick := ""
		switch r {
		case 0:
			tick = tickLabel(v.ymax)
		case rows / 2:
			tick = tickLabel((v.ymax + v.ymin) / 2)
		case rows - 1:
			tick = tickLabel(v.ymin)
		}
		sb.WriteString(tickStyle.Render(fmt.Sprintf("%*s ", yTickW, truncate(tick, yTickW))))
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat(" ", yTickW+1))
	sb.WriteString(tickStyle.Render(xTicks(v, cols)))
	sb.WriteString("\n")
	sb.WriteString(legend(p, width))
	return sb.String()
}

func drawAxes(c *canvas, v viewport) {
	if v.ymin <= 0 && v.ymax >= 0 {
		x0, y0 := v.toPx(c, v.xmin, 0)
		x1, _ := v.toPx(c, v.xmax, 0)
		c.line(x0, y0, x1, y0, axisColor, false)
	}
	if v.xmin <= 0 && v.xmax >= 0 {
		x0, y0 := v.toPx(c, 0, v.ymax)
		_, y1 := v.toPx(c, 0, v.ymin)
		c.line(x0, y0, x0, y1, axisColor, false)
	}
}

// drawFill shades between the curve and its baseline with a checkered
// dot pattern so the curve itself stays readable.
func drawFill(c *canvas, v viewport, s Series) {
	for i, x := range s.X {
		if i >= len(s.Y) || !finite(s.Y[i]) || !finite(x) {
			continue
		}
		px, py := v.toPx(c, x, s.Y[i])
		_, pb := v.toPx(c, x, s.Baseline)
		lo, hi := min(py, pb), max(py, pb)
		lo, hi = max(lo, 0), min(hi, c.height()-1)
		for y := lo; y <= hi; y++ {
			if (px+y)%2 == 0 {
				c.set(px, y, fillColor)
			}
		}
	}
}

func drawGuide(c *canvas, v viewport, g Guide) {
	if !finite(g.Value) {
		return
	}
	if g.Vertical {
		x, y0 := v.toPx(c, g.Value, v.ymax)
		_, y1 := v.toPx(c, g.Value, v.ymin)
		c.line(x, y0, x, y1, guideColor, g.Dashed)
		return
	}
	x0, y := v.toPx(c, v.xmin, g.Value)
	x1, _ := v.toPx(c, v.xmax, g.Value)
	c.line(x0, y, x1, y, guideColor, g.Dashed)
}

// drawSeries connects consecutive finite samples. A non-finite sample
// breaks the line, and so does a jump straight across the view, which is
// how a pole between two samples shows up.
func drawSeries(c *canvas, v viewport, s Series, col lipgloss.Color) {
	for i := 0; i+1 < len(s.X) && i+1 < len(s.Y); i++ {
		y0, y1 := s.Y[i], s.Y[i+1]
		if !finite(y0) || !finite(y1) {
			continue
		}
		if (y0 > v.ymax && y1 < v.ymin) || (y0 < v.ymin && y1 > v.ymax) {
			continue
		}
		ax, ay := v.toPx(c, s.X[i], y0)
		bx, by := v.toPx(c, s.X[i+1], y1)
		c.line(ax, ay, bx, by, col, s.Dashed)
	}
	if len(s.X) == 1 && len(s.Y) == 1 && finite(s.Y[0]) {
		px, py := v.toPx(c, s.X[0], s.Y[0])
		c.set(px, py, col)
	}
}

func drawMarker(c *canvas, v viewport, m Marker) {
	if !finite(m.X) || !finite(m.Y) {
		return
	}
	px, py := v.toPx(c, m.X, m.Y)
	if px < 0 || py < 0 || px >= c.width() || py >= c.height() {
		return
	}
	c.label(px/2, py/4, "●", markerColor)
}

func xTicks(v viewport, cols int) string {
	left, mid, right := tickLabel(v.xmin), tickLabel((v.xmin+v.xmax)/2), tickLabel(v.xmax)
	row := []rune(strings.Repeat(" ", cols))
	put := func(at int, s string) {
		for i, r := range []rune(s) {
			if at+i >= 0 && at+i < len(row) {
				row[at+i] = r
			}
		}
	}
	put(0, left)
	put(cols/2-len([]rune(mid))/2, mid)
	put(cols-len([]rune(right)), right)
	return string(row)
}

func legend(p Panel, width int) string {
	var parts []string
	for i, s := range p.Series {
		if s.Label == "" {
			continue
		}
		swatch := "──"
		if s.Dashed {
			swatch = "╌╌"
		}
		col := seriesColors[i%len(seriesColors)]
		parts = append(parts, lipgloss.NewStyle().Foreground(col).Render(swatch)+" "+legendStyle.Render(s.Label))
	}
	for _, g := range p.Guides {
		if g.Label != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(guideColor).Render("┄┄")+" "+legendStyle.Render(g.Label))
		}
	}
	for _, m := range p.Markers {
		if m.Label != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(markerColor).Render("●")+" "+legendStyle.Render(m.Label))
		}
	}
	line := strings.Join(parts, "  ")
	if lipgloss.Width(line) > width {
		return legendStyle.Render(truncate(stripLegend(p), width))
	}
	return line
}

// stripLegend is the uncolored legend text, used when it must be cut.
func stripLegend(p Panel) string {
	var parts []string
	for _, s := range p.Series {
		if s.Label != "" {
			parts = append(parts, s.Label)
		}
	}
	for _, m := range p.Markers {
		if m.Label != "" {
			parts = append(parts, m.Label)
		}
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}

// ──────────────────────────── 3D surfaces ────────────────────────────

func renderSurface(sf Surface, width, height int) string {
	cols := max(width-1, 8)
	rows := max(height-chromeRows+1, 4)
	c := newCanvas(cols, rows)

	segs := wireframe(sf)
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range segs {
		for _, q := range []point2{s.a, s.b} {
			minX, maxX = math.Min(minX, q.x), math.Max(maxX, q.x)
			minY, maxY = math.Min(minY, q.y), math.Max(maxY, q.y)
		}
	}
	if len(segs) > 0 {
		spanX := math.Max(maxX-minX, 1e-9)
		spanY := math.Max(maxY-minY, 1e-9)
		// Braille dots are close to square, so one scale keeps the shape.
		scale := math.Min(float64(c.width()-1)/spanX, float64(c.height()-1)/spanY)
		offX := (float64(c.width()-1) - spanX*scale) / 2
		offY := (float64(c.height()-1) - spanY*scale) / 2
		toPx := func(q point2) (int, int) {
			return int(math.Round(offX + (q.x-minX)*scale)), int(math.Round(offY + (maxY-q.y)*scale))
		}
		for _, s := range segs {
			ax, ay := toPx(s.a)
			bx, by := toPx(s.b)
			col := heightColors[min(int(s.h*float64(len(heightColors))), len(heightColors)-1)]
			c.line(ax, ay, bx, by, col, false)
		}
	}

	var sb strings.Builder
	sb.WriteString(plotTitleStyle.Render(truncate(sf.Title, width)))
	sb.WriteString("\n")
	for _, line := range c.lines() {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	var scale strings.Builder
	for _, col := range heightColors {
		scale.WriteString(lipgloss.NewStyle().Foreground(col).Render("■"))
	}
	sb.WriteString(legendStyle.Render("low ") + scale.String() + legendStyle.Render(" high"))
	return sb.String()
}
