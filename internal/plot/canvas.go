package plot

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ──────────────────────────── Braille canvas ────────────────────────────

// Each terminal cell holds a 2×4 braille dot matrix.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type canvas struct {
	cols, rows int
	bits       [][]uint8
	color      [][]lipgloss.Color
	text       [][]rune
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: max(cols, 1), rows: max(rows, 1)}
	c.bits = make([][]uint8, c.rows)
	c.color = make([][]lipgloss.Color, c.rows)
	c.text = make([][]rune, c.rows)
	for r := range c.bits {
		c.bits[r] = make([]uint8, c.cols)
		c.color[r] = make([]lipgloss.Color, c.cols)
		c.text[r] = make([]rune, c.cols)
	}
	return c
}

// pixel dimensions
func (c *canvas) width() int  { return c.cols * 2 }
func (c *canvas) height() int { return c.rows * 4 }

func (c *canvas) set(px, py int, col lipgloss.Color) {
	if px < 0 || py < 0 || px >= c.width() || py >= c.height() {
		return
	}
	r, k := py/4, px/2
	c.bits[r][k] |= brailleBits[py%4][px%2]
	c.color[r][k] = col
}

// line draws with Bresenham. Dashed lines skip every other pair of dots.
func (c *canvas) line(x0, y0, x1, y1 int, col lipgloss.Color, dashed bool) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for step := 0; ; step++ {
		if !dashed || step%4 < 2 {
			c.set(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// label writes text into cells starting at cell (col, row), clipped.
func (c *canvas) label(col, row int, s string, color lipgloss.Color) {
	if row < 0 || row >= c.rows {
		return
	}
	for i, r := range []rune(s) {
		k := col + i
		if k < 0 || k >= c.cols {
			continue
		}
		c.text[row][k] = r
		c.color[row][k] = color
	}
}

// lines renders the canvas, batching runs of equal color.
func (c *canvas) lines() []string {
	out := make([]string, c.rows)
	for r := 0; r < c.rows; r++ {
		var sb, run strings.Builder
		var runColor lipgloss.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			}
			run.Reset()
		}
		for k := 0; k < c.cols; k++ {
			ch := ' '
			col := lipgloss.Color("")
			switch {
			case c.text[r][k] != 0:
				ch, col = c.text[r][k], c.color[r][k]
			case c.bits[r][k] != 0:
				ch, col = rune(0x2800+int(c.bits[r][k])), c.color[r][k]
			}
			if col != runColor {
				flush()
				runColor = col
			}
			run.WriteRune(ch)
		}
		flush()
		out[r] = sb.String()
	}
	return out
}

// ──────────────────────────── Viewport ────────────────────────────

type viewport struct {
	xmin, xmax float64
	ymin, ymax float64
}

// clampPx bounds projected coordinates so Bresenham never walks far off
// screen for near-vertical asymptotes.
const clampPx = 1 << 14

func (v viewport) toPx(c *canvas, x, y float64) (int, int) {
	px := (x - v.xmin) / (v.xmax - v.xmin) * float64(c.width()-1)
	py := (v.ymax - y) / (v.ymax - v.ymin) * float64(c.height()-1)
	px = math.Max(-clampPx, math.Min(clampPx, px))
	py = math.Max(-clampPx, math.Min(clampPx, py))
	return int(math.Round(px)), int(math.Round(py))
}

// robustRange returns the span of the finite values, trimming the outer
// 2% on each side when there are enough samples so a pole does not
// flatten the rest of the curve.
func robustRange(vs []float64) (lo, hi float64, ok bool) {
	var fin []float64
	for _, v := range vs {
		if finite(v) {
			fin = append(fin, v)
		}
	}
	if len(fin) == 0 {
		return 0, 0, false
	}
	sort.Float64s(fin)
	if len(fin) < 50 {
		return fin[0], fin[len(fin)-1], true
	}
	i := int(0.02 * float64(len(fin)-1))
	j := int(math.Ceil(0.98 * float64(len(fin)-1)))
	return fin[i], fin[j], true
}

// panelViewport fits the series, markers, guides and fill baselines of p.
func panelViewport(p Panel) viewport {
	v := viewport{xmin: math.Inf(1), xmax: math.Inf(-1)}
	var ys []float64
	for _, s := range p.Series {
		for _, x := range s.X {
			if finite(x) {
				v.xmin = math.Min(v.xmin, x)
				v.xmax = math.Max(v.xmax, x)
			}
		}
		ys = append(ys, s.Y...)
	}
	ylo, yhi, ok := robustRange(ys)
	if !ok {
		ylo, yhi = -1, 1
	}
	extend := func(y float64) {
		if finite(y) {
			ylo, yhi = math.Min(ylo, y), math.Max(yhi, y)
		}
	}
	for _, s := range p.Series {
		if s.Fill {
			extend(s.Baseline)
		}
	}
	for _, m := range p.Markers {
		extend(m.Y)
		if finite(m.X) {
			v.xmin, v.xmax = math.Min(v.xmin, m.X), math.Max(v.xmax, m.X)
		}
	}
	for _, g := range p.Guides {
		if !g.Vertical {
			extend(g.Value)
		}
	}
	if math.IsInf(v.xmin, 0) {
		v.xmin, v.xmax = -1, 1
	}
	if v.xmax == v.xmin {
		v.xmin, v.xmax = v.xmin-1, v.xmax+1
	}
	if yhi == ylo {
		ylo, yhi = ylo-1, yhi+1
	}
	pad := 0.05 * (yhi - ylo)
	v.ymin, v.ymax = ylo-pad, yhi+pad
	return v
}
