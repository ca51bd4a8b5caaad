package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"calcdeck/internal/plot"
)

// ──────────────────────────── Panel rendering ────────────────────────────

// renderFormPanel renders the inputs for the current operation and the
// result line beneath them.
func (m Model) renderFormPanel(width, height int) string {
	var sb strings.Builder
	inner := max(width-2, 1)

	sb.WriteString(titleStyle.Render("calcdeck · " + m.op.String()))
	sb.WriteString("\n\n")

	for i, f := range m.fields() {
		label := fmt.Sprintf("%-*s", labelW, f.String())
		if i == m.cursor && m.focus == focusForm {
			sb.WriteString(focusedLabelStyle.Render("▸ " + label))
		} else {
			sb.WriteString(labelStyle.Render("  " + label))
		}
		sb.WriteString(m.inputs[f].View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case m.errMsg != "":
		sb.WriteString(errorStyle.Width(inner).Render(m.errMsg))
	case m.result != nil:
		sb.WriteString(resultStyle.Width(inner).Render(m.result.Text))
	default:
		sb.WriteString(dimStyle.Render("Press enter to calculate"))
	}

	if m.statusMsg != "" {
		sb.WriteString("\n\n")
		sb.WriteString(statusStyle.Width(inner).Render(m.statusMsg))
	}

	return formStyle.Width(width).Height(height).Render(sb.String())
}

// renderPlotPanel renders the figure for the latest result.
func (m Model) renderPlotPanel(width, height int) string {
	var body string
	inner := max(width-2, 1)
	switch {
	case m.result != nil && m.result.Plot != nil:
		body = plot.Render(m.result.Plot, inner, max(height-2, 4))
	case m.result != nil:
		body = dimStyle.Render("No plot: the result depends on more than the plotted variables")
	default:
		body = dimStyle.Render("No plot yet")
	}

	title := "Plot"
	if m.result != nil && m.result.Plot != nil {
		title += " · " + m.result.Plot.Kind.String()
	}
	content := titleStyle.Render(title) + "\n\n" + body
	return plotStyle.Width(width).Height(height).Render(content)
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width int) string {
	cfg := m.dispatcher.Config()
	settings := dimStyle.Render(fmt.Sprintf("window ±%s  samples %d  png %s",
		formatParam(cfg.Window), cfg.Samples, m.pngPath))
	return controlsStyle.Width(width).Height(controlsH - 2).Render(m.help.View(m.keys) + "\n" + settings)
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns [x, x+width(overlay)) of bgLine.
// Escape sequences in the background are kept intact on both sides.
func spliceLineAt(bgLine, overlay string, x int) string {
	if w := ansi.StringWidth(bgLine); w < x {
		bgLine += strings.Repeat(" ", x-w)
	}
	left := ansi.Truncate(bgLine, x, "")
	right := ansi.TruncateLeft(bgLine, x+lipgloss.Width(overlay), "")
	return left + overlay + right
}
