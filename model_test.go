package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"calcdeck/internal/calc"
	"calcdeck/internal/plot"
	"calcdeck/internal/symbolic"
)

func newTestModel() Model {
	d := calc.NewDispatcher(symbolic.NewEngine(), plot.DefaultConfig(), nil)
	m := initialModel(d)
	return send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyMenu  = tea.KeyMsg{Type: tea.KeyCtrlO}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyReset = tea.KeyMsg{Type: tea.KeyCtrlR}
)

// chooseOperation opens the menu and walks to op.
func chooseOperation(m Model, op calc.Operation) Model {
	m = send(m, keyMenu)
	m.menuCat, m.menuItem = 0, 0
	cat, item := menuPosition(op)
	for range cat {
		m = send(m, keyRight)
	}
	for range item {
		m = send(m, keyDown)
	}
	return send(m, keyEnter)
}

func TestModelCalculatesIntegral(t *testing.T) {
	m := newTestModel()
	m = typeText(m, "x**2")
	m = send(m, keyEnter)

	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if m.result == nil || m.result.Text != "Integral: x**3/3" {
		t.Fatalf("result = %+v, want Integral: x**3/3", m.result)
	}
	if !strings.Contains(m.View(), "Integral: x**3/3") {
		t.Errorf("view should show the result line")
	}
}

func TestModelMissingFieldsShowError(t *testing.T) {
	m := newTestModel()
	m = chooseOperation(m, calc.Area)
	if m.op != calc.Area {
		t.Fatalf("op = %s, want Area", m.op)
	}
	m = send(m, keyEnter)

	want := "Error: Area needs Function, Lower Bound, Upper Bound"
	if m.errMsg != want {
		t.Errorf("errMsg = %q, want %q", m.errMsg, want)
	}
	if m.result != nil {
		t.Errorf("a failed calculation must not leave a result")
	}
}

func TestModelRegionOperation(t *testing.T) {
	m := newTestModel()
	m = chooseOperation(m, calc.Area)
	m = typeText(m, "x")
	m = send(m, keyTab, keyTab) // skip the variable
	m = typeText(m, "0")
	m = send(m, keyTab)
	m = typeText(m, "2")
	m = send(m, keyEnter)

	if m.result == nil || m.result.Text != "Area: 2" {
		t.Fatalf("result = %+v, errMsg = %q", m.result, m.errMsg)
	}
	if m.result.Plot == nil || !m.result.Plot.Panels[0].Series[0].Fill {
		t.Errorf("area plot should shade under the curve")
	}
}

func TestModelTabCycles(t *testing.T) {
	m := newTestModel()
	m = chooseOperation(m, calc.Limit)
	n := len(calc.Limit.Required())
	for i := 1; i <= n; i++ {
		m = send(m, keyTab)
		if m.cursor != i%n {
			t.Fatalf("after %d tabs cursor = %d, want %d", i, m.cursor, i%n)
		}
	}
	f := m.fields()[m.cursor]
	if !m.inputs[f].Focused() {
		t.Errorf("input under the cursor should have focus")
	}
}

func TestModelMenuEscKeepsOperation(t *testing.T) {
	m := newTestModel()
	m = send(m, keyMenu, keyRight, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusForm || m.op != calc.Integral {
		t.Errorf("esc should close the menu without changing the operation")
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel()
	m = typeText(m, "sin(x)")
	m = send(m, keyEnter, keyReset)

	if m.result != nil || m.errMsg != "" {
		t.Errorf("reset should clear the result")
	}
	if v := m.inputs[calc.FieldFunction].Value(); v != "" {
		t.Errorf("function input = %q after reset", v)
	}
	if v := m.inputs[calc.FieldVariable].Value(); v != "x" {
		t.Errorf("variable input = %q after reset, want x", v)
	}
}

func TestModelExport(t *testing.T) {
	m := newTestModel()
	m = send(m, keySave)
	if !strings.HasPrefix(m.statusMsg, "Nothing to save") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}

	m.pngPath = filepath.Join(t.TempDir(), "out.png")
	m = typeText(m, "cos(x)")
	m = send(m, keyEnter, keySave)
	if m.statusMsg != "Saved "+m.pngPath {
		t.Fatalf("statusMsg = %q", m.statusMsg)
	}
	if _, err := os.Stat(m.pngPath); err != nil {
		t.Errorf("png not written: %v", err)
	}
}

func TestModelGapStatus(t *testing.T) {
	m := newTestModel()
	m = typeText(m, "1/x")
	m = send(m, keyEnter)
	if !strings.Contains(m.statusMsg, "outside the domain") {
		t.Errorf("statusMsg = %q, want a gap notice", m.statusMsg)
	}
}

func TestOverlayAt(t *testing.T) {
	tests := []struct {
		bg, ov string
		x, y   int
		want   string
	}{
		{"abcdef\nghijkl", "XY", 2, 1, "abcdef\nghXYkl"},
		{"abcdef", "XY", 0, 0, "XYcdef"},
		{"ab", "XY", 4, 0, "ab  XY"},
		{"abc", "XY", 0, 3, "abc"},
	}
	for _, tt := range tests {
		if got := overlayAt(tt.bg, tt.ov, tt.x, tt.y); got != tt.want {
			t.Errorf("overlayAt(%q, %q, %d, %d) = %q, want %q", tt.bg, tt.ov, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{[]string{"eval", "--op", "area", "--f", "x", "--lower", "0", "--upper", "2"}, "Area: 2\n", false},
		{[]string{"eval", "--op", "derivative", "--f", "x**2"}, "Derivative: 2*x\n", false},
		{[]string{"eval", "--op", "partial", "--f", "x"}, "Partial Derivative with respect to y: 0\n", false},
		{[]string{"eval", "--op", "average", "--f", "x", "--lower", "1", "--upper", "1"}, "Average: division by zero\n", true},
		{[]string{"eval", "--op", "limit", "--f", "1/x", "--point", "0"}, "Limit: undefined\n", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(tt.args)
		err := cmd.Execute()
		if (err != nil) != tt.wantErr {
			t.Errorf("%v: err = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
		if out.String() != tt.want {
			t.Errorf("%v: output %q, want %q", tt.args, out.String(), tt.want)
		}
	}
}

func TestEvalCommandWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.png")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"eval", "--op", "volume", "--f", "1", "--lower", "0", "--upper", "1", "--png", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !strings.Contains(out.String(), "Saved "+path) {
		t.Errorf("output = %q", out.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("png not written: %v", err)
	}
}

func TestEvalCommandUnknownOperation(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"eval", "--op", "fourier", "--f", "x"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("unknown operation should fail")
	}
	if !strings.Contains(out.String(), `unknown operation "fourier"`) {
		t.Errorf("output = %q", out.String())
	}
}
