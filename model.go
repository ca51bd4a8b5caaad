package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"calcdeck/internal/calc"
	"calcdeck/internal/plot"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusForm focus = iota
	focusMenu
)

// fieldCount is the number of distinct request fields.
const fieldCount = int(calc.FieldInner) + 1

// fieldPlaceholders are shown in empty inputs.
var fieldPlaceholders = [fieldCount]string{
	calc.FieldFunction:   "x**2 + 3*x - 1",
	calc.FieldVariable:   "x",
	calc.FieldVariable2:  "y",
	calc.FieldLower:      "0",
	calc.FieldUpper:      "pi",
	calc.FieldLimitPoint: "0, oo or -oo",
	calc.FieldOuter:      "u**2  (u is the inner function)",
	calc.FieldInner:      "sin(x)",
}

// keyMap is the form's key bindings; it also feeds the help footer.
type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Calculate key.Binding
	Menu      key.Binding
	Export    key.Binding
	Reset     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("⇧tab/↑", "prev field")),
		Calculate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "calculate")),
		Menu:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "operation")),
		Export:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save png")),
		Reset:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "reset")),
		Help:      key.NewBinding(key.WithKeys("ctrl+_", "f1"), key.WithHelp("F1", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc/^C", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Calculate, k.Next, k.Menu, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Calculate},
		{k.Menu, k.Export, k.Reset},
		{k.Help, k.Quit},
	}
}

// Model represents the TUI application state.
type Model struct {
	dispatcher *calc.Dispatcher
	op         calc.Operation
	inputs     [fieldCount]textinput.Model
	cursor     int // index into op.Required()
	result     *calc.Result
	errMsg     string
	statusMsg  string // transient status message (e.g. save confirmation)
	pngPath    string
	width      int
	height     int
	focus      focus

	// Menu state
	menuCat  int
	menuItem int

	keys keyMap
	help help.Model
}

func initialModel(d *calc.Dispatcher) Model {
	m := Model{
		dispatcher: d,
		op:         calc.Integral,
		pngPath:    exportPath,
		focus:      focusForm,
		keys:       defaultKeyMap(),
		help:       help.New(),
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 256
		ti.Width = 32
		m.inputs[i] = ti
	}
	m.defaults()
	m.focusField()
	return m
}

// defaults fills in the variable names most requests use.
func (m *Model) defaults() {
	m.inputs[calc.FieldVariable].SetValue("x")
	m.inputs[calc.FieldVariable2].SetValue("y")
}

func (m Model) fields() []calc.Field { return m.op.Required() }

// focusField moves keyboard focus to the input under the cursor.
func (m *Model) focusField() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	fields := m.fields()
	if len(fields) == 0 {
		return nil
	}
	m.cursor = min(max(m.cursor, 0), len(fields)-1)
	return m.inputs[fields[m.cursor]].Focus()
}

// setOperation switches the form to op, keeping any text already typed.
func (m *Model) setOperation(op calc.Operation) tea.Cmd {
	m.op = op
	m.cursor = 0
	m.result = nil
	m.errMsg = ""
	return m.focusField()
}

// request snapshots the visible fields into an immutable request.
func (m Model) request() calc.Request {
	req := calc.NewRequest(m.op)
	for _, f := range m.fields() {
		req = req.With(f, m.inputs[f].Value())
	}
	return req
}

// calculate runs the form through the dispatcher. Failures become the
// result line; the form stays editable either way.
func (m *Model) calculate() {
	res, err := m.dispatcher.Calculate(m.request())
	if err != nil {
		m.result = nil
		m.errMsg = calc.Message(m.op, err)
		return
	}
	m.result = res
	m.errMsg = ""
	if res.Gaps > 0 {
		m.statusMsg = fmt.Sprintf("%d samples outside the domain left as gaps", res.Gaps)
	}
}

func (m *Model) export() {
	if m.result == nil || m.result.Plot == nil {
		m.statusMsg = "Nothing to save: calculate a plottable result first"
		return
	}
	if err := plot.ExportPNG(m.result.Plot, m.pngPath, pngW, pngH); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.statusMsg = "Saved " + m.pngPath
}

func (m *Model) reset() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.defaults()
	m.result = nil
	m.errMsg = ""
	m.cursor = 0
	m.statusMsg = "Form cleared"
	return m.focusField()
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = max(msg.Width-4, 0)
		inputW := max(m.formWidth()-labelW-4, 8)
		for i := range m.inputs {
			m.inputs[i].Width = inputW
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusMenu:
			return m.updateMenu(msg)
		case focusForm:
			return m.updateForm(msg)
		}
	}

	// Cursor blink and other input messages.
	fields := m.fields()
	var cmd tea.Cmd
	if m.focus == focusForm && len(fields) > 0 {
		f := fields[m.cursor]
		m.inputs[f], cmd = m.inputs[f].Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.fields()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.cursor = (m.cursor + 1) % len(fields)
		cmd := m.focusField()
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		m.cursor = (m.cursor - 1 + len(fields)) % len(fields)
		cmd := m.focusField()
		return m, cmd
	case key.Matches(msg, m.keys.Calculate):
		m.calculate()
		return m, nil
	case key.Matches(msg, m.keys.Menu):
		m.focus = focusMenu
		m.menuCat, m.menuItem = menuPosition(m.op)
		return m, nil
	case key.Matches(msg, m.keys.Export):
		m.export()
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		cmd := m.reset()
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	f := fields[m.cursor]
	var cmd tea.Cmd
	m.inputs[f], cmd = m.inputs[f].Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusForm
	case "up", "k":
		if m.menuItem > 0 {
			m.menuItem--
		}
	case "down", "j":
		if m.menuItem < len(opMenu[m.menuCat].items)-1 {
			m.menuItem++
		}
	case "left", "h":
		if m.menuCat > 0 {
			m.menuCat--
			m.menuItem = 0
		}
	case "right", "l":
		if m.menuCat < len(opMenu)-1 {
			m.menuCat++
			m.menuItem = 0
		}
	case "enter":
		m.focus = focusForm
		cmd := m.setOperation(opMenu[m.menuCat].items[m.menuItem].op)
		return m, cmd
	}
	return m, nil
}

// ──────────────────────────── View ────────────────────────────

func (m Model) formWidth() int {
	return max(m.width/3, formMinW)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	formW := m.formWidth()
	plotW := max(m.width-formW-4, 10)
	topH := max(m.height-controlsH-2, 8)

	formPanel := m.renderFormPanel(formW, topH)
	plotPanel := m.renderPlotPanel(plotW, topH)
	controlsPanel := m.renderControlsPanel(m.width - 2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, formPanel, plotPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	return frame
}
