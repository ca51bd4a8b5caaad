package main

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	labelW     = 16 // width of the field label column
	formMinW   = 36 // narrowest the form panel gets
	controlsH  = 4  // controls panel height including border
	pngW, pngH = 1200, 800
	exportPath = "calcdeck.png"
)

// Lipgloss styles used across the TUI.
var (
	formStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(1)

	plotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff9e64")).
				Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	resultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	menuBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff9e64")).
			Padding(0, 1)

	menuSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ff9e64"))

	menuNormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5"))

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))
)
