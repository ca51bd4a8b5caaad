package main

import (
	"fmt"
	"strings"

	"calcdeck/internal/calc"
)

// menuItem represents a single operation choice in the menu.
type menuItem struct {
	op      calc.Operation
	symbol  string
	example string
}

// menuCategory groups related operations under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

// opMenu defines the operation picker categories and items.
var opMenu = []menuCategory{
	{
		name: "Calculus",
		items: []menuItem{
			{op: calc.Integral, symbol: "∫ f dx", example: "x**2"},
			{op: calc.Derivative, symbol: "d/dx", example: "sin(x)"},
			{op: calc.Limit, symbol: "lim", example: "sin(x)/x at 0"},
		},
	},
	{
		name: "Region",
		items: []menuItem{
			{op: calc.Area, symbol: "∫ₐᵇ f", example: "x on [0, 2]"},
			{op: calc.Volume, symbol: "π∫ f²", example: "1 on [0, 1]"},
			{op: calc.Average, symbol: "f̄", example: "x**2 on [0, 3]"},
			{op: calc.SurfaceArea, symbol: "2π∫ f", example: "x on [0, 1]"},
			{op: calc.Centroid, symbol: "(x̄, ȳ)", example: "x on [0, 1]"},
		},
	},
	{
		name: "Multivariable",
		items: []menuItem{
			{op: calc.PartialDerivative, symbol: "∂/∂y", example: "x*y**2"},
			{op: calc.ChainRule, symbol: "f(g(x))'", example: "u**2, sin(x)"},
		},
	},
}

// menuPosition returns the category and item index of op.
func menuPosition(op calc.Operation) (cat, item int) {
	for ci, c := range opMenu {
		for ii, it := range c.items {
			if it.op == op {
				return ci, ii
			}
		}
	}
	return 0, 0
}

// renderMenu renders the floating operation-picker popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Choose Operation"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range opMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeTabStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(opMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 40)))
	sb.WriteString("\n")

	cat := opMenu[m.menuCat]
	for i, item := range cat.items {
		name := fmt.Sprintf("%-20s", item.op)
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ " + name))
			sb.WriteString(resultStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(name))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		sb.WriteString("\n")
	}
	item := cat.items[m.menuItem]
	sb.WriteString(dimStyle.Render(" e.g. " + item.example))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
