package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	highlightColor = lipgloss.Color("170")
	dimColor       = lipgloss.Color("240") // gray
	errorColor     = lipgloss.Color("203")

	titleStyle    = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	hintStyle     = lipgloss.NewStyle().Foreground(errorColor)
	subtleStyle   = lipgloss.NewStyle().Foreground(dimColor)
	selectedStyle = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3498DB")).
			Padding(0, 2)
	focusedButtonStyle = buttonStyle.Background(lipgloss.Color("#FF5FAF")).Bold(true)
	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("237")).
				Padding(0, 2)

	// Rainbow gradient colors for focused borders (wraps back to start).
	rainbowBlend = []color.Color{
		lipgloss.Color("#FF6B9D"), // pink
		lipgloss.Color("#9B59B6"), // purple
		lipgloss.Color("#3498DB"), // blue
		lipgloss.Color("#2ECC71"), // green
		lipgloss.Color("#FF6B9D"), // pink (wrap)
	}
)

// applyBorderColor applies either the rainbow blend (focused) or dim border color.
func applyBorderColor(s lipgloss.Style, focused bool) lipgloss.Style {
	if focused {
		return s.BorderForegroundBlend(rainbowBlend...)
	}
	return s.BorderForeground(dimColor)
}

// panel draws content in a rounded border of the given outer size.
func panel(content string, w, h int, focused bool) string {
	contentH := h - 2
	if contentH < 0 {
		contentH = 0
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(w).
		Height(h)
	return applyBorderColor(style, focused).Render(truncateHeight(content, contentH))
}

// button renders a submit button in its enabled, focused or disabled state.
func button(label string, enabled, focused bool) string {
	switch {
	case !enabled:
		return disabledButtonStyle.Render(label)
	case focused:
		return focusedButtonStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

// truncateHeight limits s to at most maxLines lines.
func truncateHeight(s string, maxLines int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}

// centerOffset returns the (x, y) that centers box within w by h.
func centerOffset(box string, w, h int) (int, int) {
	x := (w - lipgloss.Width(box)) / 2
	y := (h - lipgloss.Height(box)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// overlay draws box centered over base.
func overlay(base, box string, w, h int) string {
	x, y := centerOffset(box, w, h)
	bg := lipgloss.NewLayer(base)
	fg := lipgloss.NewLayer(box).X(x).Y(y).Z(1)
	return lipgloss.NewCompositor(bg, fg).Render()
}
