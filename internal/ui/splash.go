package ui

import "charm.land/lipgloss/v2"

const splashArt = `
 _       _
| |_ ___| | ___  __ _ _ __ __ _ _ __ ___   ___
| __/ _ \ |/ _ \/ _` + "`" + ` | '__/ _` + "`" + ` | '_ ` + "`" + ` _ \ / _ \
| ||  __/ |  __/ (_| | | | (_| | | | | | |  __/
 \__\___|_|\___|\__, |_|  \__,_|_| |_| |_|\___|
                |___/
`

// SplashModel renders a centered splash overlay on startup.
// It stays visible for at least the minimum duration even if
// the backends are ready sooner.
type SplashModel struct {
	visible       bool
	timerDone     bool
	ready         bool
	width, height int
}

// NewSplashModel creates a visible splash.
func NewSplashModel() SplashModel {
	return SplashModel{visible: true}
}

// SetSize updates the terminal dimensions for centering.
func (s SplashModel) SetSize(w, h int) SplashModel {
	s.width = w
	s.height = h
	return s
}

// IsVisible reports whether the splash is still showing.
func (s SplashModel) IsVisible() bool {
	return s.visible
}

// TimerDone marks the minimum display duration as elapsed.
func (s SplashModel) TimerDone() SplashModel {
	s.timerDone = true
	if s.ready {
		s.visible = false
	}
	return s
}

// Ready marks the backends as open. The splash dismisses only if the
// minimum timer has also elapsed.
func (s SplashModel) Ready() SplashModel {
	s.ready = true
	if s.timerDone {
		s.visible = false
	}
	return s
}

// View renders the splash box. Use BoxOffset to place it.
func (s SplashModel) View() string {
	if !s.visible || s.width == 0 || s.height == 0 {
		return ""
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(highlightColor).
		Padding(1, 3).
		Render(splashArt)
}

// BoxOffset returns the (x, y) that centers the splash box.
func (s SplashModel) BoxOffset() (int, int) {
	return centerOffset(s.View(), s.width, s.height)
}
