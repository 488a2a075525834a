package ui

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
)

var (
	// Dark gray background matching the lipgloss example
	statusBarBg = lipgloss.Color("#353533")
	// Bright magenta for the status pill and time highlight
	statusPillBg    = lipgloss.Color("#FF5FAF")
	statusPillBgOff = lipgloss.Color("#6C5098")
	// Teal/cyan for the time pill
	statusTimeBg = lipgloss.Color("#6124DF")
)

type statusModel struct {
	flow  string
	ready bool
	title string
	email string
	width int
}

func newStatusModel() statusModel {
	return statusModel{flow: "Starting"}
}

// SetWidth sets the full terminal width for the status bar.
func (m statusModel) SetWidth(w int) statusModel {
	m.width = w
	return m
}

// SetScene updates the flow pill and the scene title shown on the left.
func (m statusModel) SetScene(flow, title string) statusModel {
	m.flow = flow
	m.title = title
	return m
}

// SetReady colors the flow pill once the backends are open.
func (m statusModel) SetReady(ready bool) statusModel {
	m.ready = ready
	return m
}

// SetEmail updates the signed-in account shown on the right.
func (m statusModel) SetEmail(email string) statusModel {
	m.email = email
	return m
}

// View renders a full-width status bar:
// [FLOW pill] [scene title] ... [email] [time pill]
func (m statusModel) View() string {
	pillBg := statusPillBgOff
	if m.ready {
		pillBg = statusPillBg
	}
	pillStyle := lipgloss.NewStyle().
		Background(pillBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	pill := pillStyle.Render(strings.ToUpper(m.flow))

	sceneStyle := lipgloss.NewStyle().
		Background(statusBarBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	title := sceneStyle.Render(m.title)

	// Current time pill
	timeStyle := lipgloss.NewStyle().
		Background(statusTimeBg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	timePill := timeStyle.Render(time.Now().Format("15:04"))

	userStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#7B5EA7")).
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true).
		Padding(0, 1)
	userPill := ""
	if m.email != "" {
		userPill = userStyle.Render(m.email)
	}

	left := pill + title
	right := userPill + timePill

	// Fill gap between left and right
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	filler := lipgloss.NewStyle().
		Background(statusBarBg).
		Render(strings.Repeat(" ", gap))

	barStyle := lipgloss.NewStyle().
		Background(statusBarBg).
		Width(m.width)

	return barStyle.Render(left + filler + right)
}
