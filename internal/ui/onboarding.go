package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
)

type onboardingPage struct {
	title string
	text  string
}

var onboardingPages = []onboardingPage{
	{"Telegrame", "The world's **fastest** messaging app. It is free and secure."},
	{"Fast", "Telegrame delivers messages faster than any other application."},
	{"Free", "Telegrame is free forever. No ads. No subscription fees."},
	{"Powerful", "Telegrame has no limits on the size of your chats and media."},
	{"Secure", "Telegrame keeps your messages safe from hacker attacks."},
	{"Cloud-Based", "Telegrame lets you access your messages from multiple devices."},
}

// OnboardingModel pages through the introduction, rendered as markdown.
type OnboardingModel struct {
	page     int
	renderer *glamour.TermRenderer
	width    int
	height   int
}

func NewOnboardingModel() OnboardingModel {
	return OnboardingModel{}
}

func (m OnboardingModel) SetSize(w, h int) OnboardingModel {
	m.width = w
	m.height = h
	wordWrap := w - 4
	if wordWrap < 10 {
		wordWrap = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wordWrap),
	)
	if err == nil {
		m.renderer = r
	}
	return m
}

func (m OnboardingModel) Page() int { return m.page }

func (m OnboardingModel) last() bool { return m.page == len(onboardingPages)-1 }

func (m OnboardingModel) Update(msg tea.Msg) (OnboardingModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "right", "l", "space":
		if !m.last() {
			m.page++
		}
	case "left", "h":
		if m.page > 0 {
			m.page--
		}
	case "enter":
		if m.last() {
			return m, func() tea.Msg { return finishFlowMsg{} }
		}
		m.page++
	case "s":
		m.page = len(onboardingPages) - 1
	}
	return m, nil
}

func (m OnboardingModel) View() string {
	p := onboardingPages[m.page]
	md := fmt.Sprintf("# %s\n\n%s\n", p.title, p.text)

	body := md
	if m.renderer != nil {
		if r, err := m.renderer.Render(md); err == nil {
			body = strings.Trim(r, "\n")
		}
	}

	dots := make([]string, len(onboardingPages))
	for i := range onboardingPages {
		if i == m.page {
			dots[i] = selectedStyle.Render("●")
		} else {
			dots[i] = subtleStyle.Render("○")
		}
	}

	action := subtleStyle.Render("←/→ browse · s skip")
	if m.last() {
		action = button("Start Messaging", true, true)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		body,
		"",
		strings.Join(dots, " "),
		"",
		action,
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
