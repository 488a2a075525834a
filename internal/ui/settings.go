package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

type settingsAction int

const (
	actionNone settingsAction = iota
	actionSignOut
	actionDeleteAccount
)

var settingsItems = []struct {
	label  string
	action settingsAction
}{
	{"Log out", actionSignOut},
	{"Delete account", actionDeleteAccount},
}

// SettingsModel offers sign-out and account deletion. Deletion asks for
// confirmation first.
type SettingsModel struct {
	cursor     int
	confirming bool
	loading    bool
	email      string
	width      int
	height     int
}

func NewSettingsModel() SettingsModel {
	return SettingsModel{}
}

func (m SettingsModel) SetSize(w, h int) SettingsModel {
	m.width = w
	m.height = h
	return m
}

func (m SettingsModel) SetEmail(email string) SettingsModel {
	m.email = email
	return m
}

func (m SettingsModel) SetLoading(v bool) SettingsModel {
	m.loading = v
	m.confirming = false
	return m
}

// Update returns the action the user chose, if any.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, settingsAction) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, actionNone
	}

	if m.confirming {
		switch key.String() {
		case "y":
			m.confirming = false
			return m, actionDeleteAccount
		default:
			m.confirming = false
		}
		return m, actionNone
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(settingsItems)-1 {
			m.cursor++
		}
	case "enter":
		action := settingsItems[m.cursor].action
		if action == actionDeleteAccount {
			m.confirming = true
			return m, actionNone
		}
		return m, action
	}
	return m, actionNone
}

func (m SettingsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n")
	if m.email != "" {
		b.WriteString(subtleStyle.Render(m.email))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for i, it := range settingsItems {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + it.label))
		} else {
			b.WriteString("  " + it.label)
		}
		b.WriteString("\n")
	}
	switch {
	case m.confirming:
		b.WriteString("\n" + hintStyle.Render("Delete your account? This cannot be undone. (y/n)"))
	case m.loading:
		b.WriteString("\n" + subtleStyle.Render("Loading..."))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}
