package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/danhigham/telegrame/internal/auth"
	"github.com/danhigham/telegrame/internal/domain"
)

type authOption struct {
	label    string
	scene    domain.Scene
	provider string
}

var authOptions = []authOption{
	{label: "Sign in with email", scene: domain.SceneSignIn},
	{label: "Create an account", scene: domain.SceneSignUp},
	{label: "Continue with Google", provider: auth.ProviderGoogle},
	{label: "Continue with Facebook", provider: auth.ProviderFacebook},
}

// AuthStartModel lets the user pick how to authenticate. Provider sign-in
// asks for the token issued by the provider; an empty token cancels.
type AuthStartModel struct {
	cursor   int
	provider string
	token    textinput.Model
	loading  bool
	width    int
	height   int
}

func NewAuthStartModel() AuthStartModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "paste token, or leave empty to cancel"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return AuthStartModel{token: ti}
}

func (m AuthStartModel) SetSize(w, h int) AuthStartModel {
	m.width = w
	m.height = h
	m.token.SetWidth(max(10, w-8))
	return m
}

func (m AuthStartModel) SetLoading(v bool) AuthStartModel {
	m.loading = v
	if !v {
		m.provider = ""
		m.token.SetValue("")
		m.token.Blur()
	}
	return m
}

// Update returns a request once a provider token has been submitted.
func (m AuthStartModel) Update(msg tea.Msg) (AuthStartModel, tea.Cmd, *providerRequest) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil, nil
	}

	if m.provider != "" {
		switch key.String() {
		case "esc":
			return m.SetLoading(false), nil, nil
		case "enter":
			req := &providerRequest{provider: m.provider, token: strings.TrimSpace(m.token.Value())}
			m.loading = true
			return m, nil, req
		}
		var cmd tea.Cmd
		m.token, cmd = m.token.Update(msg)
		return m, cmd, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(authOptions)-1 {
			m.cursor++
		}
	case "enter":
		opt := authOptions[m.cursor]
		if opt.provider != "" {
			m.provider = opt.provider
			return m, m.token.Focus(), nil
		}
		scene := opt.scene
		return m, func() tea.Msg { return pushSceneMsg{scene: scene} }, nil
	}
	return m, nil, nil
}

type providerRequest struct {
	provider string
	token    string
}

func (m AuthStartModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome to Telegrame"))
	b.WriteString("\n\n")
	for i, opt := range authOptions {
		line := "  " + opt.label
		if i == m.cursor {
			line = selectedStyle.Render("> " + opt.label)
		}
		b.WriteString(line + "\n")
	}

	if m.provider != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Token from " + m.provider))
		b.WriteString("\n")
		b.WriteString(m.token.View())
		b.WriteString("\n")
	}
	if m.loading {
		b.WriteString("\n" + subtleStyle.Render("Loading..."))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}
