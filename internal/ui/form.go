package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/danhigham/telegrame/internal/forms"
)

type formField struct {
	field forms.Field
	label string
	input textinput.Model
}

// FormModel is a validated input form. Hints update on every edit and the
// submit button stays disabled until every required field is valid.
type FormModel struct {
	title   string
	submit  string
	footer  string
	fields  []formField
	state   *forms.State
	focus   int // len(fields) means the submit button
	loading bool
	width   int
	height  int
}

var fieldLabels = map[forms.Field]string{
	forms.DisplayName: "Display name",
	forms.Username:    "Username",
	forms.Email:       "Email",
	forms.Password:    "Password",
}

// NewFormModel builds a form for kind with one input per required field.
func NewFormModel(kind forms.Kind, title, submit, footer string) FormModel {
	m := FormModel{
		title:  title,
		submit: submit,
		footer: footer,
		state:  forms.New(kind),
	}
	for _, f := range kind.Required().Fields() {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = fieldLabels[f]
		ti.CharLimit = 64
		if f == forms.Password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.fields = append(m.fields, formField{field: f, label: fieldLabels[f], input: ti})
	}
	return m
}

// Reset clears all input and hints and focuses the first field.
func (m FormModel) Reset() (FormModel, tea.Cmd) {
	m.state = forms.New(m.state.Kind())
	for i := range m.fields {
		m.fields[i].input.SetValue("")
	}
	m.loading = false
	m.focus = 0
	return m, m.focusCurrent()
}

func (m FormModel) Ready() bool { return m.state.Ready() && !m.loading }

func (m FormModel) Value(f forms.Field) string { return m.state.Value(f) }

func (m FormModel) Hint(f forms.Field) string { return m.state.Hint(f) }

// Set edits a field as if typed, for callers that prefill values.
func (m FormModel) Set(f forms.Field, text string) FormModel {
	for i := range m.fields {
		if m.fields[i].field == f {
			m.fields[i].input.SetValue(text)
			m.state.Set(f, text)
		}
	}
	return m
}

func (m FormModel) SetLoading(v bool) FormModel {
	m.loading = v
	return m
}

func (m FormModel) SetSize(w, h int) FormModel {
	m.width = w
	m.height = h
	for i := range m.fields {
		m.fields[i].input.SetWidth(max(10, w-8))
	}
	return m
}

// Update handles navigation and editing. It reports submitted=true when the
// user pressed enter on a ready form.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}

	switch key.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % (len(m.fields) + 1)
		return m, m.focusCurrent(), false
	case "shift+tab", "up":
		m.focus = (m.focus + len(m.fields)) % (len(m.fields) + 1)
		return m, m.focusCurrent(), false
	case "enter":
		if m.focus < len(m.fields)-1 {
			m.focus++
			return m, m.focusCurrent(), false
		}
		return m, nil, m.Ready()
	}

	if m.focus >= len(m.fields) {
		return m, nil, false
	}
	f := &m.fields[m.focus]
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if after := f.input.Value(); after != before {
		m.state.Set(f.field, after)
	}
	return m, cmd, false
}

func (m FormModel) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.fields {
		if i == m.focus {
			cmd = m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
	return cmd
}

func (m FormModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for _, f := range m.fields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n")
		if hint := m.state.Hint(f.field); hint != "" {
			b.WriteString(hintStyle.Render(hint))
		}
		b.WriteString("\n")
	}

	label := m.submit
	if m.loading {
		label = "Loading..."
	}
	b.WriteString("\n")
	b.WriteString(button(label, m.Ready(), m.focus == len(m.fields)))
	if m.footer != "" {
		b.WriteString("\n\n")
		b.WriteString(subtleStyle.Render(m.footer))
	}

	return lipgloss.NewStyle().Width(m.width).Render(b.String())
}
