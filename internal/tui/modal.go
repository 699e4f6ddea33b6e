package tui

import (
	"errors"
	"strings"

	"flooring-cli/internal/model"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalLogin
	modalForeman
	modalConfirm
)

type modal struct {
	kind modalKind

	name  textinput.Model
	pin   textinput.Model
	focus int

	// fixedName is set when changing an existing foreman's PIN.
	fixedName string

	prompt  string
	confirm func(appModel) (appModel, tea.Cmd)
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newPINInput() textinput.Model {
	ti := newInput("4 digits", 4)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errPINDigits
			}
		}
		return nil
	}
	return ti
}

var errPINDigits = errors.New("PIN must be digits")

func (m *appModel) openLogin() tea.Cmd {
	m.modal = modal{kind: modalLogin, name: newInput("Foreman name", 64), pin: newPINInput()}
	m.modal.name.Focus()
	return textinput.Blink
}

func (m *appModel) openForeman(name string) tea.Cmd {
	m.modal = modal{kind: modalForeman, name: newInput("Name", 64), pin: newPINInput(), fixedName: name}
	if name != "" {
		m.modal.name.SetValue(name)
		m.modal.focus = 1
		m.modal.pin.Focus()
	} else {
		m.modal.name.Focus()
	}
	return textinput.Blink
}

func (m *appModel) openConfirm(prompt string, fn func(appModel) (appModel, tea.Cmd)) tea.Cmd {
	m.modal = modal{kind: modalConfirm, prompt: prompt, confirm: fn}
	return nil
}

func (m *appModel) closeModal() {
	if m.modal.kind == modalLogin {
		m.state.ShowLogin = false
		m.state.LoginError = false
	}
	m.modal = modal{}
}

func (m appModel) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal.kind == modalConfirm {
		k, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		switch strings.ToLower(k.String()) {
		case "y", "enter":
			fn := m.modal.confirm
			m.closeModal()
			if fn != nil {
				return fn(m)
			}
		case "n", "esc", "q":
			m.closeModal()
		}
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.closeModal()
			return m, nil
		case "tab", "shift+tab", "up", "down":
			m.setFocus(1 - m.modal.focus)
			return m, nil
		case "enter":
			if m.modal.focus == 0 {
				m.setFocus(1)
				return m, nil
			}
			return m.submitModal()
		}
	}

	var cmd tea.Cmd
	if m.modal.focus == 0 {
		m.modal.name, cmd = m.modal.name.Update(msg)
	} else {
		m.modal.pin, cmd = m.modal.pin.Update(msg)
	}
	return m, cmd
}

func (m *appModel) setFocus(i int) {
	if m.modal.kind == modalForeman && m.modal.fixedName != "" {
		i = 1
	}
	m.modal.focus = i
	if i == 0 {
		m.modal.pin.Blur()
		m.modal.name.Focus()
	} else {
		m.modal.name.Blur()
		m.modal.pin.Focus()
	}
}

func (m appModel) submitModal() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.modal.name.Value())
	pin := m.modal.pin.Value()
	switch m.modal.kind {
	case modalLogin:
		next, eff, err := m.ctrl.BeginLogin(m.state, name, pin)
		if err != nil {
			// Keep the dialog open; LoginError is now set.
			m.state = next
			m.modal.pin.SetValue("")
			return m, nil
		}
		m.modal = modal{}
		return m.begin(next, eff, nil)
	case modalForeman:
		m.modal = modal{}
		return m.begin(m.ctrl.BeginUpsertForeman(m.state, model.Foreman{Name: name, PIN: pin}))
	}
	return m, nil
}

func (m appModel) viewModal() string {
	var b strings.Builder
	switch m.modal.kind {
	case modalConfirm:
		b.WriteString(styleHeader().Render("Are you sure?"))
		b.WriteString("\n\n")
		b.WriteString(m.modal.prompt)
		b.WriteString("\n\n")
		b.WriteString(styleMuted().Render("y: yes  n/esc: cancel"))
	case modalLogin, modalForeman:
		title := "Foreman login"
		if m.modal.kind == modalForeman {
			title = "Add foreman"
			if m.modal.fixedName != "" {
				title = "Change PIN for " + m.modal.fixedName
			}
		}
		b.WriteString(styleHeader().Render(title))
		b.WriteString("\n\n")
		label := lipgloss.NewStyle().Width(6)
		if m.modal.fixedName == "" {
			b.WriteString(label.Render("Name") + m.modal.name.View() + "\n")
		}
		b.WriteString(label.Render("PIN") + m.modal.pin.View() + "\n")
		if m.modal.kind == modalLogin && m.state.LoginError {
			b.WriteString("\n" + styleError().Render("Invalid name or PIN."))
		}
		b.WriteString("\n" + styleMuted().Render("tab: next field  enter: submit  esc: cancel"))
	}
	return styleModal().Render(b.String())
}
