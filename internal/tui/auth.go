package tui

import (
	"strings"

	"infini-cli/internal/api"
	"infini-cli/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	authFieldName = iota
	authFieldEmail
	authFieldPassword
)

func (m *appModel) setAuthFocus(i int) {
	for j := range m.authInputs {
		m.authInputs[j].Blur()
	}
	m.authFocus = i
	m.authInputs[i].Focus()
}

func (m appModel) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+r":
		m.registering = !m.registering
		m.errText = ""
		if !m.registering && m.authFocus == authFieldName {
			m.setAuthFocus(authFieldEmail)
		}
		return m, nil

	case "tab", "down", "enter":
		if msg.String() == "enter" && m.authFocus == authFieldPassword {
			return m.submitAuth()
		}
		next := m.authFocus + 1
		if next > authFieldPassword {
			next = m.firstAuthField()
		}
		m.setAuthFocus(next)
		return m, textinput.Blink

	case "shift+tab", "up":
		prev := m.authFocus - 1
		if prev < m.firstAuthField() {
			prev = authFieldPassword
		}
		m.setAuthFocus(prev)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m appModel) firstAuthField() int {
	if m.registering {
		return authFieldName
	}
	return authFieldEmail
}

func (m appModel) submitAuth() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(m.authInputs[authFieldName].Value())
	email := strings.TrimSpace(m.authInputs[authFieldEmail].Value())
	password := m.authInputs[authFieldPassword].Value()

	if email == "" || password == "" {
		m.errText = api.ValidationError{Reason: "email and password are required"}.Error()
		return m, nil
	}
	if m.registering && name == "" {
		m.errText = api.ValidationError{Reason: "name is required"}.Error()
		return m, nil
	}

	m.errText = ""
	m.authBusy = true
	if m.registering {
		return m, tea.Batch(registerCmd(m.client, email, password, name), m.sp.Tick)
	}
	return m, tea.Batch(loginCmd(m.client, email, password), m.sp.Tick)
}

func (m appModel) onAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if m.view != viewAuth {
		return m, nil
	}
	m.authBusy = false
	if !msg.err.ok() {
		m.errText = msg.err.text
		return m, nil
	}

	m.session = msg.session
	m.client.SetSession(msg.session)
	// Best effort: a failed save only means the session won't survive restarts.
	_ = store.SaveSession(msg.session)

	m.errText = ""
	if msg.registered {
		m.status = "Welcome, " + msg.session.User.Name + "."
	}
	m.authInputs[authFieldPassword].SetValue("")
	m.view = viewDashboard
	m.loadingProjects = true
	return m, tea.Batch(loadProjectsCmd(m.client), m.sp.Tick)
}

func (m appModel) viewAuth() string {
	var b strings.Builder
	if m.registering {
		b.WriteString("Create an account\n\n")
		b.WriteString("  " + m.authInputs[authFieldName].View() + "\n")
	} else {
		b.WriteString("Sign in to continue\n\n")
	}
	b.WriteString("  " + m.authInputs[authFieldEmail].View() + "\n")
	b.WriteString("  " + m.authInputs[authFieldPassword].View() + "\n")
	if m.authBusy {
		b.WriteString("\n" + m.sp.View() + styleMuted().Render(" Contacting the gateway..."))
	}
	return b.String()
}
