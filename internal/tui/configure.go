package tui

import (
	"fmt"
	"strings"

	"infini-cli/internal/api"
	"infini-cli/internal/model"
	"infini-cli/internal/outline"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) updateConfigure(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Edits are blocked while a suggestion or the submit is in flight.
	if m.suggesting || m.creating {
		return m, nil
	}

	if m.editingTitle {
		switch msg.String() {
		case "enter":
			m.draft.Update(m.outlineIdx, strings.TrimSpace(m.titleInput.Value()))
			m.editingTitle = false
			return m, nil
		case "esc":
			m.editingTitle = false
			return m, nil
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.view = viewDashboard
		m.errText = ""
		m.loadingProjects = true
		return m, tea.Batch(loadProjectsCmd(m.client), m.sp.Tick)

	case "tab":
		if m.configFocus == 0 {
			m.configFocus = 1
			m.topicInput.Blur()
		} else {
			m.configFocus = 0
			m.topicInput.Focus()
		}
		return m, textinput.Blink

	case "ctrl+t":
		if m.docType == model.DocumentDocx {
			m.docType = model.DocumentPptx
		} else {
			m.docType = model.DocumentDocx
		}
		return m, nil

	case "ctrl+g":
		topic := strings.TrimSpace(m.topicInput.Value())
		if topic == "" {
			m.errText = api.ValidationError{Reason: "a topic is required before suggesting an outline"}.Error()
			return m, nil
		}
		m.errText = ""
		m.suggesting = true
		return m, tea.Batch(suggestOutlineCmd(m.client, topic, m.docType), m.sp.Tick)

	case "ctrl+s":
		topic := strings.TrimSpace(m.topicInput.Value())
		if topic == "" {
			m.errText = api.ValidationError{Reason: "a topic is required"}.Error()
			return m, nil
		}
		if m.draft.Len() == 0 {
			m.errText = api.ValidationError{Reason: "the outline needs at least one " + strings.ToLower(m.docType.UnitName())}.Error()
			return m, nil
		}
		m.errText = ""
		m.creating = true
		return m, tea.Batch(submitDraftCmd(m.client, m.draft, topic, m.docType), m.sp.Tick)
	}

	if m.configFocus == 0 {
		var cmd tea.Cmd
		m.topicInput, cmd = m.topicInput.Update(msg)
		return m, cmd
	}

	// Outline row keys.
	switch msg.String() {
	case "up", "k":
		if m.outlineIdx > 0 {
			m.outlineIdx--
		}
	case "down", "j":
		if m.outlineIdx < m.draft.Len()-1 {
			m.outlineIdx++
		}
	case "K", "shift+up":
		m.draft.Move(m.outlineIdx, outline.Up)
		if m.outlineIdx > 0 {
			m.outlineIdx--
		}
	case "J", "shift+down":
		m.draft.Move(m.outlineIdx, outline.Down)
		if m.outlineIdx < m.draft.Len()-1 {
			m.outlineIdx++
		}
	case "n":
		m.draft.Add()
		m.outlineIdx = m.draft.Len() - 1
	case "x":
		m.draft.Remove(m.outlineIdx)
		if m.outlineIdx >= m.draft.Len() && m.outlineIdx > 0 {
			m.outlineIdx--
		}
	case "enter":
		if m.draft.Len() > 0 {
			m.titleInput.SetValue(m.draft.Title(m.outlineIdx))
			m.titleInput.CursorEnd()
			m.titleInput.Focus()
			m.editingTitle = true
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m appModel) onSuggestDone(msg suggestDoneMsg) (tea.Model, tea.Cmd) {
	if m.view != viewConfigure || !m.suggesting {
		return m, nil
	}
	m.suggesting = false
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	// Wholesale replace; a failed suggestion above leaves the draft untouched.
	m.draft = outline.NewDraftFrom(msg.titles)
	if m.outlineIdx >= m.draft.Len() {
		m.outlineIdx = 0
	}
	m.errText = ""
	return m, nil
}

func (m appModel) onProjectCreated(msg projectCreatedMsg) (tea.Model, tea.Cmd) {
	if m.view != viewConfigure || !m.creating {
		return m, nil
	}
	m.creating = false
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	return m.openEditor(*msg.project)
}

func (m appModel) viewConfigure() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Type: %s  %s\n\n", m.docType.Label(), styleMuted().Render("(ctrl+t to switch)"))
	b.WriteString("Topic\n  " + m.topicInput.View() + "\n\n")

	b.WriteString("Outline\n")
	unit := strings.ToLower(m.docType.UnitName())
	if m.draft.Len() == 0 {
		b.WriteString(styleMuted().Render("  (empty; press n to add a "+unit+")") + "\n")
	}
	for i := 0; i < m.draft.Len(); i++ {
		if m.editingTitle && i == m.outlineIdx {
			b.WriteString("  " + m.titleInput.View() + "\n")
			continue
		}
		row := fmt.Sprintf("%2d. %s", i+1, m.draft.Title(i))
		if m.configFocus == 1 && i == m.outlineIdx {
			row = styleSelected().Render(row)
		}
		b.WriteString("  " + row + "\n")
	}

	if m.suggesting {
		b.WriteString("\n" + m.sp.View() + styleMuted().Render(" Asking the AI for an outline..."))
	}
	if m.creating {
		b.WriteString("\n" + m.sp.View() + styleMuted().Render(" Creating project..."))
	}
	return b.String()
}
