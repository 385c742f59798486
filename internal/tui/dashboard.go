package tui

import (
	"strings"

	"infini-cli/internal/model"
	"infini-cli/internal/outline"
	"infini-cli/internal/project"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter prompt is open the list owns the keyboard.
	if m.projectsList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.projectsList, cmd = m.projectsList.Update(msg)
		return m, cmd
	}

	if m.confirmDeleteID != "" {
		switch msg.String() {
		case "y", "Y":
			id := m.confirmDeleteID
			m.confirmDeleteID = ""
			return m, deleteProjectCmd(m.client, id)
		case "n", "esc":
			m.confirmDeleteID = ""
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		m.loadingProjects = true
		m.errText = ""
		return m, tea.Batch(loadProjectsCmd(m.client), m.sp.Tick)
	case "n":
		return m.enterConfigure()
	case "x":
		if it, ok := m.projectsList.SelectedItem().(projectItem); ok {
			m.confirmDeleteID = it.project.ID
		}
		return m, nil
	case "enter":
		if it, ok := m.projectsList.SelectedItem().(projectItem); ok {
			return m.openEditor(it.project)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.projectsList, cmd = m.projectsList.Update(msg)
	return m, cmd
}

func (m appModel) onProjects(msg projectsMsg) (tea.Model, tea.Cmd) {
	if m.view != viewDashboard {
		return m, nil
	}
	m.loadingProjects = false
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.errText = ""
	m.projects = msg.projects
	m.refreshProjects()
	return m, nil
}

func (m appModel) onProjectDeleted(msg projectDeletedMsg) (tea.Model, tea.Cmd) {
	if m.view != viewDashboard {
		return m, nil
	}
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.status = "Project deleted."
	m.loadingProjects = true
	return m, tea.Batch(loadProjectsCmd(m.client), m.sp.Tick)
}

func (m *appModel) refreshProjects() {
	curID := ""
	if it, ok := m.projectsList.SelectedItem().(projectItem); ok {
		curID = it.project.ID
	}
	var items []list.Item
	for _, p := range m.projects {
		items = append(items, projectItem{project: p})
	}
	m.projectsList.SetItems(items)
	if curID != "" {
		selectListItemByID(&m.projectsList, curID)
	}
}

// enterConfigure resets the configuration screen to a fresh draft.
func (m appModel) enterConfigure() (tea.Model, tea.Cmd) {
	m.draft = outline.NewDraft()
	m.docType = model.DocumentDocx
	m.topicInput.SetValue("")
	m.topicInput.Focus()
	m.configFocus = 0
	m.outlineIdx = 0
	m.editingTitle = false
	m.suggesting = false
	m.creating = false
	m.errText = ""
	m.view = viewConfigure
	return m, textinput.Blink
}

func (m appModel) openEditor(p model.Project) (tea.Model, tea.Cmd) {
	m.proj = &p
	m.sections = project.New(m.client, p.ID)
	m.sections.Activity = m.activity
	m.sectionIdx = 0
	m.editorFocus = focusSections
	m.refineInput.SetValue("")
	m.refineInput.Blur()
	m.commentArea.Blur()
	m.refiningID = ""
	m.loadingSections = true
	m.exporting = false
	m.errText = ""
	m.view = viewEditor
	return m, tea.Batch(loadSectionsCmd(m.sections), m.sp.Tick)
}

func (m appModel) viewDashboard() string {
	if m.loadingProjects && len(m.projects) == 0 {
		return m.sp.View() + styleMuted().Render(" Loading projects...")
	}
	if len(m.projects) == 0 {
		return styleMuted().Render("No projects yet. Press n to start one.")
	}

	var b strings.Builder
	if m.confirmDeleteID != "" {
		title := m.confirmDeleteID
		for _, p := range m.projects {
			if p.ID == m.confirmDeleteID {
				title = p.Title
			}
		}
		b.WriteString(styleError().Render("Delete \""+title+"\" and all its content? (y/esc)") + "\n\n")
	}
	b.WriteString(m.projectsList.View())
	return b.String()
}
