package tui

import (
	"fmt"
	"strings"

	"infini-cli/internal/api"
	"infini-cli/internal/export"
	"infini-cli/internal/model"
	"infini-cli/internal/outline"
	"infini-cli/internal/project"
	"infini-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type view int

const (
	viewAuth view = iota
	viewDashboard
	viewConfigure
	viewEditor
)

type editorFocus int

const (
	focusSections editorFocus = iota
	focusRefine
	focusComment
)

type appModel struct {
	client   *api.Client
	session  *model.Session
	activity *store.ActivityLog
	exporter *export.Coordinator

	width  int
	height int

	view    view
	errText string
	status  string
	sp      spinner.Model

	// Auth screen.
	registering bool
	authInputs  []textinput.Model // name, email, password; name hidden on login
	authFocus   int
	authBusy    bool

	// Dashboard.
	projectsList    list.Model
	projects        []model.Project
	loadingProjects bool
	confirmDeleteID string

	// Configure screen.
	draft        *outline.Draft
	topicInput   textinput.Model
	docType      model.DocumentType
	configFocus  int // 0 = topic input, 1 = outline rows
	outlineIdx   int
	editingTitle bool
	titleInput   textinput.Model
	suggesting   bool
	creating     bool

	// Editor screen.
	proj            *model.Project
	sections        *project.Store
	sectionIdx      int
	editorFocus     editorFocus
	refineInput     textinput.Model
	commentArea     textarea.Model
	refiningID      string
	loadingSections bool
	exporting       bool
}

func newAppModel(client *api.Client, session *model.Session) appModel {
	m := appModel{
		client:   client,
		session:  session,
		exporter: &export.Coordinator{},
		view:     viewAuth,
		docType:  model.DocumentDocx,
	}

	// The activity log is a local convenience; the TUI works without it.
	if log, err := store.OpenActivityLog(); err == nil {
		m.activity = log
		m.exporter.Activity = log
	}

	m.sp = spinner.New(spinner.WithSpinner(spinner.MiniDot))
	m.sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 120
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254
	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	m.authInputs = []textinput.Model{name, email, password}
	m.authFocus = authFieldEmail
	m.authInputs[m.authFocus].Focus()

	m.projectsList = newList("Projects", []list.Item{})

	m.topicInput = textinput.New()
	m.topicInput.Placeholder = "What should the document be about?"
	m.topicInput.CharLimit = 500
	m.titleInput = textinput.New()
	m.titleInput.CharLimit = 200

	m.refineInput = textinput.New()
	m.refineInput.Placeholder = "Refine with AI, e.g. \"make it more formal\""

	m.commentArea = textarea.New()
	m.commentArea.Placeholder = "Comment on this section"
	m.commentArea.ShowLineNumbers = false

	if session != nil {
		m.view = viewDashboard
		m.loadingProjects = true
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewDashboard {
		return tea.Batch(loadProjectsCmd(m.client), m.sp.Tick)
	}
	return textinput.Blink
}

// busy reports whether any remote operation is outstanding; the spinner only
// ticks while one is.
func (m appModel) busy() bool {
	if m.authBusy || m.loadingProjects || m.suggesting || m.creating {
		return true
	}
	if m.loadingSections || m.exporting || m.refiningID != "" {
		return true
	}
	return m.sections != nil && m.sections.Generating()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Logout works from every signed-in screen.
		if msg.String() == "ctrl+l" && m.view != viewAuth {
			return m.logout("Logged out.")
		}
		m.status = ""
		switch m.view {
		case viewAuth:
			return m.updateAuth(msg)
		case viewDashboard:
			return m.updateDashboard(msg)
		case viewConfigure:
			return m.updateConfigure(msg)
		case viewEditor:
			return m.updateEditor(msg)
		}
		return m, nil

	case authDoneMsg:
		return m.onAuthDone(msg)
	case projectsMsg:
		return m.onProjects(msg)
	case projectDeletedMsg:
		return m.onProjectDeleted(msg)
	case suggestDoneMsg:
		return m.onSuggestDone(msg)
	case projectCreatedMsg:
		return m.onProjectCreated(msg)
	case sectionsLoadedMsg:
		return m.onSectionsLoaded(msg)
	case generateDoneMsg:
		return m.onGenerateDone(msg)
	case refineDoneMsg:
		return m.onRefineDone(msg)
	case feedbackDoneMsg:
		return m.onFeedbackDone(msg)
	case commentDoneMsg:
		return m.onCommentDone(msg)
	case exportDoneMsg:
		return m.onExportDone(msg)
	}

	return m.updateFocusedInput(msg)
}

// updateFocusedInput forwards non-key messages (cursor blink ticks and the
// like) to whichever text component currently has focus.
func (m appModel) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewAuth:
		m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	case viewConfigure:
		if m.editingTitle {
			m.titleInput, cmd = m.titleInput.Update(msg)
		} else if m.configFocus == 0 {
			m.topicInput, cmd = m.topicInput.Update(msg)
		}
	case viewEditor:
		switch m.editorFocus {
		case focusRefine:
			m.refineInput, cmd = m.refineInput.Update(msg)
		case focusComment:
			m.commentArea, cmd = m.commentArea.Update(msg)
		}
	}
	return m, cmd
}

func (m appModel) View() string {
	who := "-"
	if m.session != nil {
		who = m.session.User.Email
	}
	header := styleHeader().Render(fmt.Sprintf("Infini  %s  %s", who, m.viewTitle()))

	var body string
	switch m.view {
	case viewAuth:
		body = m.viewAuth()
	case viewDashboard:
		body = m.viewDashboard()
	case viewConfigure:
		body = m.viewConfigure()
	case viewEditor:
		body = m.viewEditor()
	}

	lines := []string{header}
	if m.errText != "" {
		lines = append(lines, styleError().Render(m.errText))
	} else if m.status != "" {
		lines = append(lines, styleMuted().Render(m.status))
	}
	lines = append(lines, body, m.footer())
	return strings.Join(lines, "\n\n")
}

func (m appModel) viewTitle() string {
	switch m.view {
	case viewAuth:
		if m.registering {
			return "Register"
		}
		return "Login"
	case viewDashboard:
		return "Dashboard"
	case viewConfigure:
		return "New " + m.docType.Label()
	case viewEditor:
		if m.proj != nil {
			return m.proj.Title
		}
		return "Editor"
	}
	return ""
}

func (m appModel) footer() string {
	var help string
	switch m.view {
	case viewAuth:
		help = "tab: next field  enter: submit  ctrl+r: switch login/register  ctrl+c: quit"
	case viewDashboard:
		if m.confirmDeleteID != "" {
			help = "y: delete project  esc: keep it"
		} else {
			help = "enter: open  n: new  x: delete  r: reload  ctrl+l: logout  q: quit"
		}
	case viewConfigure:
		if m.editingTitle {
			help = "enter: save title  esc: cancel"
		} else {
			help = "tab: topic/outline  n: add  x: remove  K/J: move  enter: rename  ctrl+g: AI suggest  ctrl+t: type  ctrl+s: create & generate  esc: back"
		}
	case viewEditor:
		unit := "section"
		if m.proj != nil {
			unit = strings.ToLower(m.proj.DocumentType.UnitName())
		}
		switch m.editorFocus {
		case focusRefine:
			help = "enter: refine " + unit + "  esc: back to list"
		case focusComment:
			help = "ctrl+s: save comment  esc: discard"
		default:
			help = "up/down: " + unit + "s  tab: refine  c: comment  f: like  d: dislike  u: clear feedback  g: regenerate  e: export  esc: back"
		}
	}
	return lipgloss.NewStyle().Faint(true).Render(help)
}

func (m *appModel) resize() {
	h := m.height - 8
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.projectsList.SetSize(w, h)
	m.commentArea.SetWidth(min(w-4, 78))
	m.commentArea.SetHeight(4)
	m.refineInput.Width = min(w-10, 72)
	m.topicInput.Width = min(w-10, 72)
	m.titleInput.Width = min(w-14, 60)
}

// logout drops the persisted session and returns to the login screen. Used
// both for the explicit key and for auth failures reported by the gateway.
func (m appModel) logout(status string) (tea.Model, tea.Cmd) {
	_ = store.ClearSession()
	m.client.SetSession(nil)
	m.session = nil
	m.proj = nil
	m.sections = nil
	m.projects = nil
	m.projectsList.SetItems(nil)
	m.confirmDeleteID = ""
	m.loadingProjects = false
	m.suggesting = false
	m.creating = false
	m.loadingSections = false
	m.exporting = false
	m.refiningID = ""
	m.view = viewAuth
	m.registering = false
	m.authBusy = false
	m.errText = ""
	m.status = status
	m.setAuthFocus(authFieldEmail)
	return m, textinput.Blink
}

// staleEditorMsg reports whether a section-level result belongs to a project
// the user is no longer editing. Late arrivals are dropped.
func (m appModel) staleEditorMsg(projectID string) bool {
	return m.view != viewEditor || m.sections == nil || m.sections.ProjectID != projectID
}

func (m appModel) failOp(err opError) (tea.Model, tea.Cmd) {
	if err.auth {
		return m.logout("Session expired; log in again.")
	}
	m.errText = err.text
	return m, nil
}
