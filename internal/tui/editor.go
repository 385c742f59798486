package tui

import (
	"fmt"
	"strings"

	"infini-cli/internal/api"
	"infini-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) selectedSection() (model.Section, bool) {
	secs := m.sections.Sections()
	if m.sectionIdx < 0 || m.sectionIdx >= len(secs) {
		return model.Section{}, false
	}
	return secs[m.sectionIdx], true
}

// generationBlocked reports (and surfaces) the generating sub-state. While a
// full generation is in flight every content mutation is refused.
func (m *appModel) generationBlocked() bool {
	if m.sections.Generating() {
		m.errText = api.ValidationError{Reason: "content is being generated; wait for it to finish"}.Error()
		return true
	}
	return false
}

func (m appModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.editorFocus {
	case focusRefine:
		return m.updateEditorRefine(msg)
	case focusComment:
		return m.updateEditorComment(msg)
	}

	switch msg.String() {
	case "esc", "backspace":
		m.view = viewDashboard
		m.proj = nil
		m.sections = nil
		m.errText = ""
		m.loadingProjects = true
		return m, tea.Batch(loadProjectsCmd(m.client), m.sp.Tick)

	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.sectionIdx > 0 {
			m.sectionIdx--
		}
		return m, nil

	case "down", "j":
		if m.sectionIdx < len(m.sections.Sections())-1 {
			m.sectionIdx++
		}
		return m, nil

	case "tab":
		if _, ok := m.selectedSection(); ok {
			m.editorFocus = focusRefine
			m.refineInput.Focus()
			return m, textinput.Blink
		}
		return m, nil

	case "c":
		if sec, ok := m.selectedSection(); ok {
			m.commentArea.SetValue(sec.Comment)
			m.commentArea.Focus()
			m.editorFocus = focusComment
			return m, textinput.Blink
		}
		return m, nil

	case "f", "d", "u":
		sec, ok := m.selectedSection()
		if !ok || m.generationBlocked() {
			return m, nil
		}
		liked := feedbackFor(msg.String(), sec.Liked)
		m.errText = ""
		return m, feedbackCmd(m.sections, sec.ID, liked)

	case "g":
		if m.generationBlocked() {
			return m, nil
		}
		m.errText = ""
		return m, tea.Batch(generateAllCmd(m.sections), m.sp.Tick)

	case "e":
		if m.exporting {
			m.errText = api.ValidationError{Reason: "an export for this project is already in progress"}.Error()
			return m, nil
		}
		m.errText = ""
		m.exporting = true
		return m, tea.Batch(exportCmd(m.exporter, m.client, *m.proj, "."), m.sp.Tick)
	}
	return m, nil
}

// feedbackFor maps the three feedback keys onto the tri-state value. Pressing
// the key for the current state clears it back to neutral.
func feedbackFor(key string, current *bool) *bool {
	switch key {
	case "f":
		if current != nil && *current {
			return nil
		}
		v := true
		return &v
	case "d":
		if current != nil && !*current {
			return nil
		}
		v := false
		return &v
	}
	return nil // "u"
}

func (m appModel) updateEditorRefine(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editorFocus = focusSections
		m.refineInput.Blur()
		return m, nil
	case "enter":
		sec, ok := m.selectedSection()
		if !ok {
			return m, nil
		}
		instruction := strings.TrimSpace(m.refineInput.Value())
		if instruction == "" {
			m.errText = api.ValidationError{Reason: "a refine instruction is required"}.Error()
			return m, nil
		}
		if m.generationBlocked() || m.refiningID != "" {
			return m, nil
		}
		m.errText = ""
		m.refiningID = sec.ID
		return m, tea.Batch(refineCmd(m.sections, sec.ID, instruction), m.sp.Tick)
	}
	var cmd tea.Cmd
	m.refineInput, cmd = m.refineInput.Update(msg)
	return m, cmd
}

func (m appModel) updateEditorComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editorFocus = focusSections
		m.commentArea.Blur()
		return m, nil
	case "ctrl+s":
		sec, ok := m.selectedSection()
		if !ok || m.generationBlocked() {
			return m, nil
		}
		m.errText = ""
		return m, commentCmd(m.sections, sec.ID, m.commentArea.Value())
	}
	var cmd tea.Cmd
	m.commentArea, cmd = m.commentArea.Update(msg)
	return m, cmd
}

func (m appModel) onSectionsLoaded(msg sectionsLoadedMsg) (tea.Model, tea.Cmd) {
	if m.staleEditorMsg(msg.projectID) {
		return m, nil
	}
	m.loadingSections = false
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.clampSectionIdx()
	return m, nil
}

func (m appModel) onGenerateDone(msg generateDoneMsg) (tea.Model, tea.Cmd) {
	if m.staleEditorMsg(msg.projectID) {
		return m, nil
	}
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.clampSectionIdx()
	m.status = "Content generated."
	return m, nil
}

func (m appModel) onRefineDone(msg refineDoneMsg) (tea.Model, tea.Cmd) {
	if m.staleEditorMsg(msg.projectID) {
		return m, nil
	}
	if m.refiningID == msg.sectionID {
		m.refiningID = ""
	}
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.refineInput.SetValue("")
	m.status = "Refined."
	return m, nil
}

func (m appModel) onFeedbackDone(msg feedbackDoneMsg) (tea.Model, tea.Cmd) {
	if m.staleEditorMsg(msg.projectID) {
		return m, nil
	}
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	return m, nil
}

func (m appModel) onCommentDone(msg commentDoneMsg) (tea.Model, tea.Cmd) {
	if m.staleEditorMsg(msg.projectID) {
		return m, nil
	}
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.editorFocus = focusSections
	m.commentArea.Blur()
	m.status = "Comment saved."
	return m, nil
}

func (m appModel) onExportDone(msg exportDoneMsg) (tea.Model, tea.Cmd) {
	if m.proj == nil || m.proj.ID != msg.projectID {
		return m, nil
	}
	m.exporting = false
	if !msg.err.ok() {
		return m.failOp(msg.err)
	}
	m.status = "Exported to " + msg.path
	return m, nil
}

func (m *appModel) clampSectionIdx() {
	n := len(m.sections.Sections())
	if m.sectionIdx >= n {
		m.sectionIdx = n - 1
	}
	if m.sectionIdx < 0 {
		m.sectionIdx = 0
	}
}

func (m appModel) viewEditor() string {
	if m.sections == nil {
		return ""
	}
	if m.sections.Generating() {
		return m.sp.View() + styleMuted().Render(" Generating content with AI. This may take a moment...")
	}
	if m.loadingSections {
		return m.sp.View() + styleMuted().Render(" Loading "+strings.ToLower(m.proj.DocumentType.UnitName())+"s...")
	}

	secs := m.sections.Sections()
	if len(secs) == 0 {
		return styleMuted().Render("This project has no content yet. Press g to generate.")
	}

	bodyHeight := m.height - 10
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	leftWidth := m.width / 3
	if leftWidth < 24 {
		leftWidth = 24
	}
	rightWidth := m.width - leftWidth - 2
	if rightWidth < 30 {
		rightWidth = 30
	}

	var left strings.Builder
	for i, sec := range secs {
		row := fmt.Sprintf("%2d. %s%s", i+1, sec.Title, sectionMarks(sec))
		if xansi.StringWidth(row) > leftWidth {
			row = xansi.Cut(row, 0, leftWidth)
		}
		if i == m.sectionIdx && m.editorFocus == focusSections {
			row = styleSelected().Render(row)
		}
		left.WriteString(row + "\n")
	}

	var right string
	if sec, ok := m.selectedSection(); ok {
		right = m.renderSectionDetail(sec, rightWidth)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(leftWidth).Render(left.String()),
		lipgloss.NewStyle().Width(rightWidth).Render(right),
	)

	var extra string
	switch m.editorFocus {
	case focusRefine:
		extra = "\nRefine: " + m.refineInput.View()
		if m.refiningID != "" {
			extra += "\n" + m.sp.View() + styleMuted().Render(" Refining with AI...")
		}
	case focusComment:
		extra = "\nComment:\n" + m.commentArea.View()
	}
	if m.exporting {
		extra += "\n" + m.sp.View() + styleMuted().Render(" Exporting...")
	}
	return body + extra
}

func sectionMarks(sec model.Section) string {
	var marks []string
	if sec.Liked != nil {
		if *sec.Liked {
			marks = append(marks, "+1")
		} else {
			marks = append(marks, "-1")
		}
	}
	if strings.TrimSpace(sec.Comment) != "" {
		marks = append(marks, "#")
	}
	if len(marks) == 0 {
		return ""
	}
	return "  [" + strings.Join(marks, " ") + "]"
}

func (m appModel) renderSectionDetail(sec model.Section, width int) string {
	var b strings.Builder
	b.WriteString(styleHeader().Render(sec.Title) + "\n")
	if sec.Liked != nil {
		if *sec.Liked {
			b.WriteString(lipgloss.NewStyle().Foreground(colorSuccess).Render("Liked") + "\n")
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(colorError).Render("Disliked") + "\n")
		}
	}
	b.WriteString("\n")
	if sec.HasContent() {
		b.WriteString(renderMarkdown(*sec.Content, width-2))
	} else {
		b.WriteString(styleMuted().Render("No content yet."))
	}
	if strings.TrimSpace(sec.Comment) != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(colorChromeMutedFg).Render("Comment: "+sec.Comment))
	}
	return b.String()
}
