package tui

import (
	"context"
	"errors"

	"infini-cli/internal/api"
	"infini-cli/internal/export"
	"infini-cli/internal/model"
	"infini-cli/internal/outline"
	"infini-cli/internal/project"

	tea "github.com/charmbracelet/bubbletea"
)

// opError is the result half of every async gateway message. auth marks the
// failures that invalidate the whole session (expired/rejected token) rather
// than just the one operation.
type opError struct {
	text string
	auth bool
}

func (e opError) ok() bool { return e.text == "" }

func describeErr(err error) opError {
	if err == nil {
		return opError{}
	}
	var ae api.AuthError
	if errors.As(err, &ae) {
		return opError{text: ae.Error(), auth: true}
	}
	return opError{text: err.Error()}
}

type authDoneMsg struct {
	session    *model.Session
	registered bool
	err        opError
}

type projectsMsg struct {
	projects []model.Project
	err      opError
}

type projectDeletedMsg struct {
	id  string
	err opError
}

type suggestDoneMsg struct {
	titles []string
	err    opError
}

type projectCreatedMsg struct {
	project *model.Project
	err     opError
}

// Section-level results all carry the project ID so a message arriving after
// the user has navigated away is discarded instead of mutating the wrong view.
type sectionsLoadedMsg struct {
	projectID string
	err       opError
}

type generateDoneMsg struct {
	projectID string
	err       opError
}

type refineDoneMsg struct {
	projectID string
	sectionID string
	err       opError
}

type feedbackDoneMsg struct {
	projectID string
	sectionID string
	err       opError
}

type commentDoneMsg struct {
	projectID string
	sectionID string
	err       opError
}

type exportDoneMsg struct {
	projectID string
	path      string
	err       opError
}

func loginCmd(client *api.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		s, err := client.Login(context.Background(), email, password)
		return authDoneMsg{session: s, err: describeErr(err)}
	}
}

func registerCmd(client *api.Client, email, password, name string) tea.Cmd {
	return func() tea.Msg {
		s, err := client.Register(context.Background(), email, password, name)
		return authDoneMsg{session: s, registered: true, err: describeErr(err)}
	}
}

func loadProjectsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ps, err := client.ListProjects(context.Background())
		return projectsMsg{projects: ps, err: describeErr(err)}
	}
}

func deleteProjectCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		err := client.DeleteProject(context.Background(), id)
		return projectDeletedMsg{id: id, err: describeErr(err)}
	}
}

func suggestOutlineCmd(client *api.Client, topic string, docType model.DocumentType) tea.Cmd {
	return func() tea.Msg {
		titles, err := client.SuggestOutline(context.Background(), topic, docType)
		return suggestDoneMsg{titles: titles, err: describeErr(err)}
	}
}

// submitDraftCmd validates and submits the outline draft. The draft is not
// mutated here; the model blocks edits while the submit is in flight.
func submitDraftCmd(client *api.Client, d *outline.Draft, topic string, docType model.DocumentType) tea.Cmd {
	return func() tea.Msg {
		p, err := d.Submit(context.Background(), client, topic, docType)
		return projectCreatedMsg{project: p, err: describeErr(err)}
	}
}

func loadSectionsCmd(s *project.Store) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Load(context.Background())
		return sectionsLoadedMsg{projectID: s.ProjectID, err: describeErr(err)}
	}
}

func generateAllCmd(s *project.Store) tea.Cmd {
	return func() tea.Msg {
		_, err := s.GenerateAll(context.Background())
		return generateDoneMsg{projectID: s.ProjectID, err: describeErr(err)}
	}
}

func refineCmd(s *project.Store, sectionID, instruction string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Refine(context.Background(), sectionID, instruction)
		return refineDoneMsg{projectID: s.ProjectID, sectionID: sectionID, err: describeErr(err)}
	}
}

func feedbackCmd(s *project.Store, sectionID string, liked *bool) tea.Cmd {
	return func() tea.Msg {
		err := s.SetFeedback(context.Background(), sectionID, liked)
		return feedbackDoneMsg{projectID: s.ProjectID, sectionID: sectionID, err: describeErr(err)}
	}
}

func commentCmd(s *project.Store, sectionID, text string) tea.Cmd {
	return func() tea.Msg {
		err := s.SetComment(context.Background(), sectionID, text)
		return commentDoneMsg{projectID: s.ProjectID, sectionID: sectionID, err: describeErr(err)}
	}
}

func exportCmd(coord *export.Coordinator, gw export.Gateway, p model.Project, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := coord.Export(context.Background(), gw, p, dir)
		return exportDoneMsg{projectID: p.ID, path: path, err: describeErr(err)}
	}
}
