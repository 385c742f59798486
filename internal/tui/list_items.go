package tui

import (
	"strings"

	"infini-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type projectItem struct {
	project model.Project
}

func (i projectItem) FilterValue() string {
	return strings.TrimSpace(i.project.Title)
}

func (i projectItem) Title() string {
	return i.project.Title
}

func (i projectItem) Description() string {
	desc := i.project.DocumentType.Label()
	if !i.project.UpdatedAt.IsZero() {
		desc += "  " + i.project.UpdatedAt.Format("2006-01-02 15:04")
	}
	return desc
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// We render our own global header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("project", "projects")
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases (common muscle memory).
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

func selectListItemByID(l *list.Model, id string) {
	for idx, it := range l.Items() {
		if pi, ok := it.(projectItem); ok && pi.project.ID == id {
			l.Select(idx)
			return
		}
	}
}
