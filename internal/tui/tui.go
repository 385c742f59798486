package tui

import (
	"infini-cli/internal/api"
	"infini-cli/internal/model"
	"infini-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client. A nil session starts on the login
// screen; a restored session goes straight to the dashboard.
func Run(client *api.Client, session *model.Session) error {
	theme := ""
	if cfg, err := store.LoadConfig(); err == nil {
		theme = cfg.Theme
	}
	applyColorProfilePreference()
	applyThemePreference(theme)

	m := newAppModel(client, session)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
