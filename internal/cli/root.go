package cli

import (
	"fmt"
	"os"
	"strings"

	"infini-cli/internal/api"
	"infini-cli/internal/format"
	"infini-cli/internal/model"
	"infini-cli/internal/store"
	"infini-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	APIBase    string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "infini",
		Short:        "Infini AI document authoring CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  infini

  # Scriptable commands
  infini login --email you@example.com --password ...
  infini projects create --topic "EV market analysis 2025" --type docx --suggest
  infini sections refine sec-12 --prompt "Shorten to 100 words"
  infini export proj-3 --out ~/Documents
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIBase, "api", envOr("INFINI_API_BASE", ""), "API gateway base URL (default: persisted config, then "+api.DefaultBaseURL+")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newSectionsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newActivityCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	client, session, err := authedClient(app)
	if err != nil {
		// Without a session the TUI starts on the login screen.
		if _, ok := err.(api.AuthError); !ok {
			return err
		}
		client = api.New(resolveBaseURL(app))
		session = nil
	}
	return tui.Run(client, session)
}

// resolveBaseURL picks the gateway endpoint: flag/env first, then persisted
// config, then the built-in default.
func resolveBaseURL(app *App) string {
	if strings.TrimSpace(app.APIBase) != "" {
		return app.APIBase
	}
	if cfg, err := store.LoadConfig(); err == nil && strings.TrimSpace(cfg.APIBase) != "" {
		return cfg.APIBase
	}
	return api.DefaultBaseURL
}

// anonClient is for the auth endpoints, which run without a token.
func anonClient(app *App) *api.Client {
	return api.New(resolveBaseURL(app))
}

// authedClient requires a persisted session and returns a client carrying
// its token.
func authedClient(app *App) (*api.Client, *model.Session, error) {
	session, err := store.RestoreSession()
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, api.AuthError{Reason: "not logged in; run `infini login`"}
	}
	client := api.New(resolveBaseURL(app))
	client.SetSession(session)
	return client, session, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
