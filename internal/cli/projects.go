package cli

import (
	"infini-cli/internal/model"
	"infini-cli/internal/outline"
	"infini-cli/internal/store"

	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": projects})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var topic string
	var docType string
	var sections []string
	var suggest bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project from a topic and outline",
		Long: "Creates the project with empty sections. Content is generated on the first\n" +
			"`sections generate` (the TUI editor triggers this automatically on open).",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			dt := model.DocumentType(docType)
			draft := outline.NewDraft()
			if len(sections) > 0 {
				draft = outline.NewDraftFrom(sections)
			}
			if suggest {
				if err := draft.Suggest(cmd.Context(), client, topic, dt); err != nil {
					return writeErr(cmd, err)
				}
			}

			p, err := draft.Submit(cmd.Context(), client, topic, dt)
			if err != nil {
				return writeErr(cmd, err)
			}
			if log, err := store.OpenActivityLog(); err == nil {
				_ = log.Append(cmd.Context(), "project.create", p.ID, p.Title)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic / main prompt")
	cmd.Flags().StringVar(&docType, "type", string(model.DocumentDocx), "Document type (docx|pptx)")
	cmd.Flags().StringArrayVar(&sections, "section", nil, "Section title (repeatable; default: a starter outline)")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "Replace the outline with an AI suggestion before creating")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and all its sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "deleted"})
		},
	}
}
