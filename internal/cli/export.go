package cli

import (
	"infini-cli/internal/export"
	"infini-cli/internal/store"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Download the project's document artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			// The artifact name needs the project's title and type.
			projects, err := client.ListProjects(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			idx := -1
			for i, p := range projects {
				if p.ID == args[0] {
					idx = i
					break
				}
			}
			if idx < 0 {
				return writeErr(cmd, errNotFound("project", args[0]))
			}

			coord := &export.Coordinator{}
			if log, err := store.OpenActivityLog(); err == nil {
				coord.Activity = log
			}
			path, err := coord.Export(cmd.Context(), client, projects[idx], out)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"path": path}})
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&out, "out", ".", "Directory to write the artifact into")
	return cmd
}
