package cli

import (
	"infini-cli/internal/store"

	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent local AI activity (generation, refines, exports)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := store.OpenActivityLog()
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := log.Tail(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": entries})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	return cmd
}
