package cli

import (
	"infini-cli/internal/project"
	"infini-cli/internal/store"

	"github.com/spf13/cobra"
)

func newSectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Section commands",
	}
	cmd.AddCommand(newSectionsListCmd(app))
	cmd.AddCommand(newSectionsGenerateCmd(app))
	cmd.AddCommand(newSectionsRefineCmd(app))
	cmd.AddCommand(newSectionsFeedbackCmd(app))
	cmd.AddCommand(newSectionsCommentCmd(app))
	return cmd
}

// sectionStore builds a loaded project store for one-off CLI mutations.
func sectionStore(cmd *cobra.Command, app *App, projectID string) (*project.Store, error) {
	client, _, err := authedClient(app)
	if err != nil {
		return nil, err
	}
	s := project.New(client, projectID)
	if log, err := store.OpenActivityLog(); err == nil {
		s.Activity = log
	}
	if _, err := s.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return s, nil
}

func newSectionsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's sections in order",
		Long: "Note: on a freshly created project this triggers the initial bulk\n" +
			"generation, exactly as opening the project in the TUI would.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sectionStore(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": s.Sections()})
		},
	}
}

func newSectionsGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <project-id>",
		Short: "Re-run bulk AI generation for every section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := authedClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s := project.New(client, args[0])
			if log, err := store.OpenActivityLog(); err == nil {
				s.Activity = log
			}
			secs, err := s.GenerateAll(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": secs})
		},
	}
}

func newSectionsRefineCmd(app *App) *cobra.Command {
	var projectID, prompt string

	cmd := &cobra.Command{
		Use:   "refine <section-id>",
		Short: "Rewrite one section with a natural-language instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sectionStore(cmd, app, projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			sec, err := s.Refine(cmd.Context(), args[0], prompt)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sec})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project the section belongs to")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Refine instruction (e.g. \"Shorten to 100 words\")")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newSectionsFeedbackCmd(app *App) *cobra.Command {
	var projectID string
	var like, dislike, clear bool

	cmd := &cobra.Command{
		Use:   "feedback <section-id>",
		Short: "Record like/dislike feedback for a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var liked *bool
			switch {
			case like:
				v := true
				liked = &v
			case dislike:
				v := false
				liked = &v
			case clear:
				liked = nil
			default:
				return writeErr(cmd, errOneOf("--like", "--dislike", "--clear"))
			}

			s, err := sectionStore(cmd, app, projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.SetFeedback(cmd.Context(), args[0], liked); err != nil {
				return writeErr(cmd, err)
			}
			sec, _ := s.Section(args[0])
			return writeOut(cmd, app, map[string]any{"data": sec})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project the section belongs to")
	cmd.Flags().BoolVar(&like, "like", false, "Mark the section liked")
	cmd.Flags().BoolVar(&dislike, "dislike", false, "Mark the section disliked")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear any prior vote")
	_ = cmd.MarkFlagRequired("project")
	cmd.MarkFlagsMutuallyExclusive("like", "dislike", "clear")
	return cmd
}

func newSectionsCommentCmd(app *App) *cobra.Command {
	var projectID, text string

	cmd := &cobra.Command{
		Use:   "comment <section-id>",
		Short: "Attach free-text notes to a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sectionStore(cmd, app, projectID)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.SetComment(cmd.Context(), args[0], text); err != nil {
				return writeErr(cmd, err)
			}
			sec, _ := s.Section(args[0])
			return writeOut(cmd, app, map[string]any{"data": sec})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project the section belongs to")
	cmd.Flags().StringVar(&text, "text", "", "Comment text (overwrites any prior comment)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
