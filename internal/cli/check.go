package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the story content",
		Long: `Loads the content files and the story settings and reports anything
the game would trip over while playing: files that failed to load, links
to missing blocks or choices, conditions that do not parse and block ids
used twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			text, menus, choices := a.content.Counts()
			fmt.Fprintf(out, "📚 %s\n", a.story.Title)
			fmt.Fprintf(out, "Loaded %d text blocks, %d choice blocks, %d choices\n", text, menus, choices)

			problems := a.warnings()
			for _, p := range a.content.Validate(a.cond, a.story.EndBlock) {
				problems = append(problems, p.String())
			}

			if len(problems) == 0 {
				fmt.Fprintln(out, "✅ No problems found")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out, "⚠️  %s\n", p)
			}
			return fmt.Errorf("%d problems found", len(problems))
		},
	}
}
