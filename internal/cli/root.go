// Package cli holds the text-game commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running the root command without a
// subcommand starts the full screen game.
func NewRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "text-game",
		Short: "A branching text adventure about one student's day",
		Long: `text-game plays a branching story loaded from JSON content files.
Choices set flags, cost time and hand out items; the flags you collect
decide which ending you get when the story is over.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newPlayCmd(),
		newSlotsCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
