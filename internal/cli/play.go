package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tatianab/text-game/internal/console"
	"github.com/tatianab/text-game/internal/engine"
	"github.com/tatianab/text-game/internal/tui"
)

func newPlayCmd() *cobra.Command {
	var (
		plain bool
		slot  int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the game",
		Long: `Starts the game. By default the full screen interface is used; with
--console the game runs as plain line-by-line text, which also works when
input is piped in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain {
				if cmd.Flags().Changed("slot") {
					return errors.New("--slot needs --console")
				}
				return runTUI(cmd)
			}
			return runConsole(cmd, slot)
		},
	}
	cmd.Flags().BoolVar(&plain, "console", false, "play in plain text mode")
	cmd.Flags().IntVar(&slot, "slot", 0, "resume this save slot without showing the slot menu")
	return cmd
}

func runTUI(cmd *cobra.Command) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return tui.Run(a.engine, a.saves, a.warnings(), a.sessionOptions()...)
}

func runConsole(cmd *cobra.Command, slot int) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	c := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.TextDelay)
	opts := a.sessionOptions()
	c.RenderParagraphs(a.engine.IntroText(engine.HintsEnabled(opts...)))
	if w := a.warnings(); len(w) > 0 {
		c.RenderParagraphs(engine.WarningsText(w))
	}

	var s *engine.Session
	if slot > 0 {
		s, err = a.engine.ResumeSlot(ctx, a.saves, slot, opts...)
		if err != nil {
			return fmt.Errorf("resume slot %d: %w", slot, err)
		}
	} else {
		s, err = c.SelectSession(ctx, a.engine, a.saves, opts...)
		if err != nil {
			return err
		}
		if s == nil {
			return nil
		}
	}

	s.Play(ctx, c)
	return nil
}
