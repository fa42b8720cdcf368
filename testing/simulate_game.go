package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tatianab/text-game/internal/condition"
	"github.com/tatianab/text-game/internal/config"
	"github.com/tatianab/text-game/internal/engine"
	"github.com/tatianab/text-game/internal/models"
	"github.com/tatianab/text-game/internal/narrator"
	"github.com/tatianab/text-game/internal/story"
)

// maxSteps stops a run that keeps circling through menus.
const maxSteps = 500

// chooser picks one of the options offered at a menu.
type chooser interface {
	choose(ctx context.Context, s *engine.Session, step engine.Step) (int, error)
}

type randomChooser struct {
	rng *rand.Rand
}

func (r randomChooser) choose(ctx context.Context, s *engine.Session, step engine.Step) (int, error) {
	return r.rng.IntN(len(step.Choices)), nil
}

// llmChooser lets Gemini play. A bad answer falls back to the first option.
type llmChooser struct {
	n *narrator.Narrator
}

func (l llmChooser) choose(ctx context.Context, s *engine.Session, step engine.Step) (int, error) {
	i, err := l.n.ChooseOption(ctx, s.HintRequest(step))
	if err != nil {
		log.Printf("player model: %v, taking option 1", err)
		return 0, nil
	}
	return i, nil
}

func main() {
	var (
		runs    int
		seed    uint64
		useLLM  bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play the story automatically and report the endings reached",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd.Context(), runs, seed, useLLM, verbose)
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 20, "number of games to play")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for the choices")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "let Gemini pick the choices (needs GEMINI_API_KEY)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every passage and choice")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func simulate(ctx context.Context, runs int, seed uint64, useLLM, verbose bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := log.New(os.Stderr, "simulate: ", 0)
	st, err := config.LoadStory(cfg.StoryFile, logger)
	if err != nil {
		return err
	}
	content, errs := story.Load(story.Sources{
		Choices:      cfg.ChoicesPath(),
		TextBlocks:   cfg.NarrativePath(),
		ChoiceBlocks: cfg.ChoiceBlocksPath(),
	}, logger)
	if len(errs) > 0 {
		fmt.Printf("--- %d content problems, playing what loaded ---\n", len(errs))
	}
	eng := engine.New(content, condition.NewEvaluator(logger), st, logger)

	dir, err := os.MkdirTemp("", "text-game-sim")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	saves := models.OpenFileStore(filepath.Join(dir, "saves.json"), 1, logger)

	var pick chooser = randomChooser{rng: rand.New(rand.NewPCG(seed, seed))}
	if useLLM {
		n, err := narrator.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("create player model: %w", err)
		}
		defer n.Close()
		pick = llmChooser{n: n}
	}

	tally := make(map[string]int)
	for run := 1; run <= runs; run++ {
		fmt.Printf("--- Run %d ---\n", run)
		s, err := eng.StartSlot(ctx, saves, 1, fmt.Sprintf("Sim %d", run))
		if err != nil {
			return err
		}
		r, err := playOne(ctx, s, pick, verbose)
		if err != nil {
			return err
		}

		label := r.Outcome.String()
		if r.Ending != nil {
			label = eng.Resolver().Info(r.Ending.Category).Label
			fmt.Printf("Ending: %s (score %.1f, late %v)\n", label, r.Ending.Score, r.Ending.Late)
		} else {
			fmt.Printf("Stopped: %s %s\n", label, r.Message)
		}
		fmt.Printf("Choices: %v\n\n", s.Player().History())
		tally[label]++
	}

	fmt.Println("--- Summary ---")
	labels := make([]string, 0, len(tally))
	for l := range tally {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Printf("%-24s %d\n", l, tally[l])
	}
	return nil
}

func playOne(ctx context.Context, s *engine.Session, pick chooser, verbose bool) (*engine.Result, error) {
	eng := s.Engine()
	for range maxSteps {
		step, err := s.Step(ctx)
		if err != nil {
			log.Printf("%v", err)
		}
		switch step.Kind {
		case engine.StepEnded:
			return step.Result, nil

		case engine.StepText:
			if verbose {
				fmt.Println(eng.TextScreen(s.Player(), step))
			}
			if r, _ := s.Acknowledge(ctx, step.Block.(*models.TextBlock)); r != nil {
				return r, nil
			}

		case engine.StepStalled:
			r, _ := s.Exit(ctx)
			r.Message = fmt.Sprintf("no options available at %s", step.Block.BlockID())
			return r, nil

		case engine.StepMenu:
			i, err := pick.choose(ctx, s, step)
			if err != nil {
				return nil, err
			}
			c := step.Choices[i]
			if verbose {
				fmt.Printf("%s -> %s\n", step.Text, c.Name)
			}
			sel, _ := s.Choose(ctx, c)
			if sel.Result != nil {
				return sel.Result, nil
			}
		}
	}
	r, _ := s.Exit(ctx)
	r.Message = fmt.Sprintf("gave up after %d steps", maxSteps)
	return r, nil
}
