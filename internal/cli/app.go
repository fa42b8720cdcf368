package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/tatianab/text-game/internal/condition"
	"github.com/tatianab/text-game/internal/config"
	"github.com/tatianab/text-game/internal/engine"
	"github.com/tatianab/text-game/internal/models"
	"github.com/tatianab/text-game/internal/narrator"
	"github.com/tatianab/text-game/internal/storage/sqlite"
	"github.com/tatianab/text-game/internal/story"
)

// app is everything a command needs to run the game.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	story    *config.Story
	content  *story.Store
	loadErrs []error
	cond     *condition.Evaluator
	engine   *engine.Engine
	saves    engine.SnapshotStore
	narrator *narrator.Narrator

	closers []io.Closer
}

// newApp loads configuration, content and the save store. Content problems
// do not stop the game; they are logged and kept for the check command.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a := &app{cfg: cfg}

	a.logger, err = a.openLog()
	if err != nil {
		return nil, err
	}

	a.story, err = config.LoadStory(cfg.StoryFile, a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.content, a.loadErrs = story.Load(story.Sources{
		Choices:      cfg.ChoicesPath(),
		TextBlocks:   cfg.NarrativePath(),
		ChoiceBlocks: cfg.ChoiceBlocksPath(),
	}, a.logger)
	a.cond = condition.NewEvaluator(a.logger)
	a.engine = engine.New(a.content, a.cond, a.story, a.logger)

	a.saves, err = a.openSaves()
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.GeminiAPIKey != "" {
		n, err := narrator.New(ctx, cfg.GeminiAPIKey)
		if err != nil {
			a.logger.Printf("hints disabled: %v", err)
		} else {
			a.narrator = n
		}
	}
	return a, nil
}

func (a *app) openLog() (*log.Logger, error) {
	if !a.cfg.Verbose {
		return log.New(io.Discard, "", 0), nil
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a.closers = append(a.closers, f)
	return log.New(f, "", log.LstdFlags), nil
}

func (a *app) openSaves() (engine.SnapshotStore, error) {
	path := a.cfg.SavePath()
	if a.cfg.SaveBackend != config.BackendSQLite {
		return models.OpenFileStore(path, a.cfg.MaxSlots, a.logger), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	s, err := sqlite.Open(path, a.cfg.MaxSlots)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("using sqlite save store at %s", path)
	return s, nil
}

// sessionOptions returns the options every session of this app is
// started with.
func (a *app) sessionOptions() []engine.SessionOption {
	opts := []engine.SessionOption{engine.WithLogger(a.logger)}
	if a.narrator != nil {
		opts = append(opts, engine.WithHinter(a.narrator))
	}
	return opts
}

// warnings lists every content and story problem found at startup. The game
// still runs with them, so they are shown to the player before play.
func (a *app) warnings() []string {
	var out []string
	for _, err := range a.loadErrs {
		out = append(out, err.Error())
	}
	for _, err := range a.story.Validate() {
		out = append(out, "story: "+err.Error())
	}
	if _, ok := a.content.Block(a.story.StartBlock); !ok {
		out = append(out, fmt.Sprintf("story: start_block %q does not exist", a.story.StartBlock))
	}
	return out
}

// Close releases the save store, the narrator and the log file.
func (a *app) Close() {
	if a.saves != nil {
		if err := a.saves.Close(); err != nil {
			a.logger.Printf("close save store: %v", err)
		}
	}
	if a.narrator != nil {
		a.narrator.Close()
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
