package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TEXT_GAME_CONTENT_DIR", "stories/day")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "stories/day", cfg.ContentDir)
	assert.Equal(t, filepath.Join("stories/day", "story.yaml"), cfg.StoryFile)
	assert.Equal(t, BackendJSON, cfg.SaveBackend)
	assert.Equal(t, 5, cfg.MaxSlots)
	assert.Equal(t, time.Duration(0), cfg.TextDelay)
	assert.Equal(t, filepath.Join("stories/day", "choices.json"), cfg.ChoicesPath())
	assert.Equal(t, filepath.Join("stories/day", "narrative.json"), cfg.NarrativePath())
	assert.Equal(t, filepath.Join("stories/day", "choice_blocks.json"), cfg.ChoiceBlocksPath())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TEXT_GAME_MAX_SLOTS=3\nTEXT_GAME_SAVE_BACKEND=sqlite\n"), 0644))
	t.Setenv("TEXT_GAME_MAX_SLOTS", "")
	os.Unsetenv("TEXT_GAME_MAX_SLOTS")
	t.Setenv("TEXT_GAME_SAVE_BACKEND", "")
	os.Unsetenv("TEXT_GAME_SAVE_BACKEND")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSlots)
	assert.Equal(t, BackendSQLite, cfg.SaveBackend)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("TEXT_GAME_SAVE_BACKEND", "redis")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("TEXT_GAME_SAVE_BACKEND", "json")
	t.Setenv("TEXT_GAME_MAX_SLOTS", "0")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadStoryMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadStory(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultStory(), s)
	assert.Empty(t, s.Validate())
}

func TestLoadStoryFillsMissingSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.yaml")
	src := `
start_block: intro
deadline_time: 1000
score_values:
  eat_1: 3
thresholds:
  bad: 1
  good: 2
  excellent: 3
commands:
  exit: quit
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	s, err := LoadStory(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "intro", s.StartBlock)
	assert.Equal(t, "block_end", s.EndBlock)
	assert.Equal(t, 840, s.StartTime)
	assert.Equal(t, map[string]float64{"eat_1": 3}, s.ScoreValues)
	assert.Equal(t, &Thresholds{Bad: 1, Good: 2, Excellent: 3}, s.Thresholds)
	assert.Equal(t, "quit", s.Commands.Exit)
	assert.Equal(t, "inv", s.Commands.Inventory)
	assert.NotEmpty(t, s.Endings)
}

func TestLoadStoryMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_time: [oops"), 0644))
	_, err := LoadStory(path, nil)
	assert.Error(t, err)
}

func TestStoryValidate(t *testing.T) {
	s := DefaultStory()
	s.Thresholds = &Thresholds{Bad: 4, Good: 3, Excellent: 5}
	s.DeadlineTime = 100
	s.AteFlags = []string{"snack"}
	s.Commands.Save = ""

	errs := s.Validate()
	assert.Len(t, errs, 4)
}

func TestStoryHidesTime(t *testing.T) {
	s := DefaultStory()
	s.HideTimeBlocks = []string{"text_dream"}
	assert.True(t, s.HidesTime("text_dream"))
	assert.False(t, s.HidesTime("text_000"))

	s.HideTimer = true
	assert.True(t, s.HidesTime("text_000"))
}

func TestStoryNewGame(t *testing.T) {
	s := DefaultStory()
	g := s.NewGame("Vika")
	assert.Equal(t, "Vika", g.Name)
	assert.Equal(t, 840, g.TimeLeft)
	assert.Equal(t, "text_000", g.StartBlock)
	assert.Equal(t, s.DefaultFlags, g.DefaultFlags)
}

func TestSavePath(t *testing.T) {
	cfg := &Config{SaveFile: ".saves/player_data.json", SaveBackend: BackendJSON}
	assert.Equal(t, ".saves/player_data.json", cfg.SavePath())

	cfg.SaveBackend = BackendSQLite
	assert.Equal(t, ".saves/player_data.db", cfg.SavePath())

	cfg.SaveFile = "slots.sqlite"
	assert.Equal(t, "slots.sqlite", cfg.SavePath())
}
