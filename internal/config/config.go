package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Save backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	ContentDir   string        `env:"TEXT_GAME_CONTENT_DIR"  envDefault:"content"`
	StoryFile    string        `env:"TEXT_GAME_STORY_FILE"`
	SaveFile     string        `env:"TEXT_GAME_SAVE_FILE"    envDefault:".saves/player_data.json"`
	SaveBackend  string        `env:"TEXT_GAME_SAVE_BACKEND" envDefault:"json"`
	MaxSlots     int           `env:"TEXT_GAME_MAX_SLOTS"    envDefault:"5"`
	TextDelay    time.Duration `env:"TEXT_GAME_TEXT_DELAY"   envDefault:"0s"`
	LogFile      string        `env:"TEXT_GAME_LOG_FILE"     envDefault:".saves/game.log"`
	Verbose      bool          `env:"TEXT_GAME_VERBOSE"`
}

// LoadConfig loads the configuration from environment variables. A .env
// file in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StoryFile == "" {
		cfg.StoryFile = filepath.Join(cfg.ContentDir, "story.yaml")
	}
	if cfg.MaxSlots <= 0 {
		return nil, fmt.Errorf("TEXT_GAME_MAX_SLOTS must be positive, got %d", cfg.MaxSlots)
	}
	switch cfg.SaveBackend {
	case BackendJSON, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown save backend %q", cfg.SaveBackend)
	}
	return &cfg, nil
}

// ChoicesPath returns the choices content file.
func (c *Config) ChoicesPath() string {
	return filepath.Join(c.ContentDir, "choices.json")
}

// NarrativePath returns the text blocks content file.
func (c *Config) NarrativePath() string {
	return filepath.Join(c.ContentDir, "narrative.json")
}

// ChoiceBlocksPath returns the choice blocks content file.
func (c *Config) ChoiceBlocksPath() string {
	return filepath.Join(c.ContentDir, "choice_blocks.json")
}

// SavePath returns where save slots are kept. The SQLite backend swaps a
// .json save file name for .db so both backends can share the default.
func (c *Config) SavePath() string {
	if c.SaveBackend == BackendSQLite && filepath.Ext(c.SaveFile) == ".json" {
		return strings.TrimSuffix(c.SaveFile, ".json") + ".db"
	}
	return c.SaveFile
}
