package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/text-game/internal/models"
)

// Thresholds are the ascending score limits between endings.
type Thresholds struct {
	Bad       float64 `yaml:"bad"`
	Good      float64 `yaml:"good"`
	Excellent float64 `yaml:"excellent"`
}

// Commands are the words accepted at a prompt besides a menu number.
type Commands struct {
	Inventory string `yaml:"inventory"`
	Save      string `yaml:"save"`
	Exit      string `yaml:"exit"`
	Hint      string `yaml:"hint"`
}

// Ending is the text shown for one ending category.
type Ending struct {
	Icon     string   `yaml:"icon"`
	Title    string   `yaml:"title"`
	Grade    string   `yaml:"grade"`
	Label    string   `yaml:"label"`
	Cutscene []string `yaml:"cutscene"`
	Late     []string `yaml:"late"`
}

// Story tunes one story: where it starts and ends, the clock, scoring and
// the texts of the endings.
type Story struct {
	Title          string                 `yaml:"title"`
	Intro          string                 `yaml:"intro"`
	StartBlock     string                 `yaml:"start_block"`
	EndBlock       string                 `yaml:"end_block"`
	StartTime      int                    `yaml:"start_time"`
	DeadlineTime   int                    `yaml:"deadline_time"`
	HideTimer      bool                   `yaml:"hide_timer"`
	HideTimeBlocks []string               `yaml:"hide_time_blocks"`
	DefaultFlags   []string               `yaml:"default_flags"`
	AteFlags       []string               `yaml:"ate_flags"`
	ForcedEnding   string                 `yaml:"forced_ending"`
	ScoreValues    map[string]float64     `yaml:"score_values"`
	MaxScore       float64                `yaml:"max_score"`
	Thresholds     *Thresholds            `yaml:"thresholds"`
	Items          map[string]models.Item `yaml:"items"`
	InitialItems   []models.Item          `yaml:"initial_items"`
	Achievements   map[string]string      `yaml:"achievements"`
	Commands       Commands               `yaml:"commands"`
	Endings        map[string]Ending      `yaml:"endings"`
}

// LatePenaltyKey is the score table entry that is added when the player is
// late instead of being matched against a flag.
const LatePenaltyKey = "late_penalty"

// DefaultStory returns the built-in tuning.
func DefaultStory() *Story {
	return &Story{
		Title:        "One Student's Day",
		Intro:        "You wake up in your dorm. The engineering graphics test starts at 17:00.\nEat something, finish the album, and do not be late.",
		StartBlock:   "text_000",
		EndBlock:     "block_end",
		StartTime:    840,
		DeadlineTime: 1020,
		DefaultFlags: []string{
			"eat_1", "eat_2", "eat_3",
			"is_washing", "has_photo_work", "is_sleep_day", "has_mega_file",
			"tram_thunderstorm", "big_eared_passenger",
			"bad_album", "norm_album", "mega_album", "mega_brain",
		},
		AteFlags:     []string{"eat_1", "eat_2", "eat_3"},
		ForcedEnding: "fainting",
		ScoreValues: map[string]float64{
			"eat_1":        1.0,
			"eat_2":        0.5,
			"eat_3":        0.5,
			"norm_album":   1.0,
			"mega_album":   2.0,
			"mega_brain":   1.0,
			LatePenaltyKey: -2.0,
		},
		MaxScore:   5.0,
		Thresholds: &Thresholds{Bad: 2.0, Good: 3.0, Excellent: 4.0},
		Commands: Commands{
			Inventory: "inv",
			Save:      "save",
			Exit:      "exit",
			Hint:      "hint",
		},
		Endings: map[string]Ending{
			"fainting": {
				Icon: "💤", Title: "YOU FAINTED", Grade: "No grade", Label: "Fainted from hunger",
				Cutscene: []string{"{name} never ate a thing today.", "The room spins at {time} and everything goes dark."},
			},
			"bad": {
				Icon: "📉", Title: "SATISFACTORY", Grade: "Grade: 3", Label: "Satisfactory",
				Cutscene: []string{"The examiner sighs at your album. Score: {score}."},
				Late:     []string{"Arriving late did not help."},
			},
			"good": {
				Icon: "📘", Title: "GOOD", Grade: "Grade: 4", Label: "Good",
				Cutscene: []string{"A solid album. Score: {score}."},
				Late:     []string{"You were late, but the examiner let it slide."},
			},
			"excellent": {
				Icon: "🏆", Title: "EXCELLENT", Grade: "Grade: 5", Label: "Excellent",
				Cutscene: []string{"The examiner shows your album to the whole group. Score: {score}."},
				Late:     []string{"Even late, the work speaks for itself."},
			},
		},
	}
}

// LoadStory reads the story tuning from path. A missing file is not an
// error: the built-in tuning is used and a warning is logged.
func LoadStory(path string, logger *log.Logger) (*Story, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if logger != nil {
			logger.Printf("story file %s not found, using built-in settings", path)
		}
		return DefaultStory(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read story file: %w", err)
	}

	var s Story
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse story file %s: %w", path, err)
	}
	s.fillDefaults(DefaultStory())
	return &s, nil
}

// fillDefaults copies every setting the file left out from d.
func (s *Story) fillDefaults(d *Story) {
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Intro == "" {
		s.Intro = d.Intro
	}
	if s.StartBlock == "" {
		s.StartBlock = d.StartBlock
	}
	if s.EndBlock == "" {
		s.EndBlock = d.EndBlock
	}
	if s.StartTime == 0 {
		s.StartTime = d.StartTime
	}
	if s.DeadlineTime == 0 {
		s.DeadlineTime = d.DeadlineTime
	}
	if s.DefaultFlags == nil {
		s.DefaultFlags = d.DefaultFlags
	}
	if s.AteFlags == nil {
		s.AteFlags = d.AteFlags
	}
	if s.ForcedEnding == "" {
		s.ForcedEnding = d.ForcedEnding
	}
	if s.ScoreValues == nil {
		s.ScoreValues = d.ScoreValues
	}
	if s.MaxScore == 0 {
		s.MaxScore = d.MaxScore
	}
	if s.Thresholds == nil {
		s.Thresholds = d.Thresholds
	}
	if s.Commands.Inventory == "" {
		s.Commands.Inventory = d.Commands.Inventory
	}
	if s.Commands.Save == "" {
		s.Commands.Save = d.Commands.Save
	}
	if s.Commands.Exit == "" {
		s.Commands.Exit = d.Commands.Exit
	}
	if s.Commands.Hint == "" {
		s.Commands.Hint = d.Commands.Hint
	}
	if s.Endings == nil {
		s.Endings = d.Endings
	}
}

// Validate reports problems with the tuning. The game can still run with
// them, so callers usually log the result.
func (s *Story) Validate() []error {
	var errs []error
	if s.StartBlock == "" {
		errs = append(errs, errors.New("start_block is empty"))
	}
	if s.EndBlock == "" {
		errs = append(errs, errors.New("end_block is empty"))
	}
	if s.StartTime <= 0 {
		errs = append(errs, fmt.Errorf("start_time must be positive, got %d", s.StartTime))
	}
	if s.DeadlineTime < s.StartTime {
		errs = append(errs, fmt.Errorf("deadline_time %d is before start_time %d", s.DeadlineTime, s.StartTime))
	}
	if t := s.Thresholds; t == nil {
		errs = append(errs, errors.New("thresholds are missing"))
	} else if t.Bad > t.Good || t.Good > t.Excellent {
		errs = append(errs, fmt.Errorf("thresholds must ascend: bad %.1f, good %.1f, excellent %.1f", t.Bad, t.Good, t.Excellent))
	}
	if len(s.AteFlags) == 0 {
		errs = append(errs, errors.New("ate_flags is empty, every ending will be forced"))
	}
	for _, f := range s.AteFlags {
		if !slices.Contains(s.DefaultFlags, f) {
			errs = append(errs, fmt.Errorf("ate flag %q is not a default flag", f))
		}
	}
	cmds := []string{s.Commands.Inventory, s.Commands.Save, s.Commands.Exit}
	for _, c := range cmds {
		if c == "" {
			errs = append(errs, errors.New("commands must not be empty"))
			break
		}
	}
	return errs
}

// NewGame describes a fresh player named name.
func (s *Story) NewGame(name string) models.NewGame {
	return models.NewGame{
		Name:         name,
		TimeLeft:     s.StartTime,
		StartBlock:   s.StartBlock,
		DefaultFlags: s.DefaultFlags,
		Items:        s.InitialItems,
	}
}

// HidesTime reports whether the clock is hidden on a block.
func (s *Story) HidesTime(blockID string) bool {
	return s.HideTimer || slices.Contains(s.HideTimeBlocks, blockID)
}
