// Package ending scores a finished run and picks the ending the player gets.
package ending

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tatianab/text-game/internal/config"
)

// Category names an ending.
type Category string

const (
	Fainting  Category = "fainting"
	Bad       Category = "bad"
	Good      Category = "good"
	Excellent Category = "excellent"
)

// Ending is the outcome of a finished run.
type Ending struct {
	Category Category
	Score    float64
	Late     bool
	Arrival  int // minutes since midnight
	Forced   bool
}

// Resolver maps the final state of a player to an ending.
type Resolver struct {
	story *config.Story
}

func NewResolver(story *config.Story) *Resolver {
	return &Resolver{story: story}
}

// Arrival returns the in-story clock when the player arrives with timeLeft
// minutes on the budget.
func (r *Resolver) Arrival(timeLeft int) int {
	return r.story.StartTime + (r.story.StartTime - timeLeft)
}

// Resolve computes the ending. A player who never ate gets the forced
// ending whatever the score would have been.
func (r *Resolver) Resolve(flags map[string]bool, timeLeft int) Ending {
	arrival := r.Arrival(timeLeft)
	e := Ending{
		Arrival: arrival,
		Late:    arrival > r.story.DeadlineTime,
	}

	ate := false
	for _, f := range r.story.AteFlags {
		if flags[f] {
			ate = true
			break
		}
	}
	if !ate {
		e.Category = Category(r.story.ForcedEnding)
		e.Forced = true
		return e
	}

	e.Score = r.Score(flags, e.Late)
	e.Category = r.categorize(e.Score)
	return e
}

// Score sums the score table over the raised flags and applies the late
// penalty.
func (r *Resolver) Score(flags map[string]bool, late bool) float64 {
	// Summing in key order keeps float rounding stable between runs.
	keys := make([]string, 0, len(r.story.ScoreValues))
	for k := range r.story.ScoreValues {
		if k != config.LatePenaltyKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var total float64
	for _, k := range keys {
		if flags[k] {
			total += r.story.ScoreValues[k]
		}
	}
	if late {
		penalty, ok := r.story.ScoreValues[config.LatePenaltyKey]
		if !ok {
			penalty = -2.0
		}
		total += penalty
	}
	return total
}

func (r *Resolver) categorize(score float64) Category {
	t := r.story.Thresholds
	switch {
	case score < t.Bad:
		return Bad
	case score < t.Good:
		return Good
	case score < t.Excellent:
		// Both bands below excellent read as good.
		return Good
	default:
		return Excellent
	}
}

// Info returns the configured texts of an ending. Unknown categories get a
// generic title.
func (r *Resolver) Info(c Category) config.Ending {
	if info, ok := r.story.Endings[string(c)]; ok {
		return info
	}
	return config.Ending{Icon: "🎮", Title: "GAME OVER", Label: "Unknown"}
}

// Lines returns the cutscene of e. substitute fills in the player
// variables; {score} is filled in here. The late addendum follows unless
// the ending was forced.
func (r *Resolver) Lines(e Ending, substitute func(string) string) []string {
	info := r.Info(e.Category)
	score := fmt.Sprintf("%.1f", e.Score)

	var lines []string
	for _, line := range info.Cutscene {
		line = strings.ReplaceAll(line, "{score}", score)
		if substitute != nil {
			line = substitute(line)
		}
		lines = append(lines, line)
	}
	if e.Late && !e.Forced {
		lines = append(lines, "")
		lines = append(lines, info.Late...)
	}
	return lines
}
