package ending

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tatianab/text-game/internal/config"
)

func testStory() *config.Story {
	s := config.DefaultStory()
	s.ScoreValues = map[string]float64{
		"eat_1":               1.0,
		"eat_2":               0.5,
		"mega_album":          2.0,
		"norm_album":          1.0,
		config.LatePenaltyKey: -2.0,
	}
	s.Thresholds = &config.Thresholds{Bad: 2.0, Good: 3.0, Excellent: 4.0}
	return s
}

func TestResolve(t *testing.T) {
	s := testStory()
	onTime := s.StartTime
	late := s.StartTime - (s.DeadlineTime - s.StartTime) - 1

	tests := []struct {
		name      string
		flags     map[string]bool
		timeLeft  int
		want      Category
		wantScore float64
		wantLate  bool
	}{
		{"single meal is bad", map[string]bool{"eat_1": true}, onTime, Bad, 1.0, false},
		{"score in second band is good", map[string]bool{"eat_1": true, "norm_album": true, "eat_2": true}, onTime, Good, 2.5, false},
		{"score in third band is still good", map[string]bool{"eat_1": true, "mega_album": true}, onTime, Good, 3.0, false},
		{"threshold reached is excellent", map[string]bool{"eat_1": true, "mega_album": true, "norm_album": true}, onTime, Excellent, 4.0, false},
		{"late penalty applies", map[string]bool{"eat_1": true, "mega_album": true, "norm_album": true}, late, Good, 2.0, true},
		{"no meal forces fainting", map[string]bool{"mega_album": true, "norm_album": true}, onTime, Fainting, 0, false},
		{"no meal while late still faints", map[string]bool{}, late, Fainting, 0, true},
		{"penalty flag is not a flag", map[string]bool{"eat_1": true, config.LatePenaltyKey: true}, onTime, Bad, 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(s).Resolve(tt.flags, tt.timeLeft)
			assert.Equal(t, tt.want, got.Category)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Equal(t, tt.wantLate, got.Late)
		})
	}
}

func TestArrival(t *testing.T) {
	r := NewResolver(testStory())
	assert.Equal(t, 840, r.Arrival(840))
	assert.Equal(t, 900, r.Arrival(780))
	assert.Equal(t, 1680, r.Arrival(0))
}

func TestLateBoundary(t *testing.T) {
	s := testStory()
	r := NewResolver(s)
	// Arriving exactly at the deadline is on time.
	atDeadline := 2*s.StartTime - s.DeadlineTime
	assert.False(t, r.Resolve(map[string]bool{"eat_1": true}, atDeadline).Late)
	assert.True(t, r.Resolve(map[string]bool{"eat_1": true}, atDeadline-1).Late)
}

func TestDefaultLatePenalty(t *testing.T) {
	s := testStory()
	delete(s.ScoreValues, config.LatePenaltyKey)
	r := NewResolver(s)
	assert.InDelta(t, -1.0, r.Score(map[string]bool{"eat_1": true}, true), 1e-9)
}

func TestLines(t *testing.T) {
	s := testStory()
	s.Endings = map[string]config.Ending{
		"bad":      {Cutscene: []string{"{name} scored {score}."}, Late: []string{"And was late."}},
		"fainting": {Cutscene: []string{"Dark."}, Late: []string{"never shown"}},
	}
	r := NewResolver(s)
	sub := func(line string) string { return strings.ReplaceAll(line, "{name}", "Vika") }

	lines := r.Lines(Ending{Category: Bad, Score: 1}, sub)
	assert.Equal(t, []string{"Vika scored 1.0."}, lines)

	lines = r.Lines(Ending{Category: Bad, Score: -1, Late: true}, sub)
	assert.Equal(t, []string{"Vika scored -1.0.", "", "And was late."}, lines)

	lines = r.Lines(Ending{Category: Fainting, Late: true, Forced: true}, sub)
	assert.Equal(t, []string{"Dark."}, lines)
}

func TestInfoUnknownCategory(t *testing.T) {
	r := NewResolver(testStory())
	assert.Equal(t, "GAME OVER", r.Info("mystery").Title)
	assert.Equal(t, "Satisfactory", r.Info(Bad).Label)
}
