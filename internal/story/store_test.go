package story

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/text-game/internal/condition"
	"github.com/tatianab/text-game/internal/models"
)

const choicesJSON = `{
  "choices": {
    "choice_eat": {
      "name": "Eat breakfast",
      "description": "Porridge again.",
      "time_cost": 20,
      "condition": null,
      "given_flag": "eat_1",
      "next_block": "text_002"
    },
    "choice_run": {
      "name": "Run",
      "time_cost": "???",
      "given_flag": "",
      "next_block": ["text_003", "text_002"]
    }
  }
}`

const narrativeJSON = `{
  "text_000": {"body": "Morning, {name}.", "next_block": "choice_001", "previous_block": null, "conditions": null},
  "text_002": {"body": "Full.", "next_block": "block_end", "conditions": "eat_1 == True"},
  "shared": {"body": "I am text.", "next_block": null}
}`

const choiceBlocksJSON = `{
  "choice_blocks": {
    "choice_001": {"name": "What now?", "available_choices": ["choice_eat", "choice_run"], "previous_block": "text_000"},
    "shared": {"name": "I am a menu.", "available_choices": []}
  }
}`

func writeContent(t *testing.T, files map[string]string) Sources {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return Sources{
		Choices:      filepath.Join(dir, "choices.json"),
		TextBlocks:   filepath.Join(dir, "narrative.json"),
		ChoiceBlocks: filepath.Join(dir, "choice_blocks.json"),
	}
}

func TestLoad(t *testing.T) {
	src := writeContent(t, map[string]string{
		"choices.json":       choicesJSON,
		"narrative.json":     narrativeJSON,
		"choice_blocks.json": choiceBlocksJSON,
	})

	s, errs := Load(src, nil)
	require.Empty(t, errs)

	text, menus, choices := s.Counts()
	assert.Equal(t, 3, text)
	assert.Equal(t, 2, menus)
	assert.Equal(t, 2, choices)

	b, ok := s.Block("text_000")
	require.True(t, ok)
	tb, ok := b.(*models.TextBlock)
	require.True(t, ok)
	assert.Equal(t, "text_000", tb.ID)
	assert.Equal(t, "Morning, {name}.", tb.Body)

	b, ok = s.Block("choice_001")
	require.True(t, ok)
	cb, ok := b.(*models.ChoiceBlock)
	require.True(t, ok)
	assert.Equal(t, []string{"choice_eat", "choice_run"}, cb.AvailableChoices)

	c, ok := s.Choice("choice_run")
	require.True(t, ok)
	assert.Equal(t, "choice_run", c.ID)
	assert.Equal(t, models.TimeCostUnknown, c.TimeCost.Kind)

	_, ok = s.Block("missing")
	assert.False(t, ok)
	_, ok = s.Choice("missing")
	assert.False(t, ok)
}

func TestTextBlockWinsCollision(t *testing.T) {
	src := writeContent(t, map[string]string{
		"choices.json":       choicesJSON,
		"narrative.json":     narrativeJSON,
		"choice_blocks.json": choiceBlocksJSON,
	})
	s, _ := Load(src, nil)

	b, ok := s.Block("shared")
	require.True(t, ok)
	assert.IsType(t, &models.TextBlock{}, b)
	assert.Equal(t, []string{"shared"}, s.Collisions())
}

func TestLoadMissingFilesDegrades(t *testing.T) {
	src := writeContent(t, map[string]string{
		"narrative.json": narrativeJSON,
	})

	s, errs := Load(src, nil)
	require.Len(t, errs, 2)
	for _, err := range errs {
		var lerr *LoadError
		require.ErrorAs(t, err, &lerr)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}

	text, menus, choices := s.Counts()
	assert.Equal(t, 3, text)
	assert.Zero(t, menus)
	assert.Zero(t, choices)
}

func TestLoadMalformedFile(t *testing.T) {
	src := writeContent(t, map[string]string{
		"choices.json":       `{"choices": {`,
		"narrative.json":     `["not", "an", "object"]`,
		"choice_blocks.json": choiceBlocksJSON,
	})

	s, errs := Load(src, nil)
	assert.Len(t, errs, 2)
	text, menus, choices := s.Counts()
	assert.Zero(t, text)
	assert.Equal(t, 2, menus)
	assert.Zero(t, choices)
}

func TestLoadSkipsBadEntry(t *testing.T) {
	src := writeContent(t, map[string]string{
		"narrative.json": `{
  "good": {"body": "ok", "next_block": "x"},
  "bad": {"body": "broken", "next_block": {"nested": true}},
  "also_good": {"body": "fine"}
}`,
	})
	s := New(nil)
	errs := s.LoadTextBlocks(src.TextBlocks)
	require.Len(t, errs, 1)

	var lerr *LoadError
	require.ErrorAs(t, errs[0], &lerr)
	assert.Equal(t, "bad", lerr.Entry)

	_, ok := s.Block("good")
	assert.True(t, ok)
	_, ok = s.Block("also_good")
	assert.True(t, ok)
	_, ok = s.Block("bad")
	assert.False(t, ok)
}

func TestLoadMissingSectionIsEmpty(t *testing.T) {
	src := writeContent(t, map[string]string{
		"choices.json": `{"something_else": {}}`,
	})
	s := New(nil)
	assert.Empty(t, s.LoadChoices(src.Choices))
	_, _, choices := s.Counts()
	assert.Zero(t, choices)
}

func TestLoadYAMLContent(t *testing.T) {
	src := writeContent(t, map[string]string{
		"choice_blocks.json": `
choice_blocks:
  menu:
    name: Pick one
    available_choices: [a, b]
`,
	})
	s := New(nil)
	require.Empty(t, s.LoadChoiceBlocks(src.ChoiceBlocks))
	b, ok := s.Block("menu")
	require.True(t, ok)
	assert.Equal(t, "Pick one", b.(*models.ChoiceBlock).Name)
}

func TestValidate(t *testing.T) {
	s := New(nil)
	s.AddTextBlock(&models.TextBlock{ID: "t1", NextBlock: models.Ref("c1")})
	s.AddTextBlock(&models.TextBlock{ID: "t2", NextBlock: models.Ref("nowhere"), Conditions: "a =="})
	s.AddTextBlock(&models.TextBlock{ID: "t3", NextBlock: models.Ref("block_end")})
	s.AddChoiceBlock(&models.ChoiceBlock{ID: "c1", AvailableChoices: []string{"go", "ghost"}})
	s.AddChoiceBlock(&models.ChoiceBlock{ID: "t3"})
	s.AddChoice(&models.Choice{ID: "go", NextBlock: models.Ref("t3"), EndCondition: "(x"})

	problems := s.Validate(condition.NewEvaluator(nil), "block_end")
	var got []string
	for _, p := range problems {
		got = append(got, p.String())
	}
	assert.Len(t, got, 6)
	assert.Contains(t, got, `c1: available choice "ghost" does not exist`)
	assert.Contains(t, got, `t2: next_block "nowhere" does not exist`)
	assert.Contains(t, got, "t3: defined as both a text block and a choice block")
	assert.Contains(t, got, "t3: offers no choices")
}
