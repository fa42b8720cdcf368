package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/text-game/internal/condition"
	"github.com/tatianab/text-game/internal/config"
	"github.com/tatianab/text-game/internal/ending"
	"github.com/tatianab/text-game/internal/models"
	"github.com/tatianab/text-game/internal/story"
)

func testStory() *config.Story {
	s := config.DefaultStory()
	s.StartBlock = "text_000"
	s.Items = map[string]models.Item{
		"sandwich": {Name: "Sandwich", Description: "Cheese and ham.", Power: 2},
	}
	s.Achievements = map[string]string{"eat_1": "Breakfast", "mega_brain": "Big brain"}
	return s
}

func testGraph() *story.Store {
	g := story.New(nil)
	g.AddTextBlock(&models.TextBlock{ID: "text_000", Body: "Morning, {name}. It is {time}.", NextBlock: models.Ref("menu_1")})
	g.AddTextBlock(&models.TextBlock{ID: "text_hungry", Body: "Still hungry.", NextBlock: models.Ref("text_full"), Conditions: "eat_1 == False"})
	g.AddTextBlock(&models.TextBlock{ID: "text_full", Body: "Full at {time}.", NextBlock: models.Ref("block_end")})
	g.AddTextBlock(&models.TextBlock{ID: "text_last", Body: "The end of the road."})
	g.AddChoiceBlock(&models.ChoiceBlock{ID: "menu_1", Name: "What now, {name}?", AvailableChoices: []string{"eat", "run", "secret", "ghost", "quit"}})
	g.AddChoiceBlock(&models.ChoiceBlock{ID: "menu_locked", Name: "Locked", AvailableChoices: []string{"secret"}})
	g.AddChoice(&models.Choice{ID: "eat", Name: "Eat", Description: "Yum, {name}.", TimeCost: models.Minutes(20), GivenFlag: "eat_1", GivenItem: models.ItemGrant{Names: []string{"sandwich"}}, NextBlock: models.Ref("text_hungry")})
	g.AddChoice(&models.Choice{ID: "run", Name: "Run", TimeCost: models.TimeCost{Kind: models.TimeCostUnknown}, GivenItem: models.ItemGrant{Names: []string{"umbrella", " ", "map"}}, NextBlock: models.Ref("text_last", "text_000")})
	g.AddChoice(&models.Choice{ID: "secret", Name: "Secret", Condition: "mega_brain == True", NextBlock: models.Ref("text_000")})
	g.AddChoice(&models.Choice{ID: "quit", Name: "Give up", EndCondition: "eat_1 == True", EndDescription: "You give up, {name}.", NextBlock: models.Ref("text_000")})
	return g
}

func newTestEngine() *Engine {
	return New(testGraph(), condition.NewEvaluator(nil), testStory(), nil)
}

func newTestPlayer(e *Engine) *models.Player {
	return models.NewPlayer(e.Story().NewGame("Vika"))
}

func TestNextShowsText(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)

	step := e.Next(p)
	require.Equal(t, StepText, step.Kind)
	assert.Equal(t, "text_000", step.Block.BlockID())
	assert.Equal(t, "Morning, Vika. It is 14:00.", step.Text)
	assert.Empty(t, step.Skipped)
}

func TestGatedTextIsSkipped(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.SetFlag("eat_1")
	p.MoveTo("text_hungry")
	before := p.TimeLeft()

	step := e.Next(p)
	require.Equal(t, StepText, step.Kind)
	assert.Equal(t, "text_full", step.Block.BlockID())
	assert.Equal(t, []string{"text_hungry"}, step.Skipped)
	assert.Equal(t, "text_full", p.CurrentBlockID())
	assert.Empty(t, p.History())
	assert.Equal(t, before, p.TimeLeft())
}

func TestSkipIntoNullEndsNarrative(t *testing.T) {
	g := testGraph()
	g.AddTextBlock(&models.TextBlock{ID: "gated_last", Conditions: "nope"})
	e := New(g, condition.NewEvaluator(nil), testStory(), nil)
	p := newTestPlayer(e)
	p.MoveTo("gated_last")

	step := e.Next(p)
	require.Equal(t, StepEnded, step.Kind)
	assert.Equal(t, OutcomeNarrativeEnd, step.Result.Outcome)
}

func TestSkipLoopEnds(t *testing.T) {
	g := testGraph()
	g.AddTextBlock(&models.TextBlock{ID: "a", NextBlock: models.Ref("b"), Conditions: "False"})
	g.AddTextBlock(&models.TextBlock{ID: "b", NextBlock: models.Ref("a"), Conditions: "False"})
	e := New(g, condition.NewEvaluator(nil), testStory(), nil)
	p := newTestPlayer(e)
	p.MoveTo("a")

	step := e.Next(p)
	require.Equal(t, StepEnded, step.Kind)
	assert.Equal(t, OutcomeSkipLoop, step.Result.Outcome)
	assert.ErrorIs(t, step.Result.Err, ErrSkipLoop)
	assert.True(t, step.Result.Outcome.Technical())
}

func TestMenuFiltersChoices(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("menu_1")

	step := e.Next(p)
	require.Equal(t, StepMenu, step.Kind)
	assert.Equal(t, "What now, Vika?", step.Text)
	var ids []string
	for _, c := range step.Choices {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"eat", "run", "quit"}, ids)

	p.SetFlag("mega_brain")
	step = e.Next(p)
	require.Len(t, step.Choices, 4)
	assert.Equal(t, "secret", step.Choices[2].ID)
}

func TestEmptyMenuStalls(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("menu_locked")

	for range 3 {
		step := e.Next(p)
		assert.Equal(t, StepStalled, step.Kind)
		assert.Empty(t, step.Choices)
		assert.Equal(t, "menu_locked", p.CurrentBlockID())
	}
}

func TestSelectAppliesEffects(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("menu_1")
	c, _ := testGraph().Choice("eat")

	sel := e.Select(p, c)
	assert.Nil(t, sel.Result)
	assert.Equal(t, "Yum, Vika.", sel.Description)
	assert.Equal(t, []string{"eat"}, p.History())
	assert.True(t, p.Flag("eat_1"))
	assert.Equal(t, "Breakfast", sel.Achievement)
	assert.Equal(t, []models.Item{{Name: "Sandwich", Description: "Cheese and ham.", Power: 2}}, p.Inventory().Items())
	assert.Equal(t, 820, p.TimeLeft())
	assert.True(t, sel.SpentTime)
	assert.Equal(t, "text_hungry", p.CurrentBlockID())
}

func TestSelectUnknownCostAndPlaceholderItems(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	c, _ := testGraph().Choice("run")

	sel := e.Select(p, c)
	assert.Nil(t, sel.Result)
	assert.False(t, sel.SpentTime)
	assert.Equal(t, 840, p.TimeLeft())
	assert.Equal(t, []models.Item{
		{Name: "umbrella", Description: "Received item: umbrella"},
		{Name: "map", Description: "Received item: map"},
	}, p.Inventory().Items())
	assert.Empty(t, sel.Flag)
}

func TestSelectListUsesFirstBlock(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	c, _ := testGraph().Choice("run")

	e.Select(p, c)
	assert.Equal(t, "text_last", p.CurrentBlockID())
}

func TestEndConditionStopsWithoutAdvancing(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("menu_1")
	p.SetFlag("eat_1")
	c, _ := testGraph().Choice("quit")

	sel := e.Select(p, c)
	require.NotNil(t, sel.Result)
	assert.Equal(t, OutcomeChoiceEnded, sel.Result.Outcome)
	assert.Equal(t, "You give up, {name}.", sel.Result.Description)
	assert.Equal(t, "menu_1", p.CurrentBlockID())
	assert.Equal(t, []string{"quit"}, p.History())
}

func TestEndConditionFalseAdvances(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("menu_1")
	c, _ := testGraph().Choice("quit")

	sel := e.Select(p, c)
	assert.Nil(t, sel.Result)
	assert.Equal(t, "text_000", p.CurrentBlockID())
}

func TestTimeIsClampedAndExpires(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("menu_1")
	c := &models.Choice{ID: "nap", TimeCost: models.Minutes(5000), NextBlock: models.Ref("text_000")}

	e.Select(p, c)
	assert.Equal(t, 0, p.TimeLeft())

	step := e.Next(p)
	require.Equal(t, StepEnded, step.Kind)
	assert.Equal(t, OutcomeTimeExpired, step.Result.Outcome)
	assert.Equal(t, "text_000", p.CurrentBlockID())
}

func TestTimeCheckedBeforeEnd(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.SpendTime(p.TimeLeft())
	p.MoveTo("block_end")

	assert.Equal(t, OutcomeTimeExpired, e.Next(p).Result.Outcome)
}

func TestEndSentinelResolvesEnding(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.SetFlag("eat_1")
	p.MoveTo("block_end")

	step := e.Next(p)
	require.Equal(t, StepEnded, step.Kind)
	require.Equal(t, OutcomeEndReached, step.Result.Outcome)
	require.NotNil(t, step.Result.Ending)
	assert.Equal(t, ending.Bad, step.Result.Ending.Category)

	p2 := newTestPlayer(e)
	p2.MoveTo("block_end")
	assert.Equal(t, ending.Fainting, e.Next(p2).Result.Ending.Category)
}

func TestUnknownBlockIsTechnicalError(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.MoveTo("nowhere")

	step := e.Next(p)
	require.Equal(t, StepEnded, step.Kind)
	assert.Equal(t, OutcomeBlockNotFound, step.Result.Outcome)
	assert.ErrorIs(t, step.Result.Err, ErrUnknownBlock)
	assert.Equal(t, "nowhere", p.CurrentBlockID())
}

func TestContinue(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	g := testGraph()

	b, _ := g.Block("text_000")
	assert.Nil(t, e.Continue(p, b.(*models.TextBlock)))
	assert.Equal(t, "menu_1", p.CurrentBlockID())

	b, _ = g.Block("text_last")
	r := e.Continue(p, b.(*models.TextBlock))
	require.NotNil(t, r)
	assert.Equal(t, OutcomeNarrativeEnd, r.Outcome)
	assert.Equal(t, "menu_1", p.CurrentBlockID())
}

func TestTimeNeverNegative(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	for _, cost := range []int{100, 300, 0, 999, 1, 50} {
		e.Select(p, &models.Choice{ID: "c", TimeCost: models.Minutes(cost), NextBlock: models.Ref("text_000")})
		assert.GreaterOrEqual(t, p.TimeLeft(), 0)
	}
	assert.Equal(t, 0, p.TimeLeft())
	assert.Len(t, p.History(), 6)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "14:00", FormatClock(840))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "02:30", FormatClock(26*60+30))
}

func TestSubstituteTracksSpentTime(t *testing.T) {
	e := newTestEngine()
	p := newTestPlayer(e)
	p.SpendTime(90)
	assert.Equal(t, "Vika at 15:30", e.Substitute(p, "{name} at {time}"))
}
