// Package engine walks a player through the story graph.
//
// Each call to Next resolves the current block: gated text blocks are
// skipped, a shown text block waits for acknowledgement, a choice block
// offers the choices whose conditions hold. The caller then reports what
// the player did with Continue or Select, which apply side effects and move
// the player on. Session wraps these steps with persistence and a
// blocking play loop.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/tatianab/text-game/internal/config"
	"github.com/tatianab/text-game/internal/ending"
	"github.com/tatianab/text-game/internal/models"
)

// ErrUnknownBlock is reported when the player points at a block that is not
// in the story.
var ErrUnknownBlock = errors.New("unknown block")

// ErrSkipLoop is reported when gated text blocks skip into each other in a
// circle.
var ErrSkipLoop = errors.New("skipped blocks form a loop")

// Graph resolves block and choice ids.
type Graph interface {
	Block(id string) (models.Block, bool)
	Choice(id string) (*models.Choice, bool)
}

// Evaluator decides conditions against flags.
type Evaluator interface {
	Evaluate(expression string, flags map[string]bool) bool
}

// Outcome says why a session ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeTimeExpired
	OutcomeEndReached
	OutcomeNarrativeEnd
	OutcomeChoiceEnded
	OutcomeExited
	OutcomeBlockNotFound
	OutcomeSkipLoop
	OutcomeInterrupted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeTimeExpired:
		return "time expired"
	case OutcomeEndReached:
		return "end reached"
	case OutcomeNarrativeEnd:
		return "narrative end"
	case OutcomeChoiceEnded:
		return "choice ended"
	case OutcomeExited:
		return "exited"
	case OutcomeBlockNotFound:
		return "block not found"
	case OutcomeSkipLoop:
		return "skip loop"
	case OutcomeInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Technical reports whether the outcome comes from broken content rather
// than from play.
func (o Outcome) Technical() bool {
	return o == OutcomeBlockNotFound || o == OutcomeSkipLoop
}

// Result is how a session ended.
type Result struct {
	Outcome     Outcome
	Message     string
	Description string         // end_description of the choice that ended the game
	Ending      *ending.Ending // set for OutcomeEndReached
	Err         error          // set for technical outcomes
}

// StepKind tells the caller what a step expects from the player.
type StepKind int

const (
	StepText    StepKind = iota // show Text and wait for acknowledgement
	StepMenu                    // show Text and the Choices, wait for a pick
	StepStalled                 // a choice block with nothing to pick
	StepEnded                   // the session is over, see Result
)

// Step is one resolved position in the story.
type Step struct {
	Kind    StepKind
	Block   models.Block
	Text    string // body or menu header, variables filled in
	Choices []*models.Choice
	Skipped []string // gated text blocks passed on the way here
	Result  *Result
}

// Selection is what picking a choice did.
type Selection struct {
	Choice      *models.Choice
	Description string
	Flag        string
	Achievement string
	Items       []models.Item
	Spent       int  // minutes
	SpentTime   bool // false when the choice has no known cost
	Result      *Result
}

// Engine runs the story rules. It holds no player state and can serve any
// number of sessions one at a time.
type Engine struct {
	graph    Graph
	eval     Evaluator
	story    *config.Story
	resolver *ending.Resolver
	logger   *log.Logger
}

// New returns an engine over graph, tuned by story.
func New(graph Graph, eval Evaluator, story *config.Story, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		graph:    graph,
		eval:     eval,
		story:    story,
		resolver: ending.NewResolver(story),
		logger:   logger,
	}
}

func (e *Engine) Story() *config.Story       { return e.story }
func (e *Engine) Resolver() *ending.Resolver { return e.resolver }

// Next resolves the player's current block. Gated text blocks are passed
// without side effects and the player pointer follows them. Next never
// blocks and never fails: problems come back as an ended step.
func (e *Engine) Next(p *models.Player) Step {
	var skipped []string
	seen := make(map[string]bool)
	for {
		if p.TimeLeft() <= 0 {
			return ended(skipped, &Result{Outcome: OutcomeTimeExpired, Message: "⏰ Time is up! You did not make it to the test..."})
		}
		id := p.CurrentBlockID()
		if id == e.story.EndBlock {
			end := e.resolver.Resolve(p.Flags(), p.TimeLeft())
			return ended(skipped, &Result{Outcome: OutcomeEndReached, Ending: &end})
		}
		b, ok := e.graph.Block(id)
		if !ok {
			err := fmt.Errorf("%w: %q", ErrUnknownBlock, id)
			e.logger.Printf("%v", err)
			return ended(skipped, &Result{Outcome: OutcomeBlockNotFound, Message: "Technical error", Err: err})
		}

		switch b := b.(type) {
		case *models.TextBlock:
			if e.eval.Evaluate(b.Conditions, p.Flags()) {
				return Step{Kind: StepText, Block: b, Text: e.Substitute(p, b.Body), Skipped: skipped}
			}
			if seen[id] {
				err := fmt.Errorf("%w: %s", ErrSkipLoop, strings.Join(append(skipped, id), " -> "))
				e.logger.Printf("%v", err)
				return ended(skipped, &Result{Outcome: OutcomeSkipLoop, Message: "Technical error", Err: err})
			}
			seen[id] = true
			skipped = append(skipped, id)
			if r := e.advance(p, b.NextBlock, "The story has come to an end!"); r != nil {
				return ended(skipped, r)
			}
		case *models.ChoiceBlock:
			choices := e.Available(p, b)
			kind := StepMenu
			if len(choices) == 0 {
				kind = StepStalled
			}
			return Step{Kind: kind, Block: b, Text: e.Substitute(p, b.Name), Choices: choices, Skipped: skipped}
		default:
			err := fmt.Errorf("%w: %q has unsupported type %T", ErrUnknownBlock, id, b)
			return ended(skipped, &Result{Outcome: OutcomeBlockNotFound, Message: "Technical error", Err: err})
		}
	}
}

func ended(skipped []string, r *Result) Step {
	return Step{Kind: StepEnded, Skipped: skipped, Result: r}
}

// Available returns the choices of b the player may pick, in menu order.
// Ids with no choice behind them are dropped.
func (e *Engine) Available(p *models.Player, b *models.ChoiceBlock) []*models.Choice {
	flags := p.Flags()
	var out []*models.Choice
	for _, id := range b.AvailableChoices {
		c, ok := e.graph.Choice(id)
		if !ok {
			e.logger.Printf("choice block %q offers unknown choice %q", b.ID, id)
			continue
		}
		if e.eval.Evaluate(c.Condition, flags) {
			out = append(out, c)
		}
	}
	return out
}

// Continue moves past an acknowledged text block. It returns a result when
// the story ends there.
func (e *Engine) Continue(p *models.Player, b *models.TextBlock) *Result {
	return e.advance(p, b.NextBlock, "The story has come to an end!")
}

// Select applies a picked choice: history, flag, items and time, in that
// order. If the choice's end condition then holds, the game ends where it
// is; otherwise the player moves to the choice's next block.
func (e *Engine) Select(p *models.Player, c *models.Choice) Selection {
	sel := Selection{
		Choice:      c,
		Description: e.Substitute(p, c.Description),
	}

	p.RecordChoice(c.ID)

	if c.GivenFlag != "" {
		p.SetFlag(c.GivenFlag)
		sel.Flag = c.GivenFlag
		sel.Achievement = e.AchievementName(c.GivenFlag)
	}

	for _, name := range c.GivenItem.Names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		item := e.item(name)
		p.Inventory().Add(item)
		sel.Items = append(sel.Items, item)
	}

	if c.TimeCost.Kind == models.TimeCostMinutes {
		p.SpendTime(c.TimeCost.Minutes)
		sel.Spent = c.TimeCost.Minutes
		sel.SpentTime = true
	}

	if c.EndCondition != "" && e.eval.Evaluate(c.EndCondition, p.Flags()) {
		sel.Result = &Result{
			Outcome:     OutcomeChoiceEnded,
			Message:     "Game finished!",
			Description: c.EndDescription,
		}
		return sel
	}

	sel.Result = e.advance(p, c.NextBlock, "The journey is over!")
	return sel
}

func (e *Engine) advance(p *models.Player, next models.BlockRef, endMessage string) *Result {
	id, ok := next.Target()
	if !ok {
		return &Result{Outcome: OutcomeNarrativeEnd, Message: endMessage}
	}
	p.MoveTo(id)
	return nil
}

// item looks a name up in the item registry. Unknown names become a plain
// item carrying just the name.
func (e *Engine) item(name string) models.Item {
	if item, ok := e.story.Items[name]; ok {
		if item.Name == "" {
			item.Name = name
		}
		return item
	}
	return models.Item{Name: name, Description: "Received item: " + name}
}

// AchievementName returns the display name of a flag.
func (e *Engine) AchievementName(flag string) string {
	if name, ok := e.story.Achievements[flag]; ok {
		return name
	}
	return flag
}

// Clock returns the in-story time of day for p in minutes since midnight.
func (e *Engine) Clock(p *models.Player) int {
	return e.resolver.Arrival(p.TimeLeft())
}

// Substitute fills in {name} and {time}.
func (e *Engine) Substitute(p *models.Player, text string) string {
	text = strings.ReplaceAll(text, "{name}", p.Name())
	text = strings.ReplaceAll(text, "{time}", FormatClock(e.Clock(p)))
	return text
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}
