package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/tatianab/text-game/internal/models"
)

// ErrEmptySlot is returned when resuming a slot that holds no save.
var ErrEmptySlot = errors.New("save slot is empty")

// SnapshotStore keeps players in numbered slots. A nil snapshot is an empty
// slot.
type SnapshotStore interface {
	Load(ctx context.Context, slot int) (*models.Snapshot, error)
	Save(ctx context.Context, slot int, snap *models.Snapshot) error
	List(ctx context.Context) ([]*models.Snapshot, error)
	Clear(ctx context.Context) error
	MaxSlots() int
	Close() error
}

// HintRequest is what a hint giver knows about the current position.
type HintRequest struct {
	Title    string
	Header   string
	Passage  string
	Options  []string
	Flags    []string
	Items    []string
	TimeLeft int
}

// Hinter suggests what to do next.
type Hinter interface {
	Hint(ctx context.Context, req HintRequest) (string, error)
}

// Console is the line-oriented frontend a session plays through. Prompt
// methods block until the player answers; an error aborts the session.
type Console interface {
	RenderParagraphs(text string)
	PromptContinue(ctx context.Context) error
	PromptMenuChoice(ctx context.Context, n int) (string, error)
	PromptFreeCommand(ctx context.Context) (string, error)
}

// Session is one player playing in one save slot.
type Session struct {
	eng    *Engine
	player *models.Player
	store  SnapshotStore
	slot   int
	hinter Hinter
	logger *log.Logger
	result *Result
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithHinter enables the hint command.
func WithHinter(h Hinter) SessionOption {
	return func(s *Session) { s.hinter = h }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// HintsEnabled reports whether opts give sessions a hinter.
func HintsEnabled(opts ...SessionOption) bool {
	var s Session
	for _, opt := range opts {
		opt(&s)
	}
	return s.hinter != nil
}

// NewSession binds a player to a slot.
func NewSession(eng *Engine, store SnapshotStore, slot int, p *models.Player, opts ...SessionOption) *Session {
	s := &Session{
		eng:    eng,
		player: p,
		store:  store,
		slot:   slot,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSlot creates a new player named name in slot and saves it right
// away.
func (e *Engine) StartSlot(ctx context.Context, store SnapshotStore, slot int, name string, opts ...SessionOption) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("player name must not be empty")
	}
	p := models.NewPlayer(e.story.NewGame(name))
	s := NewSession(e, store, slot, p, opts...)
	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ResumeSlot continues the player saved in slot.
func (e *Engine) ResumeSlot(ctx context.Context, store SnapshotStore, slot int, opts ...SessionOption) (*Session, error) {
	snap, err := store.Load(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("load slot %d: %w", slot, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrEmptySlot)
	}
	p := models.PlayerFromSnapshot(snap, e.story.NewGame(snap.Name))
	return NewSession(e, store, slot, p, opts...), nil
}

func (s *Session) Engine() *Engine        { return s.eng }
func (s *Session) Player() *models.Player { return s.player }
func (s *Session) Slot() int              { return s.slot }
func (s *Session) HasHinter() bool        { return s.hinter != nil }

// Result returns how the session ended, or nil while it is running.
func (s *Session) Result() *Result { return s.result }

// Save writes the player to the session's slot.
func (s *Session) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.slot, s.player.Snapshot()); err != nil {
		s.logger.Printf("save slot %d: %v", s.slot, err)
		return fmt.Errorf("save slot %d: %w", s.slot, err)
	}
	return nil
}

// Step resolves the current position. When gated blocks were skipped the
// new position is saved; a failed save is returned alongside a valid step.
func (s *Session) Step(ctx context.Context) (Step, error) {
	if s.result != nil {
		return Step{Kind: StepEnded, Result: s.result}, nil
	}
	step := s.eng.Next(s.player)
	if step.Kind == StepEnded {
		s.finish(step.Result)
		return step, nil
	}
	if len(step.Skipped) > 0 {
		return step, s.Save(ctx)
	}
	return step, nil
}

// Acknowledge moves past a shown text block and saves.
func (s *Session) Acknowledge(ctx context.Context, b *models.TextBlock) (*Result, error) {
	if r := s.eng.Continue(s.player, b); r != nil {
		s.finish(r)
		return r, nil
	}
	return nil, s.Save(ctx)
}

// Choose applies a picked choice and saves unless the game ended.
func (s *Session) Choose(ctx context.Context, c *models.Choice) (Selection, error) {
	sel := s.eng.Select(s.player, c)
	if sel.Result != nil {
		s.finish(sel.Result)
		return sel, nil
	}
	return sel, s.Save(ctx)
}

// Exit saves and ends the session.
func (s *Session) Exit(ctx context.Context) (*Result, error) {
	err := s.Save(ctx)
	r := &Result{Outcome: OutcomeExited, Message: "👋 Goodbye!"}
	s.finish(r)
	return r, err
}

// Interrupt ends the session without saving.
func (s *Session) Interrupt() *Result {
	r := &Result{Outcome: OutcomeInterrupted, Message: "Interrupted"}
	s.finish(r)
	return r
}

func (s *Session) finish(r *Result) {
	if s.result == nil {
		s.result = r
		s.logger.Printf("session in slot %d ended: %s", s.slot, r.Outcome)
	}
}

// Hint asks the hinter about step.
func (s *Session) Hint(ctx context.Context, step Step) (string, error) {
	if s.hinter == nil {
		return "", errors.New("hints are not available")
	}
	return s.hinter.Hint(ctx, s.HintRequest(step))
}

// HintRequest describes step and the player for a hinter.
func (s *Session) HintRequest(step Step) HintRequest {
	req := HintRequest{
		Title:    s.eng.story.Title,
		Passage:  step.Text,
		TimeLeft: s.player.TimeLeft(),
	}
	if step.Block != nil {
		req.Header = s.eng.Header(s.player, step.Block.BlockID())
	}
	for _, c := range step.Choices {
		req.Options = append(req.Options, c.Name)
	}
	for f, v := range s.player.Flags() {
		if v {
			req.Flags = append(req.Flags, f)
		}
	}
	sort.Strings(req.Flags)
	for _, it := range s.player.Inventory().Items() {
		req.Items = append(req.Items, it.Name)
	}
	return req
}

// Play runs the session through c until it ends. Every problem is reported
// on the console; the returned result is never nil.
func (s *Session) Play(ctx context.Context, c Console) *Result {
	for {
		if ctx.Err() != nil {
			return s.Interrupt()
		}
		step, err := s.Step(ctx)
		for range step.Skipped {
			c.RenderParagraphs("⏩ Skipping block...")
		}
		if err != nil {
			c.RenderParagraphs("⚠️  " + err.Error())
		}

		switch step.Kind {
		case StepEnded:
			c.RenderParagraphs(s.eng.EndScreen(s.player, step.Result))
			return step.Result

		case StepText:
			c.RenderParagraphs(s.eng.TextScreen(s.player, step))
			if err := c.PromptContinue(ctx); err != nil {
				return s.Interrupt()
			}
			r, err := s.Acknowledge(ctx, step.Block.(*models.TextBlock))
			if err != nil {
				c.RenderParagraphs("⚠️  " + err.Error())
			}
			if r != nil {
				c.RenderParagraphs(s.eng.EndScreen(s.player, r))
				return r
			}

		case StepStalled:
			c.RenderParagraphs(s.eng.MenuScreen(s.player, step))
			raw, err := c.PromptFreeCommand(ctx)
			if err != nil {
				return s.Interrupt()
			}
			if r := s.command(ctx, c, ParseCommand(raw, s.eng.story.Commands), step); r != nil {
				return r
			}

		case StepMenu:
			c.RenderParagraphs(s.eng.MenuScreen(s.player, step))
			if r := s.pick(ctx, c, step); r != nil {
				return r
			}
		}
	}
}

// pick prompts until the player picks a choice or ends the session.
func (s *Session) pick(ctx context.Context, c Console, step Step) *Result {
	for {
		raw, err := c.PromptMenuChoice(ctx, len(step.Choices))
		if err != nil {
			return s.Interrupt()
		}
		in, err := ParseMenuInput(raw, len(step.Choices), s.eng.story.Commands)
		if err != nil {
			c.RenderParagraphs(s.eng.InputErrorText(err))
			continue
		}
		if in.Command != CommandNone {
			if r := s.command(ctx, c, in.Command, step); r != nil {
				return r
			}
			continue
		}

		sel, err := s.Choose(ctx, step.Choices[in.Index])
		c.RenderParagraphs(s.eng.SelectionText(sel))
		if err != nil {
			c.RenderParagraphs("⚠️  " + err.Error())
		}
		if sel.Result != nil {
			c.RenderParagraphs(s.eng.EndScreen(s.player, sel.Result))
			return sel.Result
		}
		if err := c.PromptContinue(ctx); err != nil {
			return s.Interrupt()
		}
		return nil
	}
}

// command runs an in-session command. It returns a result only when the
// command ends the session.
func (s *Session) command(ctx context.Context, c Console, cmd Command, step Step) *Result {
	switch cmd {
	case CommandInventory:
		c.RenderParagraphs(InventoryText(s.player.Inventory().Items()))
		if err := c.PromptContinue(ctx); err != nil {
			return s.Interrupt()
		}
	case CommandSave:
		if err := s.Save(ctx); err != nil {
			c.RenderParagraphs("⚠️  " + err.Error())
		} else {
			c.RenderParagraphs("💾 Game saved!")
		}
	case CommandExit:
		c.RenderParagraphs("💾 Saving game...")
		r, err := s.Exit(ctx)
		if err != nil {
			c.RenderParagraphs("⚠️  " + err.Error())
		} else {
			c.RenderParagraphs("💾 Game saved!")
		}
		c.RenderParagraphs(s.eng.EndScreen(s.player, r))
		return r
	case CommandHint:
		hint, err := s.Hint(ctx, step)
		if err != nil {
			c.RenderParagraphs("🤔 " + err.Error())
		} else {
			c.RenderParagraphs("🔮 " + hint)
		}
	}
	return nil
}
