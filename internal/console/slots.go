package console

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tatianab/text-game/internal/engine"
)

// SelectSession runs the save slot menu until the player loads a save,
// starts a new game or quits. It returns a nil session when the player
// quits.
func (c *Console) SelectSession(ctx context.Context, eng *engine.Engine, store engine.SnapshotStore, opts ...engine.SessionOption) (*engine.Session, error) {
	for {
		slots, err := engine.ListSlots(ctx, store)
		if err != nil {
			return nil, err
		}
		count := len(slots)
		c.renderSlots("🎮 CHOOSE A SAVE SLOT", slots)
		c.RenderParagraphs(fmt.Sprintf("%d. 🗑️  Delete a save\n%d. ❌ Quit\n%s", count+1, count+2, engine.Rule("=", 50)))

		raw, err := c.Prompt(ctx, fmt.Sprintf("\nChoose an action (1-%d): ", count+2))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			c.RenderParagraphs("⚠️  Please enter a number")
		case n == count+2:
			c.RenderParagraphs("\n👋 Goodbye!")
			return nil, nil
		case n == count+1:
			if err := c.deleteMenu(ctx, store); err != nil {
				return nil, err
			}
		case n >= 1 && n <= count:
			if slots[n-1].Empty() {
				return c.newGame(ctx, eng, store, n, opts...)
			}
			s, err := eng.ResumeSlot(ctx, store, n, opts...)
			if err != nil {
				return nil, err
			}
			c.renderLoaded(s)
			return s, nil
		default:
			c.RenderParagraphs("⚠️  Invalid choice")
		}
	}
}

func (c *Console) renderSlots(title string, slots []engine.Slot) {
	lines := []string{engine.Rule("=", 50), title, engine.Rule("=", 50)}
	for _, s := range slots {
		lines = append(lines, s.Summary())
	}
	c.RenderParagraphs(strings.Join(lines, "\n"))
}

func (c *Console) renderLoaded(s *engine.Session) {
	p := s.Player()
	var active []string
	for f, v := range p.Flags() {
		if v {
			active = append(active, f)
		}
	}
	lines := []string{
		"", engine.Rule("=", 50), "✅ PLAYER LOADED", engine.Rule("=", 50),
		"👤 Name: " + p.Name(),
		fmt.Sprintf("🕒 Time left: %02d:%02d", p.TimeLeft()/60, p.TimeLeft()%60),
		fmt.Sprintf("📊 Choices made: %d", len(p.History())),
		"📖 Current block: " + p.CurrentBlockID(),
	}
	if len(active) > 0 {
		lines = append(lines, "🚩 Active flags: "+strings.Join(slices.Sorted(slices.Values(active)), ", "))
	}
	lines = append(lines, engine.Rule("=", 50))
	c.RenderParagraphs(strings.Join(lines, "\n"))
}

func (c *Console) newGame(ctx context.Context, eng *engine.Engine, store engine.SnapshotStore, slot int, opts ...engine.SessionOption) (*engine.Session, error) {
	c.RenderParagraphs("\n" + engine.Rule("=", 50) + "\n🎮 NEW CHARACTER\n" + engine.Rule("=", 50))
	var name string
	for {
		raw, err := c.Prompt(ctx, "\nEnter your name: ")
		if err != nil {
			return nil, err
		}
		if name = strings.TrimSpace(raw); name != "" {
			break
		}
		c.RenderParagraphs("⚠️  The name cannot be empty")
	}
	s, err := eng.StartSlot(ctx, store, slot, name, opts...)
	if err != nil {
		return nil, err
	}
	st := eng.Story()
	c.RenderParagraphs(strings.Join([]string{
		"", engine.Rule("=", 50), "✅ CHARACTER CREATED!", engine.Rule("=", 50),
		"👤 Name: " + name,
		"🕒 Start time: " + engine.FormatClock(st.StartTime),
		fmt.Sprintf("🎒 Inventory: %d items", s.Player().Inventory().Len()),
		engine.Rule("=", 50),
	}, "\n"))
	return s, nil
}

func (c *Console) deleteMenu(ctx context.Context, store engine.SnapshotStore) error {
	for {
		slots, err := engine.ListSlots(ctx, store)
		if err != nil {
			return err
		}
		count := len(slots)
		c.renderSlots("🗑️  DELETE A SAVE", slots)
		c.RenderParagraphs(fmt.Sprintf("%d. ↩️  Back\n%s", count+1, engine.Rule("=", 50)))

		raw, err := c.Prompt(ctx, fmt.Sprintf("\nChoose a slot to delete (1-%d): ", count+1))
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		switch {
		case err != nil:
			c.RenderParagraphs("⚠️  Please enter a number")
		case n == count+1:
			return nil
		case n >= 1 && n <= count:
			if slots[n-1].Empty() {
				c.RenderParagraphs("⚠️  This slot is already empty!")
				continue
			}
			snap := slots[n-1].Snapshot
			c.RenderParagraphs(fmt.Sprintf("\n⚠️  YOU ARE DELETING:\n👤 Name: %s\n🕒 Time left: %d minutes\n📊 Choices made: %d",
				snap.Name, snap.TimeLeft, len(snap.ChoicesHistory)))
			answer, err := c.Prompt(ctx, "\n❓ Are you sure? (y/n): ")
			if err != nil {
				return err
			}
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				c.RenderParagraphs("\n❌ Deletion cancelled")
				continue
			}
			if err := engine.DeleteSlot(ctx, store, n); err != nil {
				return err
			}
			c.RenderParagraphs("\n✅ Save deleted!")
			return nil
		default:
			c.RenderParagraphs("⚠️  Invalid choice")
		}
	}
}
