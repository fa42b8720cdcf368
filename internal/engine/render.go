package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tatianab/text-game/internal/ending"
	"github.com/tatianab/text-game/internal/models"
)

const (
	sepSymbol = "="
	wide      = 60
	narrow    = 40
)

// Rule returns a horizontal line.
func Rule(symbol string, width int) string {
	return strings.Repeat(symbol, width)
}

// Header is the status line shown above every block.
func (e *Engine) Header(p *models.Player, blockID string) string {
	var line string
	if e.story.HidesTime(blockID) {
		line = fmt.Sprintf("👤 %s | 🕒 ??? | ⏳ Until test: ???", p.Name())
	} else {
		clock := e.Clock(p)
		left := e.story.DeadlineTime - clock
		until := "You are late!!!"
		if left > 0 {
			until = fmt.Sprintf("%dh %dm", left/60, left%60)
		}
		line = fmt.Sprintf("👤 %s | 🕒 %s | ⏳ Until test: %s", p.Name(), FormatClock(clock), until)
	}
	return line + "\n" + Rule("-", wide)
}

// TextScreen renders a shown text block.
func (e *Engine) TextScreen(p *models.Player, step Step) string {
	var b strings.Builder
	b.WriteString(e.Header(p, step.Block.BlockID()))
	b.WriteString("\n")
	b.WriteString(Rule(sepSymbol, wide))
	b.WriteString("\n")
	b.WriteString(step.Text)
	b.WriteString("\n")
	b.WriteString(Rule(sepSymbol, wide))
	return b.String()
}

// MenuScreen renders a choice block with its numbered choices, or the
// stall notice when there are none.
func (e *Engine) MenuScreen(p *models.Player, step Step) string {
	var b strings.Builder
	b.WriteString(e.Header(p, step.Block.BlockID()))
	b.WriteString("\n")
	b.WriteString(Rule(sepSymbol, wide))
	b.WriteString("\n")
	b.WriteString(step.Text)
	b.WriteString("\n")
	b.WriteString(Rule(sepSymbol, wide))
	b.WriteString("\n\n")
	if len(step.Choices) == 0 {
		b.WriteString("😔 No options available...")
		return b.String()
	}
	b.WriteString(Menu(step.Choices))
	return b.String()
}

// Menu lists choices numbered from 1 with their time cost.
func Menu(choices []*models.Choice) string {
	var b strings.Builder
	b.WriteString("📋 Available options:\n")
	b.WriteString(Rule("-", narrow))
	b.WriteString("\n")
	for i, c := range choices {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, c.Name, c.TimeCost.Label())
	}
	b.WriteString(Rule("-", narrow))
	return b.String()
}

// SelectionText reports what a picked choice did.
func (e *Engine) SelectionText(sel Selection) string {
	var lines []string
	lines = append(lines, strings.Repeat("✏️", wide/2), "")
	if sel.Description != "" {
		lines = append(lines, sel.Description, "")
	}
	lines = append(lines, strings.Repeat("✏️", wide/2))
	if sel.Flag != "" {
		lines = append(lines, "🎯 Achievement unlocked: "+sel.Achievement)
	}
	switch len(sel.Items) {
	case 0:
	case 1:
		lines = append(lines, "🎁 Received item: "+sel.Items[0].Name)
	default:
		names := make([]string, len(sel.Items))
		for i, it := range sel.Items {
			names[i] = it.Name
		}
		lines = append(lines, "🎁 Received items: "+strings.Join(names, ", "))
	}
	if sel.SpentTime {
		lines = append(lines, fmt.Sprintf("⏰ Time spent: %d minutes", sel.Spent))
	}
	return strings.Join(lines, "\n")
}

// InventoryText lists the carried items.
func InventoryText(items []models.Item) string {
	var b strings.Builder
	b.WriteString(Rule(sepSymbol, wide))
	b.WriteString("\n🎒 INVENTORY\n")
	b.WriteString(Rule(sepSymbol, wide))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("Inventory is empty\n")
	} else {
		fmt.Fprintf(&b, "Items: %d\n", len(items))
		b.WriteString(Rule("-", narrow))
		b.WriteString("\n")
		for i, it := range items {
			power := ""
			if it.Power > 0 {
				power = fmt.Sprintf(" [⚡ %d]", it.Power)
			}
			fmt.Fprintf(&b, "%d. %s%s\n   %s\n", i+1, it.Name, power, it.Description)
		}
	}
	b.WriteString(Rule(sepSymbol, wide))
	return b.String()
}

// Achievements returns the display names of the raised flags that have
// one, ordered by flag name.
func (e *Engine) Achievements(p *models.Player) []string {
	flags := make([]string, 0, len(e.story.Achievements))
	for f := range e.story.Achievements {
		if p.Flag(f) {
			flags = append(flags, f)
		}
	}
	sort.Strings(flags)
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = e.story.Achievements[f]
	}
	return names
}

// StatsText is the summary shown when the game is over without an ending.
func (e *Engine) StatsText(p *models.Player) string {
	lines := []string{
		"📊 Your stats:",
		"👤 Name: " + p.Name(),
		fmt.Sprintf("🕒 Time left: %d minutes", p.TimeLeft()),
		fmt.Sprintf("🎯 Choices made: %d", len(p.History())),
	}
	if a := e.Achievements(p); len(a) > 0 {
		lines = append(lines, "🏆 Achievements: "+strings.Join(a, ", "))
	}
	return strings.Join(lines, "\n")
}

// FinalStatsText is the summary shown under an ending.
func (e *Engine) FinalStatsText(p *models.Player, end ending.Ending) string {
	info := e.resolver.Info(end.Category)
	lines := []string{
		"📊 FINAL STATS:",
		Rule("-", narrow),
		"👤 Player: " + p.Name(),
		fmt.Sprintf("🎯 Final score: %.1f/%.1f", end.Score, e.story.MaxScore),
		"🏁 Result: " + info.Label,
		fmt.Sprintf("📈 Choices made: %d", len(p.History())),
	}
	if a := e.Achievements(p); len(a) > 0 {
		const shown = 5
		if len(a) > shown {
			lines = append(lines, "🏆 Achievements: "+strings.Join(a[:shown], ", "))
			lines = append(lines, fmt.Sprintf("   ...and %d more", len(a)-shown))
		} else {
			lines = append(lines, "🏆 Achievements: "+strings.Join(a, ", "))
		}
	}
	lines = append(lines, Rule("-", narrow))
	return strings.Join(lines, "\n")
}

// EndingScreen renders a resolved ending with its cutscene and stats.
func (e *Engine) EndingScreen(p *models.Player, end ending.Ending) string {
	info := e.resolver.Info(end.Category)
	icon := info.Icon
	if icon == "" {
		icon = "🎮"
	}
	banner := strings.Repeat(icon, wide/2)

	lines := []string{banner, "", "🎓 FINAL GRADE", banner, ""}
	lines = append(lines, e.resolver.Lines(end, func(s string) string { return e.Substitute(p, s) })...)
	lines = append(lines, "", banner, "", info.Title)
	if info.Grade != "" {
		lines = append(lines, info.Grade)
	}
	lines = append(lines, banner, "", e.FinalStatsText(p, end))
	return strings.Join(lines, "\n")
}

// GameOverScreen renders every other end of a session.
func (e *Engine) GameOverScreen(p *models.Player, r *Result) string {
	var lines []string
	if r.Outcome == OutcomeChoiceEnded && r.Description != "" {
		lines = append(lines,
			Rule("!", wide), "💀 GAME OVER 💀", Rule("!", wide), "",
			e.Substitute(p, r.Description), "")
	}
	lines = append(lines,
		Rule(sepSymbol, wide), "🎮 GAME OVER", Rule(sepSymbol, wide), "",
		r.Message, "")
	if r.Outcome.Technical() && r.Err != nil {
		lines = append(lines, "⚠️  "+r.Err.Error(), "")
	}
	lines = append(lines,
		e.StatsText(p), "",
		Rule(sepSymbol, wide))
	return strings.Join(lines, "\n")
}

// EndScreen renders the final screen for r.
func (e *Engine) EndScreen(p *models.Player, r *Result) string {
	switch {
	case r.Outcome == OutcomeEndReached && r.Ending != nil:
		return e.EndingScreen(p, *r.Ending)
	case r.Outcome == OutcomeExited, r.Outcome == OutcomeInterrupted:
		return r.Message
	}
	return e.GameOverScreen(p, r)
}

// IntroText is shown before the first block. The hint command is listed
// only when hints are available.
func (e *Engine) IntroText(hints bool) string {
	c := e.story.Commands
	lines := []string{
		Rule(sepSymbol, wide),
		"📖 " + strings.ToUpper(e.story.Title),
		Rule(sepSymbol, wide),
		e.story.Intro,
		Rule(sepSymbol, wide),
		"",
		"💡 Commands you can type during the game:",
		fmt.Sprintf("   '%s' - show inventory", c.Inventory),
		fmt.Sprintf("   '%s' - save the game", c.Save),
		fmt.Sprintf("   '%s' - save and quit", c.Exit),
	}
	if hints && c.Hint != "" {
		lines = append(lines, fmt.Sprintf("   '%s' - ask the narrator for a hint", c.Hint))
	}
	lines = append(lines, Rule(sepSymbol, wide))
	return strings.Join(lines, "\n")
}

// WarningsText lists startup problems, one per line.
func WarningsText(warnings []string) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "⚠️  " + w
	}
	return strings.Join(lines, "\n")
}

// InputErrorText explains a rejected menu answer.
func (e *Engine) InputErrorText(err error) string {
	c := e.story.Commands
	if errors.Is(err, ErrOutOfRange) {
		return "⚠️  Invalid number"
	}
	return fmt.Sprintf("⚠️  Enter a number or a command\nCommands: %s, %s, %s", c.Inventory, c.Save, c.Exit)
}
