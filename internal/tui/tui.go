package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/text-game/internal/engine"
	"github.com/tatianab/text-game/internal/models"
)

type sessionState int

const (
	stateSlots sessionState = iota
	stateName
	statePlaying
	stateEnded
	stateError
)

type model struct {
	state     sessionState
	engine    *engine.Engine
	store     engine.SnapshotStore
	opts      []engine.SessionOption
	warnings  []string
	session   *engine.Session
	step      engine.Step
	slots     []engine.Slot
	slot      int
	textInput textinput.Model
	viewport  viewport.Model
	err       error
	notice    string
	gameLog   string
	width     int
	height    int
	waiting   bool // a hint is on its way
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)
)

func NewModel(eng *engine.Engine, store engine.SnapshotStore, warnings []string, opts ...engine.SessionOption) model {
	ti := textinput.New()
	ti.Placeholder = "Slot number, or 'delete N'..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	return model{
		state:     stateSlots,
		engine:    eng,
		store:     store,
		opts:      opts,
		warnings:  warnings,
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadSlots())
}

type slotsLoadedMsg struct {
	slots []engine.Slot
}

type hintMsg struct {
	hint string
	err  error
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			// Leaving without the exit command does not save.
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			switch m.state {
			case stateSlots:
				return m.chooseSlot(input)
			case stateName:
				return m.createPlayer(input)
			case statePlaying:
				if m.waiting {
					return m, nil
				}
				if input != "" {
					m.logLine(userStyle.Width(m.logWidth()).Render("> " + input))
				}
				return m.answer(input)
			case stateEnded:
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.logWidth()
		m.viewport.Height = msg.Height - 6
		if m.state == statePlaying || m.state == stateEnded {
			m.viewport.SetContent(m.renderLog())
		}

	case slotsLoadedMsg:
		m.slots = msg.slots
		return m, nil

	case hintMsg:
		m.waiting = false
		if msg.err != nil {
			m.logText("🤔 " + msg.err.Error())
		} else {
			m.logText("🔮 " + msg.hint)
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state != stateError {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) chooseSlot(input string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	m.notice = ""

	if rest, ok := strings.CutPrefix(strings.ToLower(input), "delete "); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 1 || n > len(m.slots) {
			m.notice = "⚠️  Invalid slot"
			return m, nil
		}
		if m.slots[n-1].Empty() {
			m.notice = "⚠️  This slot is already empty!"
			return m, nil
		}
		if err := engine.DeleteSlot(ctx, m.store, n); err != nil {
			return m, func() tea.Msg { return errMsg{err} }
		}
		m.notice = "✅ Save deleted!"
		return m, m.loadSlots()
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		m.notice = "⚠️  Please enter a number"
		return m, nil
	}
	if n < 1 || n > len(m.slots) {
		m.notice = "⚠️  Invalid choice"
		return m, nil
	}
	m.slot = n
	if m.slots[n-1].Empty() {
		m.state = stateName
		m.textInput.Placeholder = "Your name..."
		return m, nil
	}
	s, err := m.engine.ResumeSlot(ctx, m.store, n, m.opts...)
	if err != nil {
		return m, func() tea.Msg { return errMsg{err} }
	}
	return m.startPlaying(s)
}

func (m model) createPlayer(name string) (tea.Model, tea.Cmd) {
	if name == "" {
		m.notice = "⚠️  The name cannot be empty"
		return m, nil
	}
	s, err := m.engine.StartSlot(context.Background(), m.store, m.slot, name, m.opts...)
	if err != nil {
		return m, func() tea.Msg { return errMsg{err} }
	}
	return m.startPlaying(s)
}

func (m model) startPlaying(s *engine.Session) (tea.Model, tea.Cmd) {
	m.session = s
	m.state = statePlaying
	m.notice = ""
	m.gameLog = ""
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.logWidth(), m.height-6)
	}
	m.advance()
	return m, nil
}

// advance resolves the next step and shows it.
func (m *model) advance() {
	step, err := m.session.Step(context.Background())
	m.step = step
	for range step.Skipped {
		m.logText("⏩ Skipping block...")
	}
	if err != nil {
		m.logText("⚠️  " + err.Error())
	}

	p := m.session.Player()
	switch step.Kind {
	case engine.StepText:
		m.logText(m.engine.TextScreen(p, step))
		m.textInput.Placeholder = "Press Enter to continue..."
	case engine.StepMenu:
		m.logText(m.engine.MenuScreen(p, step))
		m.textInput.Placeholder = fmt.Sprintf("Choose an option (1-%d) or a command...", len(step.Choices))
	case engine.StepStalled:
		m.logText(m.engine.MenuScreen(p, step))
		m.textInput.Placeholder = "Press Enter to continue or type a command..."
	case engine.StepEnded:
		m.end(step.Result)
	}
}

func (m *model) end(r *engine.Result) {
	m.logText(m.engine.EndScreen(m.session.Player(), r))
	m.state = stateEnded
	m.textInput.Placeholder = "Press Enter to quit..."
}

// answer handles one line typed while playing.
func (m model) answer(input string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	cmds := m.engine.Story().Commands

	if m.step.Kind == engine.StepMenu {
		in, err := engine.ParseMenuInput(input, len(m.step.Choices), cmds)
		if err != nil {
			m.logText(m.engine.InputErrorText(err))
			return m, nil
		}
		if in.Command != engine.CommandNone {
			return m.command(in.Command)
		}
		sel, err := m.session.Choose(ctx, m.step.Choices[in.Index])
		m.logText(m.engine.SelectionText(sel))
		if err != nil {
			m.logText("⚠️  " + err.Error())
		}
		if sel.Result != nil {
			m.end(sel.Result)
			return m, nil
		}
		m.advance()
		return m, nil
	}

	if c := engine.ParseCommand(input, cmds); c != engine.CommandNone {
		return m.command(c)
	}
	if m.step.Kind == engine.StepText {
		r, err := m.session.Acknowledge(ctx, m.step.Block.(*models.TextBlock))
		if err != nil {
			m.logText("⚠️  " + err.Error())
		}
		if r != nil {
			m.end(r)
			return m, nil
		}
	}
	m.advance()
	return m, nil
}

func (m model) command(c engine.Command) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch c {
	case engine.CommandInventory:
		m.logText(engine.InventoryText(m.session.Player().Inventory().Items()))
	case engine.CommandSave:
		if err := m.session.Save(ctx); err != nil {
			m.logText("⚠️  " + err.Error())
		} else {
			m.logText("💾 Game saved!")
		}
	case engine.CommandExit:
		r, err := m.session.Exit(ctx)
		if err != nil {
			m.logText("⚠️  " + err.Error())
		} else {
			m.logText("💾 Game saved!")
		}
		m.end(r)
	case engine.CommandHint:
		m.waiting = true
		m.logText(helpStyle.Render("The narrator is thinking..."))
		return m, m.requestHint()
	}
	return m, nil
}

func (m *model) logText(text string) {
	m.logLine(gameStyle.Width(m.logWidth()).Render(text))
}

func (m *model) logLine(line string) {
	m.gameLog += line + "\n\n"
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m model) logWidth() int {
	return int(float64(m.width) * 0.75)
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateSlots:
		lines := []string{m.engine.IntroText(engine.HintsEnabled(m.opts...)), ""}
		if len(m.warnings) > 0 {
			lines = append(lines, noticeStyle.Render(engine.WarningsText(m.warnings)), "")
		}
		for _, slot := range m.slots {
			lines = append(lines, slot.Summary())
		}
		s = strings.Join(lines, "\n") + "\n\n" + m.textInput.View()
		if m.notice != "" {
			s += "\n\n" + noticeStyle.Render(m.notice)
		}
		s += "\n\n" + helpStyle.Render("Type a slot number to play, 'delete N' to empty a slot, Esc to quit.")

	case stateName:
		s = fmt.Sprintf("🎮 NEW CHARACTER (slot %d)\n\n%s\n\n%s", m.slot, "What is your name?", m.textInput.View())
		if m.notice != "" {
			s += "\n\n" + noticeStyle.Render(m.notice)
		}

	case statePlaying, stateEnded:
		logView := m.viewport.View()
		stateView := m.renderState()

		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			logView,
			stateView,
		)

		c := m.engine.Story().Commands
		help := helpStyle.Render(fmt.Sprintf("Commands: %s, %s, %s", c.Inventory, c.Save, c.Exit))
		if m.session.HasHinter() {
			help = helpStyle.Render(fmt.Sprintf("Commands: %s, %s, %s, %s", c.Inventory, c.Save, c.Exit, c.Hint))
		}

		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.textInput.View(),
			"\n"+help,
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderState() string {
	if m.session == nil {
		return ""
	}

	p := m.session.Player()
	st := m.engine.Story()

	blockID := ""
	if m.step.Block != nil {
		blockID = m.step.Block.BlockID()
	}
	clock := "???"
	if !st.HidesTime(blockID) {
		clock = engine.FormatClock(m.engine.Clock(p))
	}
	status := titleStyle.Render("PLAYER") + "\n" + p.Name() + "\n" + "🕒 " + clock + "\n\n"

	invTitle := titleStyle.Render("INVENTORY") + "\n"
	inventory := ""
	items := p.Inventory().Items()
	if len(items) == 0 {
		inventory = "(empty)\n"
	} else {
		for _, item := range items {
			inventory += "- " + item.Name + "\n"
		}
	}
	inventory += "\n"

	achTitle := titleStyle.Render("ACHIEVEMENTS") + "\n"
	achievements := ""
	if a := m.engine.Achievements(p); len(a) == 0 {
		achievements = "(none yet)"
	} else {
		for _, name := range a {
			achievements += "- " + name + "\n"
		}
	}

	content := status + invTitle + inventory + achTitle + achievements

	stateWidth := int(float64(m.width) * 0.23) // Leave some room for padding
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func (m model) renderLog() string {
	return m.gameLog
}

func (m model) loadSlots() tea.Cmd {
	return func() tea.Msg {
		slots, err := engine.ListSlots(context.Background(), m.store)
		if err != nil {
			return errMsg{err}
		}
		return slotsLoadedMsg{slots}
	}
}

func (m model) requestHint() tea.Cmd {
	s, step := m.session, m.step
	return func() tea.Msg {
		hint, err := s.Hint(context.Background(), step)
		return hintMsg{hint, err}
	}
}

func Run(eng *engine.Engine, store engine.SnapshotStore, warnings []string, opts ...engine.SessionOption) error {
	p := tea.NewProgram(NewModel(eng, store, warnings, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
