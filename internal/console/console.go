// Package console is the line-by-line terminal frontend. It prints with an
// optional typewriter delay and reads answers one line at a time.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F5F87"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

// Console reads from in and writes to out.
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	delay   time.Duration
	lines   chan readResult
	pending bool // a read is still waiting for a line
}

type readResult struct {
	line string
	err  error
}

// New returns a console. delay is the pause after each printed character;
// zero prints at once.
func New(in io.Reader, out io.Writer, delay time.Duration) *Console {
	return &Console{
		in:    bufio.NewReader(in),
		out:   out,
		delay: delay,
	}
}

// RenderParagraphs prints text line by line. Blank lines are kept.
func (c *Console) RenderParagraphs(text string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			fmt.Fprintln(c.out)
			continue
		}
		c.printSlow(style(line))
	}
}

func style(line string) string {
	switch {
	case strings.HasPrefix(line, "⚠️"):
		return warnStyle.Render(line)
	case strings.Trim(line, "=-!") == "":
		return ruleStyle.Render(line)
	}
	return line
}

func (c *Console) printSlow(line string) {
	if c.delay <= 0 {
		fmt.Fprintln(c.out, line)
		return
	}
	for _, r := range line {
		fmt.Fprint(c.out, string(r))
		time.Sleep(c.delay)
	}
	fmt.Fprintln(c.out)
}

// PromptContinue waits for Enter.
func (c *Console) PromptContinue(ctx context.Context) error {
	_, err := c.Prompt(ctx, "\n↵ Press Enter to continue...")
	return err
}

// PromptMenuChoice asks for a menu number or a command.
func (c *Console) PromptMenuChoice(ctx context.Context, n int) (string, error) {
	return c.Prompt(ctx, fmt.Sprintf("Choose an option (1-%d): ", n))
}

// PromptFreeCommand asks for a command; Enter alone is an empty command.
func (c *Console) PromptFreeCommand(ctx context.Context) (string, error) {
	return c.Prompt(ctx, "\n↵ Press Enter to continue or type a command: ")
}

// Prompt prints prompt and returns the next line without its line ending.
// It returns ctx.Err() if ctx is done first.
func (c *Console) Prompt(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, promptStyle.Render(prompt))
	if c.lines == nil {
		c.lines = make(chan readResult, 1)
	}
	// A read abandoned by a cancelled prompt answers the next one.
	if !c.pending {
		c.pending = true
		go func() {
			line, err := c.in.ReadString('\n')
			if errors.Is(err, io.EOF) && line != "" {
				err = nil
			}
			c.lines <- readResult{line: strings.TrimRight(line, "\r\n"), err: err}
		}()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-c.lines:
		c.pending = false
		return r.line, r.err
	}
}
