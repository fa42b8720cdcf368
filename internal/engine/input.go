package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tatianab/text-game/internal/config"
)

var (
	ErrNotANumber = errors.New("not a number")
	ErrOutOfRange = errors.New("out of range")
)

// InputError is a menu answer that can be neither a choice nor a command.
// The player is told and asked again; nothing changes.
type InputError struct {
	Input string
	Max   int
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("menu input %q (1-%d): %v", e.Input, e.Max, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Command is an in-session command typed at a prompt.
type Command int

const (
	CommandNone Command = iota
	CommandInventory
	CommandSave
	CommandExit
	CommandHint
)

// ParseCommand matches raw against the configured command words, ignoring
// case and surrounding space.
func ParseCommand(raw string, cmds config.Commands) Command {
	word := strings.ToLower(strings.TrimSpace(raw))
	if word == "" {
		return CommandNone
	}
	switch word {
	case strings.ToLower(cmds.Inventory):
		return CommandInventory
	case strings.ToLower(cmds.Save):
		return CommandSave
	case strings.ToLower(cmds.Exit):
		return CommandExit
	case strings.ToLower(cmds.Hint):
		return CommandHint
	}
	return CommandNone
}

// MenuInput is a parsed menu answer: either a zero-based Index or a
// Command.
type MenuInput struct {
	Index   int
	Command Command
}

// ParseMenuInput reads an answer to a menu of n choices numbered from 1.
func ParseMenuInput(raw string, n int, cmds config.Commands) (MenuInput, error) {
	if c := ParseCommand(raw, cmds); c != CommandNone {
		return MenuInput{Index: -1, Command: c}, nil
	}
	num, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return MenuInput{}, &InputError{Input: raw, Max: n, Err: ErrNotANumber}
	}
	if num < 1 || num > n {
		return MenuInput{}, &InputError{Input: raw, Max: n, Err: ErrOutOfRange}
	}
	return MenuInput{Index: num - 1}, nil
}
