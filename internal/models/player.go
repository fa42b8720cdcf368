package models

import (
	"encoding/json"
	"maps"
)

// Player is the progress of the one person playing the story.
type Player struct {
	name           string
	timeLeft       int
	inventory      *Inventory
	flags          map[string]bool
	history        []string
	currentBlockID string
}

// NewGame describes how a fresh player starts.
type NewGame struct {
	Name         string
	TimeLeft     int
	StartBlock   string
	DefaultFlags []string
	Items        []Item
}

// NewPlayer creates a player at the start of the story. Every default flag
// is present and false.
func NewPlayer(g NewGame) *Player {
	flags := make(map[string]bool, len(g.DefaultFlags))
	for _, f := range g.DefaultFlags {
		flags[f] = false
	}
	p := &Player{
		name:           g.Name,
		timeLeft:       g.TimeLeft,
		inventory:      NewInventory(g.Items...),
		flags:          flags,
		history:        []string{},
		currentBlockID: g.StartBlock,
	}
	if p.timeLeft < 0 {
		p.timeLeft = 0
	}
	return p
}

func (p *Player) Name() string           { return p.name }
func (p *Player) TimeLeft() int          { return p.timeLeft }
func (p *Player) CurrentBlockID() string { return p.currentBlockID }
func (p *Player) Inventory() *Inventory  { return p.inventory }

// SpendTime takes minutes off the clock. The clock never goes below zero.
func (p *Player) SpendTime(minutes int) {
	p.timeLeft -= minutes
	if p.timeLeft < 0 {
		p.timeLeft = 0
	}
}

// Flag returns the value of a flag; unknown flags are false.
func (p *Player) Flag(name string) bool {
	return p.flags[name]
}

// SetFlag raises a flag. Empty names are ignored.
func (p *Player) SetFlag(name string) {
	if name == "" {
		return
	}
	p.flags[name] = true
}

// Flags returns a copy of all flags.
func (p *Player) Flags() map[string]bool {
	return maps.Clone(p.flags)
}

// RecordChoice appends a choice id to the history.
func (p *Player) RecordChoice(id string) {
	p.history = append(p.history, id)
}

// History returns a copy of the chosen choice ids, oldest first.
func (p *Player) History() []string {
	out := make([]string, len(p.history))
	copy(out, p.history)
	return out
}

// MoveTo points the player at another block.
func (p *Player) MoveTo(blockID string) {
	p.currentBlockID = blockID
}

// InventoryData is the saved form of an inventory.
type InventoryData struct {
	Items []Item `json:"items"`
}

// Snapshot is the saved form of a player.
type Snapshot struct {
	Name           string          `json:"name"`
	TimeLeft       int             `json:"time_left"`
	Inventory      InventoryData   `json:"inventory"`
	Flags          map[string]bool `json:"flags"`
	ChoicesHistory []string        `json:"choices_history"`
	CurrentBlockID string          `json:"current_block_id"`

	noTimeLeft bool // time_left was absent from the saved JSON
}

// UnmarshalJSON remembers whether time_left was present so that loading can
// fall back to the configured start time only when it is missing.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var p struct {
		plain
		TimeLeft *int `json:"time_left"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Snapshot(p.plain)
	if p.TimeLeft == nil {
		s.noTimeLeft = true
	} else {
		s.TimeLeft = *p.TimeLeft
	}
	return nil
}

// Snapshot captures the player for saving.
func (p *Player) Snapshot() *Snapshot {
	items := p.inventory.Items()
	return &Snapshot{
		Name:           p.name,
		TimeLeft:       p.timeLeft,
		Inventory:      InventoryData{Items: items},
		Flags:          p.Flags(),
		ChoicesHistory: p.History(),
		CurrentBlockID: p.currentBlockID,
	}
}

// PlayerFromSnapshot rebuilds a saved player. The saved flags replace the
// default set entirely; fields missing from the save come from g.
func PlayerFromSnapshot(s *Snapshot, g NewGame) *Player {
	if s == nil {
		return nil
	}
	p := &Player{
		name:           s.Name,
		timeLeft:       s.TimeLeft,
		inventory:      NewInventory(s.Inventory.Items...),
		flags:          maps.Clone(s.Flags),
		history:        append([]string{}, s.ChoicesHistory...),
		currentBlockID: s.CurrentBlockID,
	}
	switch {
	case s.noTimeLeft:
		p.timeLeft = g.TimeLeft
	case p.timeLeft < 0:
		p.timeLeft = 0
	}
	if p.flags == nil {
		p.flags = map[string]bool{}
	}
	if p.currentBlockID == "" {
		p.currentBlockID = g.StartBlock
	}
	return p
}
