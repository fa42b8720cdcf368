package models

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Item is something the player can carry. Items are compared by name.
type Item struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Power       int    `yaml:"power" json:"power"`
}

// TimeCostKind tells how a choice's time cost was authored.
type TimeCostKind int

const (
	TimeCostNone TimeCostKind = iota // null or absent
	TimeCostMinutes
	TimeCostUnknown // non-integer marker such as "???"
)

// TimeCost is the number of in-story minutes a choice takes.
type TimeCost struct {
	Kind    TimeCostKind
	Minutes int
}

// Minutes returns a known time cost.
func Minutes(n int) TimeCost {
	return TimeCost{Kind: TimeCostMinutes, Minutes: n}
}

func (t *TimeCost) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		t.Kind = TimeCostUnknown
		return nil
	}
	if value.ShortTag() == "!!int" {
		n, err := strconv.Atoi(value.Value)
		if err == nil {
			*t = Minutes(n)
			return nil
		}
	}
	t.Kind = TimeCostUnknown
	return nil
}

// Label renders the cost the way menus show it.
func (t TimeCost) Label() string {
	switch t.Kind {
	case TimeCostMinutes:
		return fmt.Sprintf("[⏰ %d min]", t.Minutes)
	case TimeCostUnknown:
		return "[⏰ ??? min]"
	default:
		return "[⚡ instant]"
	}
}

// BlockRef points at the next block. Authors may write a single id, a list
// of ids or null.
type BlockRef struct {
	IDs []string
}

// Ref builds a BlockRef from ids.
func Ref(ids ...string) BlockRef {
	return BlockRef{IDs: ids}
}

func (r *BlockRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value != "" {
			r.IDs = []string{value.Value}
		}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&r.IDs)
	}
	return fmt.Errorf("line %d: block reference must be a string or a list", value.Line)
}

// Target returns the block to move to. Only the first id of a list is ever
// used; ok is false when the reference ends the story.
func (r BlockRef) Target() (id string, ok bool) {
	if len(r.IDs) == 0 {
		return "", false
	}
	return r.IDs[0], true
}

// ItemGrant lists the item names a choice hands out.
type ItemGrant struct {
	Names []string
}

func (g *ItemGrant) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!str" && value.Value != "" {
			g.Names = []string{value.Value}
		}
		return nil
	case yaml.SequenceNode:
		for _, n := range value.Content {
			if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" {
				g.Names = append(g.Names, n.Value)
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: given_item must be a string or a list", value.Line)
}

// Choice is one option of a choice block.
type Choice struct {
	ID             string    `yaml:"-"`
	Name           string    `yaml:"name"`
	Description    string    `yaml:"description"`
	TimeCost       TimeCost  `yaml:"time_cost"`
	Condition      string    `yaml:"condition"`
	GivenFlag      string    `yaml:"given_flag"`
	GivenItem      ItemGrant `yaml:"given_item"`
	NextBlock      BlockRef  `yaml:"next_block"`
	EndCondition   string    `yaml:"end_condition"`
	EndDescription string    `yaml:"end_description"`
	End            *int      `yaml:"end"` // reserved
	Circle         bool      `yaml:"circle"`
}

// Block is either a *TextBlock or a *ChoiceBlock.
type Block interface {
	BlockID() string
	block()
}

// TextBlock is a passage that advances on its own once acknowledged.
type TextBlock struct {
	ID            string   `yaml:"-"`
	Body          string   `yaml:"body"`
	NextBlock     BlockRef `yaml:"next_block"`
	PreviousBlock BlockRef `yaml:"previous_block"`
	Conditions    string   `yaml:"conditions"`
}

func (b *TextBlock) BlockID() string { return b.ID }
func (*TextBlock) block()            {}

// ChoiceBlock offers a menu of choices. The selected choice decides where
// the story goes next.
type ChoiceBlock struct {
	ID               string   `yaml:"-"`
	Name             string   `yaml:"name"`
	AvailableChoices []string `yaml:"available_choices"`
	PreviousBlock    BlockRef `yaml:"previous_block"`
}

func (b *ChoiceBlock) BlockID() string { return b.ID }
func (*ChoiceBlock) block()            {}
