package story

import (
	"fmt"
	"sort"
)

// ConditionChecker reports whether a condition expression can be parsed.
type ConditionChecker interface {
	Check(expression string) error
}

// Problem is a content issue found by Validate.
type Problem struct {
	ID      string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.ID, p.Message)
}

// Validate looks for content the engine would trip over at play time:
// references to unknown blocks or choices, unparsable conditions and block
// id collisions. endBlock is the id that ends the story and needs no block.
func (s *Store) Validate(cond ConditionChecker, endBlock string) []Problem {
	var problems []Problem
	add := func(id, format string, args ...any) {
		problems = append(problems, Problem{ID: id, Message: fmt.Sprintf(format, args...)})
	}
	blockExists := func(id string) bool {
		if id == endBlock {
			return true
		}
		_, ok := s.Block(id)
		return ok
	}

	for _, id := range s.collisions {
		add(id, "defined as both a text block and a choice block")
	}
	for id, b := range s.textBlocks {
		if next, ok := b.NextBlock.Target(); ok && !blockExists(next) {
			add(id, "next_block %q does not exist", next)
		}
		if err := cond.Check(b.Conditions); err != nil {
			add(id, "conditions: %v", err)
		}
	}
	for id, b := range s.choiceBlocks {
		if len(b.AvailableChoices) == 0 {
			add(id, "offers no choices")
		}
		for _, cid := range b.AvailableChoices {
			if _, ok := s.choices[cid]; !ok {
				add(id, "available choice %q does not exist", cid)
			}
		}
	}
	for id, c := range s.choices {
		if next, ok := c.NextBlock.Target(); ok && !blockExists(next) {
			add(id, "next_block %q does not exist", next)
		}
		if err := cond.Check(c.Condition); err != nil {
			add(id, "condition: %v", err)
		}
		if err := cond.Check(c.EndCondition); err != nil {
			add(id, "end_condition: %v", err)
		}
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].ID != problems[j].ID {
			return problems[i].ID < problems[j].ID
		}
		return problems[i].Message < problems[j].Message
	})
	return problems
}
