// Package story holds the loaded narrative: text blocks, choice blocks and
// choices, each indexed by id.
package story

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/text-game/internal/models"
)

// Sources names the three content files.
type Sources struct {
	Choices      string
	TextBlocks   string
	ChoiceBlocks string
}

// LoadError reports a content file or entry that could not be loaded.
type LoadError struct {
	Path  string
	Entry string // empty when the whole file failed
	Err   error
}

func (e *LoadError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("load %s: entry %q: %v", e.Path, e.Entry, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Store is the narrative graph.
type Store struct {
	textBlocks   map[string]*models.TextBlock
	choiceBlocks map[string]*models.ChoiceBlock
	choices      map[string]*models.Choice
	collisions   []string
	logger       *log.Logger
}

// New returns an empty store.
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		textBlocks:   make(map[string]*models.TextBlock),
		choiceBlocks: make(map[string]*models.ChoiceBlock),
		choices:      make(map[string]*models.Choice),
		logger:       logger,
	}
}

// Load reads all three sources. Loading is best effort: every failure is
// logged and returned, and whatever could be read stays in the store, so
// the game can start with partial content.
func Load(src Sources, logger *log.Logger) (*Store, []error) {
	s := New(logger)
	var errs []error
	errs = append(errs, s.LoadChoices(src.Choices)...)
	errs = append(errs, s.LoadTextBlocks(src.TextBlocks)...)
	errs = append(errs, s.LoadChoiceBlocks(src.ChoiceBlocks)...)
	s.findCollisions()
	return s, errs
}

// LoadChoices reads a file shaped {"choices": {id: {...}}}.
func (s *Store) LoadChoices(path string) []error {
	entries, err := readSection(path, "choices")
	if err != nil {
		return s.fail(path, err)
	}
	errs := decodeEntries(path, entries, func(id string, c *models.Choice) {
		c.ID = id
		s.choices[id] = c
	})
	s.report(errs)
	s.logger.Printf("loaded %d choices", len(s.choices))
	return errs
}

// LoadTextBlocks reads a file shaped {id: {...}}.
func (s *Store) LoadTextBlocks(path string) []error {
	entries, err := readSection(path, "")
	if err != nil {
		return s.fail(path, err)
	}
	errs := decodeEntries(path, entries, func(id string, b *models.TextBlock) {
		b.ID = id
		s.textBlocks[id] = b
	})
	s.report(errs)
	s.logger.Printf("loaded %d text blocks", len(s.textBlocks))
	return errs
}

// LoadChoiceBlocks reads a file shaped {"choice_blocks": {id: {...}}}.
func (s *Store) LoadChoiceBlocks(path string) []error {
	entries, err := readSection(path, "choice_blocks")
	if err != nil {
		return s.fail(path, err)
	}
	errs := decodeEntries(path, entries, func(id string, b *models.ChoiceBlock) {
		b.ID = id
		s.choiceBlocks[id] = b
	})
	s.report(errs)
	s.logger.Printf("loaded %d choice blocks", len(s.choiceBlocks))
	return errs
}

func (s *Store) fail(path string, err error) []error {
	lerr := &LoadError{Path: path, Err: err}
	s.logger.Printf("%v", lerr)
	return []error{lerr}
}

func (s *Store) report(errs []error) {
	for _, err := range errs {
		s.logger.Printf("%v", err)
	}
}

// readSection returns the id-keyed entries of a content file, either at the
// top level (section == "") or under one key.
func readSection(path, section string) ([]*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("file is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be an object")
	}
	if section == "" {
		return root.Content, nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == section {
			m := root.Content[i+1]
			if m.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%q must be an object", section)
			}
			return m.Content, nil
		}
	}
	return nil, nil
}

// decodeEntries decodes key/value pairs one at a time so that a bad entry
// only loses itself. Later duplicates overwrite earlier ones.
func decodeEntries[T any](path string, kv []*yaml.Node, put func(id string, v *T)) []error {
	var errs []error
	for i := 0; i+1 < len(kv); i += 2 {
		id := kv[i].Value
		v := new(T)
		if err := kv[i+1].Decode(v); err != nil {
			errs = append(errs, &LoadError{Path: path, Entry: id, Err: err})
			continue
		}
		put(id, v)
	}
	return errs
}

func (s *Store) findCollisions() {
	s.collisions = s.collisions[:0]
	for id := range s.textBlocks {
		if _, ok := s.choiceBlocks[id]; ok {
			s.collisions = append(s.collisions, id)
		}
	}
	sort.Strings(s.collisions)
	for _, id := range s.collisions {
		s.logger.Printf("block id %q is both a text block and a choice block; the text block is used", id)
	}
}

// AddTextBlock registers a text block.
func (s *Store) AddTextBlock(b *models.TextBlock) {
	s.textBlocks[b.ID] = b
	s.findCollisions()
}

// AddChoiceBlock registers a choice block.
func (s *Store) AddChoiceBlock(b *models.ChoiceBlock) {
	s.choiceBlocks[b.ID] = b
	s.findCollisions()
}

// AddChoice registers a choice.
func (s *Store) AddChoice(c *models.Choice) {
	s.choices[c.ID] = c
}

// Block returns the block with the given id. Text blocks are looked up
// first, so a text block wins over a choice block with the same id.
func (s *Store) Block(id string) (models.Block, bool) {
	if b, ok := s.textBlocks[id]; ok {
		return b, true
	}
	if b, ok := s.choiceBlocks[id]; ok {
		return b, true
	}
	return nil, false
}

// Choice returns the choice with the given id.
func (s *Store) Choice(id string) (*models.Choice, bool) {
	c, ok := s.choices[id]
	return c, ok
}

// Collisions returns ids defined both as a text block and a choice block.
func (s *Store) Collisions() []string {
	return append([]string(nil), s.collisions...)
}

// Counts returns how many text blocks, choice blocks and choices are loaded.
func (s *Store) Counts() (textBlocks, choiceBlocks, choices int) {
	return len(s.textBlocks), len(s.choiceBlocks), len(s.choices)
}
