package models

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultSaveFile is where save slots live unless configured otherwise.
const DefaultSaveFile = ".saves/player_data.json"

// ErrSlotOutOfRange is returned for slot numbers outside 1..max.
var ErrSlotOutOfRange = errors.New("save slot out of range")

// FileStore keeps every save slot in one JSON object keyed "1".."N". A null
// value is an empty slot. The whole file is rewritten on every save.
type FileStore struct {
	path     string
	maxSlots int
	logger   *log.Logger
	slots    map[string]*Snapshot
}

// OpenFileStore reads the save file. A missing, empty or corrupt file is
// replaced with empty slots so that the game can still start; the problem
// is logged rather than returned.
func OpenFileStore(path string, maxSlots int, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if maxSlots <= 0 {
		maxSlots = 5
	}
	s := &FileStore{path: path, maxSlots: maxSlots, logger: logger}
	s.slots = s.loadSafe()
	return s
}

func (s *FileStore) loadSafe() map[string]*Snapshot {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.createDefault()
	}
	if err != nil {
		s.logger.Printf("read saves %s: %v", s.path, err)
		return s.createDefault()
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s.createDefault()
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Printf("malformed saves %s, starting fresh: %v", s.path, err)
		return s.createDefault()
	}

	slots := make(map[string]*Snapshot, s.maxSlots)
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			slots[key] = nil
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(value, &snap); err != nil {
			s.logger.Printf("save slot %s is unreadable, treating it as empty: %v", key, err)
			slots[key] = nil
			continue
		}
		slots[key] = &snap
	}
	for i := 1; i <= s.maxSlots; i++ {
		if _, ok := slots[strconv.Itoa(i)]; !ok {
			slots[strconv.Itoa(i)] = nil
		}
	}
	return slots
}

func (s *FileStore) createDefault() map[string]*Snapshot {
	slots := make(map[string]*Snapshot, s.maxSlots)
	for i := 1; i <= s.maxSlots; i++ {
		slots[strconv.Itoa(i)] = nil
	}
	s.slots = slots
	if err := s.writeAll(); err != nil {
		s.logger.Printf("could not write default saves: %v", err)
	} else {
		s.logger.Printf("created new save file %s", s.path)
	}
	return slots
}

func (s *FileStore) writeAll() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s.slots); err != nil {
		return err
	}
	return os.WriteFile(s.path, buf.Bytes(), 0644)
}

func (s *FileStore) key(slot int) (string, error) {
	if slot < 1 || slot > s.maxSlots {
		return "", fmt.Errorf("%w: %d (1-%d)", ErrSlotOutOfRange, slot, s.maxSlots)
	}
	return strconv.Itoa(slot), nil
}

// MaxSlots returns the number of slots.
func (s *FileStore) MaxSlots() int {
	return s.maxSlots
}

// Load returns the snapshot in a slot, or nil when the slot is empty.
func (s *FileStore) Load(ctx context.Context, slot int) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := s.key(slot)
	if err != nil {
		return nil, err
	}
	return s.slots[key], nil
}

// Save stores a snapshot in a slot and rewrites the file. A nil snapshot
// empties the slot.
func (s *FileStore) Save(ctx context.Context, slot int, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := s.key(slot)
	if err != nil {
		return err
	}
	s.slots[key] = snap
	if err := s.writeAll(); err != nil {
		return fmt.Errorf("write saves: %w", err)
	}
	return nil
}

// List returns every slot in order; empty slots are nil.
func (s *FileStore) List(ctx context.Context) ([]*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*Snapshot, s.maxSlots)
	for i := range out {
		out[i] = s.slots[strconv.Itoa(i+1)]
	}
	return out, nil
}

// Clear empties every slot.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i := 1; i <= s.maxSlots; i++ {
		s.slots[strconv.Itoa(i)] = nil
	}
	return s.writeAll()
}

// Close is a no-op; the file is written on every save.
func (s *FileStore) Close() error {
	return nil
}
