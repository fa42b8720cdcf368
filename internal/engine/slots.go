package engine

import (
	"context"
	"fmt"

	"github.com/tatianab/text-game/internal/models"
)

// Slot is one save slot as shown in the slot menu.
type Slot struct {
	Number   int
	Snapshot *models.Snapshot // nil for an empty slot
}

// Empty reports whether the slot holds no save.
func (s Slot) Empty() bool { return s.Snapshot == nil }

// Summary is the one-line description of the slot.
func (s Slot) Summary() string {
	if s.Snapshot == nil {
		return fmt.Sprintf("%d. 📭 Empty slot", s.Number)
	}
	t := s.Snapshot.TimeLeft
	if t < 0 {
		t = 0
	}
	return fmt.Sprintf("%d. %s | ⏰ %02d:%02d | 📊 %d choices",
		s.Number, s.Snapshot.Name, t/60, t%60, len(s.Snapshot.ChoicesHistory))
}

// ListSlots returns every slot of store in order.
func ListSlots(ctx context.Context, store SnapshotStore) ([]Slot, error) {
	snaps, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	slots := make([]Slot, len(snaps))
	for i, snap := range snaps {
		slots[i] = Slot{Number: i + 1, Snapshot: snap}
	}
	return slots, nil
}

// DeleteSlot empties a slot.
func DeleteSlot(ctx context.Context, store SnapshotStore, slot int) error {
	if err := store.Save(ctx, slot, nil); err != nil {
		return fmt.Errorf("delete slot %d: %w", slot, err)
	}
	return nil
}
