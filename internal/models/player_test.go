package models

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer() *Player {
	return NewPlayer(NewGame{
		Name:         "Vika",
		TimeLeft:     100,
		StartBlock:   "text_000",
		DefaultFlags: []string{"eat_1", "eat_2"},
		Items:        []Item{{Name: "student card", Description: "Lets you in."}},
	})
}

func TestInventory(t *testing.T) {
	inv := NewInventory()
	inv.Add(Item{Name: "bun"})
	inv.Add(Item{Name: "coin", Power: 1})
	inv.Add(Item{Name: "bun", Description: "second"})

	assert.True(t, inv.Has("coin"))
	assert.False(t, inv.Has("umbrella"))

	assert.True(t, inv.Remove("bun"))
	items := inv.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "coin", items[0].Name)
	assert.Equal(t, "second", items[1].Description)
	assert.False(t, inv.Remove("umbrella"))

	items[0].Name = "changed"
	assert.Equal(t, "coin", inv.Items()[0].Name, "Items must return a copy")
}

func TestPlayerTimeNeverNegative(t *testing.T) {
	p := newTestPlayer()
	for _, cost := range []int{30, 50, 45, 10} {
		p.SpendTime(cost)
		assert.GreaterOrEqual(t, p.TimeLeft(), 0)
	}
	assert.Equal(t, 0, p.TimeLeft())
}

func TestPlayerFlagsAndHistory(t *testing.T) {
	p := newTestPlayer()
	assert.False(t, p.Flag("eat_1"))
	assert.False(t, p.Flag("never_defined"))

	p.SetFlag("")
	p.SetFlag("met_professor")
	assert.True(t, p.Flag("met_professor"))
	assert.Len(t, p.Flags(), 3)

	p.RecordChoice("c1")
	p.RecordChoice("c2")
	h := p.History()
	h[0] = "tampered"
	assert.Equal(t, []string{"c1", "c2"}, p.History())

	flags := p.Flags()
	flags["eat_1"] = true
	assert.False(t, p.Flag("eat_1"), "Flags must return a copy")
}

func TestPlayerFromSnapshotKeepsSavedClock(t *testing.T) {
	g := NewGame{TimeLeft: 840, StartBlock: "text_000"}

	var late Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Oleg", "time_left": -15}`), &late))
	assert.Equal(t, 0, PlayerFromSnapshot(&late, g).TimeLeft())

	var out Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Oleg", "time_left": 0}`), &out))
	assert.Equal(t, 0, PlayerFromSnapshot(&out, g).TimeLeft())

	built := &Snapshot{Name: "Oleg", TimeLeft: -3}
	assert.Equal(t, 0, PlayerFromSnapshot(built, g).TimeLeft())
}

func TestPlayerFromSnapshotDefaults(t *testing.T) {
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Oleg"}`), &snap))

	p := PlayerFromSnapshot(&snap, NewGame{TimeLeft: 840, StartBlock: "text_000"})
	assert.Equal(t, "Oleg", p.Name())
	assert.Equal(t, 840, p.TimeLeft())
	assert.Equal(t, "text_000", p.CurrentBlockID())
	assert.Equal(t, 0, p.Inventory().Len())
	assert.False(t, p.Flag("eat_1"))

	assert.Nil(t, PlayerFromSnapshot(nil, NewGame{}))
}

func TestFileStoreCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "player_data.json")
	s := OpenFileStore(path, 3, nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)

	slots, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*Snapshot{nil, nil, nil}, slots)
}

func TestFileStoreCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := OpenFileStore(path, 5, nil)
	snap, err := s.Load(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFileStoreFillsMissingSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"name": "A", "time_left": 10}}`), 0644))

	s := OpenFileStore(path, 5, nil)
	slots, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 5)
	require.NotNil(t, slots[0])
	assert.Equal(t, "A", slots[0].Name)
	assert.Nil(t, slots[4])
}

func TestFileStoreSlotRange(t *testing.T) {
	s := OpenFileStore(filepath.Join(t.TempDir(), "p.json"), 5, nil)
	_, err := s.Load(context.Background(), 0)
	assert.ErrorIs(t, err, ErrSlotOutOfRange)
	err = s.Save(context.Background(), 6, nil)
	assert.ErrorIs(t, err, ErrSlotOutOfRange)
}

func TestLoadThenSaveIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "player_data.json")
	s := OpenFileStore(path, 5, nil)

	p := newTestPlayer()
	p.SetFlag("eat_2")
	p.SetFlag("tram_thunderstorm")
	p.RecordChoice("choice_001")
	p.RecordChoice("choice_007")
	p.MoveTo("text_012")
	p.SpendTime(25)
	require.NoError(t, s.Save(ctx, 1, p.Snapshot()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	reopened := OpenFileStore(path, 5, nil)
	snap, err := reopened.Load(ctx, 1)
	require.NoError(t, err)
	loaded := PlayerFromSnapshot(snap, NewGame{TimeLeft: 840, StartBlock: "text_000"})
	require.NoError(t, reopened.Save(ctx, 1, loaded.Snapshot()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 75, loaded.TimeLeft())
	assert.Equal(t, []string{"choice_001", "choice_007"}, loaded.History())
}

func TestFileStoreDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := OpenFileStore(filepath.Join(t.TempDir(), "p.json"), 2, nil)
	require.NoError(t, s.Save(ctx, 1, newTestPlayer().Snapshot()))
	require.NoError(t, s.Save(ctx, 2, newTestPlayer().Snapshot()))

	require.NoError(t, s.Save(ctx, 1, nil))
	snap, err := s.Load(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, s.Clear(ctx))
	slots, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*Snapshot{nil, nil}, slots)
}
