// Package sqlite keeps save slots in a SQLite database instead of the JSON
// save file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tatianab/text-game/internal/models"
)

//go:embed schema.sql
var schema string

// Store provides SQLite-backed save slots. Each slot row holds the same
// snapshot JSON the file store writes.
type Store struct {
	sqlDB    *sql.DB
	maxSlots int
}

// Open opens the database at path and creates the slot table.
func Open(path string, maxSlots int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if maxSlots <= 0 {
		return nil, fmt.Errorf("max slots must be positive, got %d", maxSlots)
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, maxSlots: maxSlots}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// MaxSlots returns the number of slots.
func (s *Store) MaxSlots() int {
	return s.maxSlots
}

func (s *Store) check(slot int) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if slot < 1 || slot > s.maxSlots {
		return fmt.Errorf("%w: %d (1-%d)", models.ErrSlotOutOfRange, slot, s.maxSlots)
	}
	return nil
}

// Load returns the snapshot in a slot, or nil when the slot is empty.
func (s *Store) Load(ctx context.Context, slot int) (*models.Snapshot, error) {
	if err := s.check(slot); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT snapshot_json FROM save_slots WHERE slot = ?`, slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %d: %w", slot, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode slot %d: %w", slot, err)
	}
	return &snap, nil
}

// Save upserts a snapshot. A nil snapshot empties the slot.
func (s *Store) Save(ctx context.Context, slot int, snap *models.Snapshot) error {
	if err := s.check(slot); err != nil {
		return err
	}
	if snap == nil {
		if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, slot); err != nil {
			return fmt.Errorf("delete slot %d: %w", slot, err)
		}
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode slot %d: %w", slot, err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO save_slots (slot, player_name, snapshot_json, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		    player_name = excluded.player_name,
		    snapshot_json = excluded.snapshot_json,
		    updated_at = excluded.updated_at`,
		slot, snap.Name, payload, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	return nil
}

// List returns every slot in order; empty slots are nil. A row that no
// longer decodes is reported as an empty slot.
func (s *Store) List(ctx context.Context) ([]*models.Snapshot, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT slot, snapshot_json FROM save_slots WHERE slot BETWEEN 1 AND ? ORDER BY slot`, s.maxSlots)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Snapshot, s.maxSlots)
	for rows.Next() {
		var slot int
		var payload []byte
		if err := rows.Scan(&slot, &payload); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		var snap models.Snapshot
		if err := json.Unmarshal(payload, &snap); err != nil {
			continue
		}
		out[slot-1] = &snap
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

// Clear empties every slot.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots`); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}
	return nil
}
