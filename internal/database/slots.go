package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSlotNotFound is returned when a save slot has no data.
var ErrSlotNotFound = errors.New("save slot not found")

// Slot is one saved game blob.
type Slot struct {
	ID       int
	Version  int
	Checksum string
	Payload  []byte
	SavedAt  time.Time
}

// SlotInfo describes a slot without its payload.
type SlotInfo struct {
	ID       int       `json:"slot"`
	Version  int       `json:"version"`
	Checksum string    `json:"checksum"`
	Size     int       `json:"size"`
	SavedAt  time.Time `json:"saved_at"`
}

// SaveSlot writes s, replacing any previous data in the same slot. A zero
// SavedAt is stamped with the current time.
func (d *Database) SaveSlot(s Slot) error {
	if s.ID < 0 {
		return fmt.Errorf("invalid slot %d", s.ID)
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}

	query := d.qb.Build(`INSERT INTO save_slots (slot, version, checksum, payload, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			version = excluded.version,
			checksum = excluded.checksum,
			payload = excluded.payload,
			saved_at = excluded.saved_at`)

	if _, err := d.db.Exec(query, s.ID, s.Version, s.Checksum, s.Payload, s.SavedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to save slot %d: %w", s.ID, err)
	}

	d.log.Info("Saved slot", "slot", s.ID, "bytes", len(s.Payload))
	return nil
}

// LoadSlot reads a slot.
func (d *Database) LoadSlot(id int) (*Slot, error) {
	var s Slot
	var savedAt int64

	err := d.db.QueryRow(
		d.qb.Build("SELECT slot, version, checksum, payload, saved_at FROM save_slots WHERE slot = ?"),
		id,
	).Scan(&s.ID, &s.Version, &s.Checksum, &s.Payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slot %d: %w", id, ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %d: %w", id, err)
	}

	s.SavedAt = time.Unix(0, savedAt)
	return &s, nil
}

// DeleteSlot removes a slot. Deleting an empty slot returns ErrSlotNotFound.
func (d *Database) DeleteSlot(id int) error {
	result, err := d.db.Exec(d.qb.Build("DELETE FROM save_slots WHERE slot = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete slot %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete slot %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("slot %d: %w", id, ErrSlotNotFound)
	}

	d.log.Info("Deleted slot", "slot", id)
	return nil
}

// ListSlots returns every saved slot ordered by id.
func (d *Database) ListSlots() ([]SlotInfo, error) {
	rows, err := d.db.Query("SELECT slot, version, checksum, LENGTH(payload), saved_at FROM save_slots ORDER BY slot")
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var savedAt int64
		if err := rows.Scan(&info.ID, &info.Version, &info.Checksum, &info.Size, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		info.SavedAt = time.Unix(0, savedAt)
		slots = append(slots, info)
	}
	return slots, rows.Err()
}
