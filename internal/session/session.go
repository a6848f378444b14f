// Package session saves and restores the dungeon cache and quest progress
// as one checksummed blob.
package session

import (
	"bytes"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/crypto/blake2b"

	"github.com/tychio/da-rmmv-plugins/internal/database"
	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
	"github.com/tychio/da-rmmv-plugins/internal/quest"
)

// Version is the envelope format written by Serialize.
const Version = 1

var (
	// ErrChecksumMismatch means the payload does not match its checksum.
	ErrChecksumMismatch = errors.New("save checksum mismatch")

	// ErrUnsupportedVersion means the blob was written by an unknown format.
	ErrUnsupportedVersion = errors.New("unsupported save version")

	// ErrSlotNotFound is returned by Load for an empty slot.
	ErrSlotNotFound = database.ErrSlotNotFound

	// ErrNoSlotStore is returned by Save and Load without a database.
	ErrNoSlotStore = errors.New("no save slot store configured")
)

// SlotStore persists serialized sessions. *database.Database implements it.
type SlotStore interface {
	SaveSlot(s database.Slot) error
	LoadSlot(id int) (*database.Slot, error)
}

// State is the payload of a save.
type State struct {
	Dungeons map[int]dungeon.Entry `json:"dungeons"`
	Task     quest.EngineState     `json:"task"`
}

// Envelope wraps a payload with its format version and blake2b-256 checksum.
type Envelope struct {
	Version  int             `json:"version"`
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Session ties the dungeon cache and the quest engine to a slot store.
type Session struct {
	dungeons *dungeon.Cache
	engine   *quest.Engine
	slots    SlotStore
	log      *slog.Logger
}

// New creates a session. slots may be nil when only Serialize and
// Deserialize are needed.
func New(dungeons *dungeon.Cache, engine *quest.Engine, slots SlotStore) *Session {
	if dungeons == nil {
		dungeons = dungeon.NewCache()
	}
	return &Session{
		dungeons: dungeons,
		engine:   engine,
		slots:    slots,
		log:      logger.With("session"),
	}
}

// Checksum returns the hex blake2b-256 digest of payload.
func Checksum(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Snapshot collects the current state.
func (s *Session) Snapshot() State {
	st := State{Dungeons: s.dungeons.Snapshot()}
	if s.engine != nil {
		st.Task = s.engine.Snapshot()
	}
	return st
}

// Serialize encodes the current state as an envelope.
func (s *Session) Serialize() ([]byte, error) {
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return json.Marshal(Envelope{
		Version:  Version,
		Checksum: Checksum(payload),
		Payload:  payload,
	})
}

// Deserialize verifies an envelope and replaces the session state with its
// payload. Nothing is changed when verification or decoding fails.
func (s *Session) Deserialize(data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode save envelope: %w", err)
	}
	if env.Version < 1 || env.Version > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	var payload bytes.Buffer
	if err := json.Compact(&payload, env.Payload); err != nil {
		return fmt.Errorf("failed to decode save payload: %w", err)
	}
	got := Checksum(payload.Bytes())
	if subtle.ConstantTimeCompare([]byte(got), []byte(env.Checksum)) != 1 {
		return ErrChecksumMismatch
	}

	var st State
	if err := json.Unmarshal(payload.Bytes(), &st); err != nil {
		return fmt.Errorf("failed to decode session: %w", err)
	}

	if s.engine != nil {
		if err := s.engine.Restore(st.Task); err != nil {
			return fmt.Errorf("failed to restore quests: %w", err)
		}
	}
	s.dungeons.Restore(st.Dungeons)

	s.log.Debug("Restored session", "dungeons", len(st.Dungeons))
	return nil
}

// Save serializes the session into slot.
func (s *Session) Save(slot int) (database.SlotInfo, error) {
	if s.slots == nil {
		return database.SlotInfo{}, ErrNoSlotStore
	}
	blob, err := s.Serialize()
	if err != nil {
		return database.SlotInfo{}, err
	}
	sum := Checksum(blob)
	if err := s.slots.SaveSlot(database.Slot{
		ID:       slot,
		Version:  Version,
		Checksum: sum,
		Payload:  blob,
	}); err != nil {
		return database.SlotInfo{}, err
	}

	s.log.Info("Saved session", "slot", slot, "size", humanize.Bytes(uint64(len(blob))))
	return database.SlotInfo{ID: slot, Version: Version, Checksum: sum, Size: len(blob)}, nil
}

// Load restores the session from slot.
func (s *Session) Load(slot int) error {
	if s.slots == nil {
		return ErrNoSlotStore
	}
	stored, err := s.slots.LoadSlot(slot)
	if err != nil {
		return err
	}
	if stored.Checksum != "" && stored.Checksum != Checksum(stored.Payload) {
		return fmt.Errorf("slot %d: %w", slot, ErrChecksumMismatch)
	}
	if err := s.Deserialize(stored.Payload); err != nil {
		return fmt.Errorf("slot %d: %w", slot, err)
	}

	s.log.Info("Loaded session", "slot", slot)
	return nil
}
