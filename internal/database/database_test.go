package database

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM save_slots").Scan(&count); err != nil {
		t.Errorf("Failed to query save_slots table: %v", err)
	}
	if _, ok := db.Dialect().(*SQLiteDialect); !ok {
		t.Errorf("Dialect = %T, want *SQLiteDialect", db.Dialect())
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(nestedPath)
	if err != nil {
		t.Fatalf("Failed to open database with nested path: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SaveSlot(Slot{ID: 1, Version: 1, Payload: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if _, err := db.LoadSlot(1); err != nil {
		t.Errorf("slot lost across reopen: %v", err)
	}
}

func TestClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close database: %v", err)
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM save_slots").Scan(&count); err == nil {
		t.Error("Expected error querying closed database")
	}
}

func TestSaveAndLoadSlot(t *testing.T) {
	db := setupTestDB(t)
	savedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte{0x7b, 0x00, 0xff, 0x7d}

	if err := db.SaveSlot(Slot{ID: 3, Version: 1, Checksum: "abc", Payload: payload, SavedAt: savedAt}); err != nil {
		t.Fatalf("SaveSlot: %v", err)
	}

	s, err := db.LoadSlot(3)
	if err != nil {
		t.Fatalf("LoadSlot: %v", err)
	}
	if !bytes.Equal(s.Payload, payload) {
		t.Errorf("Payload = %v, want %v", s.Payload, payload)
	}
	if s.Checksum != "abc" || s.Version != 1 {
		t.Errorf("slot = %+v", s)
	}
	if !s.SavedAt.Equal(savedAt) {
		t.Errorf("SavedAt = %v, want %v", s.SavedAt, savedAt)
	}
}

func TestSaveSlotOverwrites(t *testing.T) {
	db := setupTestDB(t)
	db.SaveSlot(Slot{ID: 1, Version: 1, Payload: []byte("first")})
	if err := db.SaveSlot(Slot{ID: 1, Version: 2, Payload: []byte("second")}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	s, err := db.LoadSlot(1)
	if err != nil {
		t.Fatal(err)
	}
	if string(s.Payload) != "second" || s.Version != 2 {
		t.Errorf("slot = %+v", s)
	}
	if s.SavedAt.IsZero() {
		t.Error("SavedAt should be stamped")
	}
}

func TestLoadSlotNotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.LoadSlot(42); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("err = %v, want ErrSlotNotFound", err)
	}
}

func TestSaveSlotRejectsNegative(t *testing.T) {
	db := setupTestDB(t)
	if err := db.SaveSlot(Slot{ID: -1, Payload: []byte("x")}); err == nil {
		t.Error("negative slot accepted")
	}
}

func TestDeleteSlot(t *testing.T) {
	db := setupTestDB(t)
	db.SaveSlot(Slot{ID: 2, Payload: []byte("x")})

	if err := db.DeleteSlot(2); err != nil {
		t.Fatalf("DeleteSlot: %v", err)
	}
	if _, err := db.LoadSlot(2); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("slot still loadable: %v", err)
	}
	if err := db.DeleteSlot(2); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("second delete err = %v, want ErrSlotNotFound", err)
	}
}

func TestListSlots(t *testing.T) {
	db := setupTestDB(t)

	slots, err := db.ListSlots()
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Errorf("empty db lists %d slots", len(slots))
	}

	db.SaveSlot(Slot{ID: 5, Version: 1, Checksum: "e", Payload: []byte("hello")})
	db.SaveSlot(Slot{ID: 1, Version: 1, Checksum: "a", Payload: []byte("hi")})

	slots, err = db.ListSlots()
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("ListSlots returned %d, want 2", len(slots))
	}
	if slots[0].ID != 1 || slots[1].ID != 5 {
		t.Errorf("order = %d, %d; want 1, 5", slots[0].ID, slots[1].ID)
	}
	if slots[1].Size != 5 || slots[1].Checksum != "e" {
		t.Errorf("slot 5 info = %+v", slots[1])
	}
}
