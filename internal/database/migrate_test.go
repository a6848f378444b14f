package database

import (
	"path/filepath"
	"testing"
	"time"
)

func TestCopySlots(t *testing.T) {
	src := setupTestDB(t)
	dst, err := Open(filepath.Join(t.TempDir(), "dst.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	savedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	src.SaveSlot(Slot{ID: 1, Version: 1, Checksum: "a", Payload: []byte("one"), SavedAt: savedAt})
	src.SaveSlot(Slot{ID: 4, Version: 1, Checksum: "b", Payload: []byte("four"), SavedAt: savedAt})
	dst.SaveSlot(Slot{ID: 4, Version: 1, Payload: []byte("stale")})

	n, err := CopySlots(src, dst, true)
	if err != nil || n != 2 {
		t.Fatalf("dry run = %d, %v", n, err)
	}
	if s, _ := dst.LoadSlot(4); string(s.Payload) != "stale" {
		t.Error("dry run wrote to the destination")
	}

	n, err = CopySlots(src, dst, false)
	if err != nil || n != 2 {
		t.Fatalf("CopySlots = %d, %v", n, err)
	}
	s, err := dst.LoadSlot(4)
	if err != nil {
		t.Fatal(err)
	}
	if string(s.Payload) != "four" || s.Checksum != "b" || !s.SavedAt.Equal(savedAt) {
		t.Errorf("copied slot = %+v", s)
	}
	if _, err := dst.LoadSlot(1); err != nil {
		t.Errorf("slot 1 not copied: %v", err)
	}
}
