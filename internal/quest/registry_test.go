package quest

import (
	"errors"
	"testing"

	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
)

func TestNewMapRegistry(t *testing.T) {
	registry := NewMapRegistry("$")

	if registry == nil {
		t.Fatal("NewMapRegistry returned nil")
	}
	if registry.Count() != 0 {
		t.Errorf("new registry should be empty, got %d", registry.Count())
	}
}

func TestLoadInfosFiltersByMark(t *testing.T) {
	registry := testRegistry()

	if registry.Count() != 2 {
		t.Errorf("Should have 2 quest maps, got %d", registry.Count())
	}
	if _, ok := registry.GetMap(2); ok {
		t.Error("unmarked map 2 should not be registered")
	}
	info, ok := registry.GetMap(3)
	if !ok || info.Name != "Forest$" {
		t.Errorf("GetMap(3) = %+v, %v", info, ok)
	}
}

func TestLoadInfosReplaces(t *testing.T) {
	registry := testRegistry()
	registry.LoadInfos([]hostmap.MapInfo{{ID: 9, Name: "$Ruins"}})

	if registry.Count() != 1 {
		t.Errorf("Count = %d after reload, want 1", registry.Count())
	}
	if _, ok := registry.GetMap(1); ok {
		t.Error("old maps should be dropped on reload")
	}
}

func TestLoadFromStore(t *testing.T) {
	store := hostmap.NewMemoryStore()
	store.SetMapInfos([]hostmap.MapInfo{{ID: 5, Name: "$Tower"}, {ID: 6, Name: "Inn"}})

	registry := NewMapRegistry("$")
	if err := registry.LoadFromStore(store); err != nil {
		t.Fatalf("LoadFromStore returned error: %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("Count = %d, want 1", registry.Count())
	}
}

func TestDisplayName(t *testing.T) {
	registry := NewMapRegistry("$")
	tests := []struct {
		name     string
		expected string
	}{
		{"$Cave", "Cave"},
		{"Forest$", "Forest"},
		{"$Deep$Mine", "Deep$Mine"},
		{"Town", "Town"},
	}
	for _, tt := range tests {
		if got := registry.DisplayName(tt.name); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestSampleEmptyRegistry(t *testing.T) {
	registry := NewMapRegistry("$")
	if _, err := registry.sample(testSampler(1)); !errors.Is(err, ErrNoQuestMaps) {
		t.Errorf("err = %v, want ErrNoQuestMaps", err)
	}
}
