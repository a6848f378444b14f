package quest

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/names"
)

// testTaskConfig returns a three-level ladder small enough to reason about.
func testTaskConfig() config.TaskConfig {
	cfg := config.DefaultConfig().Task
	cfg.Levels = []string{"G", "F", "E"}
	cfg.Credits = []int{100, 500, 3000}
	return cfg
}

func testRegistry() *MapRegistry {
	r := NewMapRegistry("$")
	r.LoadInfos([]hostmap.MapInfo{
		{ID: 1, Name: "$Cave"},
		{ID: 2, Name: "Town"},
		{ID: 3, Name: "Forest$"},
		{ID: 4, Name: ""},
	})
	return r
}

func testSampler(seed int64) *Sampler {
	return NewSampler(rand.New(rand.NewSource(seed)))
}

func TestTypeConstants(t *testing.T) {
	tests := []struct {
		questType Type
		expected  string
	}{
		{TypeItem, "1_item"},
		{TypeEnemy, "2_enemy"},
		{TypeNPC, "3_npc"},
	}

	for i, tt := range tests {
		if string(tt.questType) != tt.expected {
			t.Errorf("Type constant mismatch: got %s, want %s", tt.questType, tt.expected)
		}
		if AllTypes()[i] != tt.questType {
			t.Errorf("AllTypes()[%d] = %s, want %s", i, AllTypes()[i], tt.questType)
		}
	}

	if StatusDoing != "1_doing" || StatusDone != "2_done" {
		t.Error("status constants changed")
	}
}

func TestQuestCloneIsIndependent(t *testing.T) {
	q := &Quest{Name: "[G]explore Cave", Level: Level{Index: 0, Label: "G", Rate: 1}, Steps: 2}
	c := q.Clone()
	c.Level.Rate = 5
	c.Steps = 0

	if q.Level.Rate != 1 || q.Steps != 2 {
		t.Error("mutating a clone changed the original")
	}

	var nilQuest *Quest
	if nilQuest.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestQuestJSONShape(t *testing.T) {
	q := &Quest{
		Name:   "[F]beat the Slime",
		Level:  Level{Index: 1, Label: "F", Rate: 1},
		Type:   TypeEnemy,
		Steps:  2,
		Map:    Location{MapID: 3, MapName: "Forest", Target: "Slime"},
		Bonus:  Bonus{Increase: 15, Deduct: 30},
		Status: StatusDoing,
	}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "level", "type", "steps", "map", "bonus", "status"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if raw["level"].(map[string]any)["level"] != "F" {
		t.Errorf("level label key = %v", raw["level"])
	}
}

func TestRender(t *testing.T) {
	got := Render("[${level}]go to ${map} ${type} ${target} ${unknown}", "G", "Cave", "find", "Slime")
	want := "[G]go to Cave find Slime ${unknown}"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}

	// substituted values are not expanded again
	if got := Render("${target}", "G", "", "", "${level}"); got != "${level}" {
		t.Errorf("Render re-expanded a value: %q", got)
	}
}

func TestNameCache(t *testing.T) {
	c := NewNameCache()
	if !c.Add("a") || c.Add("a") {
		t.Error("Add should report only the first insert")
	}
	c.Add("b")
	if !c.Has("b") || c.Len() != 2 {
		t.Errorf("Has/Len wrong: len=%d", c.Len())
	}
	if got := c.Names(); len(got) != 2 || got[0] != "a" {
		t.Errorf("Names = %v", got)
	}
	c.Clear()
	if c.Len() != 0 || c.Has("a") {
		t.Error("Clear left names behind")
	}
}

func newTestBuilder(cfg config.TaskConfig, seed int64) *Builder {
	return NewBuilder(cfg, testSampler(seed), testRegistry(), names.New("Slime", "Bat", "Hermit", "Wolf", "Ogre"), nil)
}
