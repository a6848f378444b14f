package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/tychio/da-rmmv-plugins/internal/quest"
)

func TestWriteTableAlignsWideNames(t *testing.T) {
	quests := []*quest.Quest{
		{
			Name:  "[G]defeat 史莱姆",
			Level: quest.Level{Label: "G"},
			Type:  quest.TypeEnemy,
			Steps: 2,
			Map:   quest.Location{MapID: 3, MapName: "洞窟", Target: "史莱姆"},
			Bonus: quest.Bonus{Increase: 120, Deduct: 40},
		},
		{
			Name:  "[F]find Herb",
			Level: quest.Level{Label: "F"},
			Type:  quest.TypeItem,
			Steps: 1,
			Map:   quest.Location{MapID: 4, MapName: "Forest", Target: "Herb"},
			Bonus: quest.Bonus{Increase: 300, Deduct: 100},
		},
	}

	var buf bytes.Buffer
	if err := writeTable(&buf, quests); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}

	// The RANK column starts at the same cell offset on every line.
	col := -1
	for _, line := range lines {
		var prefix string
		if strings.HasPrefix(line, "NAME") {
			prefix = line[:strings.Index(line, "RANK")]
		} else {
			idx := strings.Index(line, "  G  ")
			if idx < 0 {
				idx = strings.Index(line, "  F  ")
			}
			if idx < 0 {
				t.Fatalf("rank not found in %q", line)
			}
			prefix = line[:idx+2]
		}
		w := runewidth.StringWidth(prefix)
		if col == -1 {
			col = w
		} else if w != col {
			t.Errorf("rank column at cell %d, want %d in %q", w, col, line)
		}
	}

	if !strings.HasSuffix(lines[1], "+120/-40") {
		t.Errorf("reward cell missing: %q", lines[1])
	}
}
