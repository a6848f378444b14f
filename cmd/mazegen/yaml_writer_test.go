package main

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

func TestLayoutYAML(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	m, err := maze.Generate(4, 3, rng)
	if err != nil {
		t.Fatal(err)
	}
	tiles := dungeon.TileIDs{Roof: 1, Wall: 2, Ground: 3}
	grid := dungeon.Rasterize(m, tiles, 1)
	spawn, err := dungeon.PickSpawn(grid, 1, rng)
	if err != nil {
		t.Fatal(err)
	}

	doc := newLayoutYAML(m, grid, tiles, spawn, 8)
	if doc.Passages != 4*3-1 {
		t.Errorf("Passages = %d, want %d", doc.Passages, 4*3-1)
	}
	if len(doc.Grid.Rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(doc.Grid.Rows))
	}
	for i, row := range doc.Grid.Rows {
		if len(row) != 10 {
			t.Errorf("row %d has %d columns, want 10", i, len(row))
		}
	}
	if doc.Grid.Rows[spawn.Y][spawn.X] != '@' {
		t.Errorf("spawn not drawn at %+v", spawn)
	}
	if !strings.Contains(doc.Grid.Rows[0], "#") {
		t.Error("top row should carry walls")
	}

	var buf bytes.Buffer
	if err := doc.write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back LayoutYAML
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if back.Spawn != spawn || back.Tiles != tiles || len(back.Grid.Rows) != 8 {
		t.Errorf("decoded = %+v", back)
	}
}
