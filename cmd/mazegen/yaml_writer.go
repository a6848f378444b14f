package main

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

// LayoutYAML is the dump of one generated dungeon.
type LayoutYAML struct {
	Seed     int64           `yaml:"seed"`
	Width    int             `yaml:"width"`
	Height   int             `yaml:"height"`
	Passages int             `yaml:"passages"`
	Start    maze.Point      `yaml:"start"`
	Spawn    maze.Point      `yaml:"spawn"`
	Tiles    dungeon.TileIDs `yaml:"tiles"`
	Grid     GridYAML        `yaml:"grid"`
}

// GridYAML is the painted tile grid drawn one string per row:
// '#' wall, '.' ground, ' ' roof, '@' spawn.
type GridYAML struct {
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Rows   []string `yaml:"rows"`
}

func newLayoutYAML(m *maze.Maze, grid *hostmap.MapData, tiles dungeon.TileIDs, spawn maze.Point, seed int64) *LayoutYAML {
	return &LayoutYAML{
		Seed:     seed,
		Width:    m.Width,
		Height:   m.Height,
		Passages: m.Passages(),
		Start:    m.Start,
		Spawn:    spawn,
		Tiles:    tiles,
		Grid: GridYAML{
			Width:  grid.Width,
			Height: grid.Height,
			Rows:   drawRows(grid, tiles, spawn),
		},
	}
}

func drawRows(grid *hostmap.MapData, tiles dungeon.TileIDs, spawn maze.Point) []string {
	rows := make([]string, grid.Height)
	var b strings.Builder
	for y := 0; y < grid.Height; y++ {
		b.Reset()
		for x := 0; x < grid.Width; x++ {
			switch id := grid.Tile(x, y, dungeon.LayerTiles); {
			case x == spawn.X && y == spawn.Y:
				b.WriteByte('@')
			case id == tiles.Wall:
				b.WriteByte('#')
			case id == tiles.Ground:
				b.WriteByte('.')
			default:
				b.WriteByte(' ')
			}
		}
		rows[y] = b.String()
	}
	return rows
}

func (l *LayoutYAML) write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return err
	}
	return enc.Close()
}
