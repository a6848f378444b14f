// Package dungeon turns carved mazes into host tile maps and caches them per
// map id.
package dungeon

import (
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

// Layers populated by the rasterizer.
const (
	LayerTiles = 0
	LayerZone  = 5
)

// TileIDs are the host tile ids painted on layer 0.
type TileIDs struct {
	Roof   int `json:"roof" yaml:"roof"`
	Wall   int `json:"wall" yaml:"wall"`
	Ground int `json:"ground" yaml:"ground"`
}

// GridSize returns the tile dimensions for a maze of the given cell size.
func GridSize(mazeWidth, mazeHeight int) (int, int) {
	return 2*mazeWidth + 2, 2*mazeHeight + 2
}

// Rasterize paints m onto a fresh map.
func Rasterize(m *maze.Maze, tiles TileIDs, freeZone int) *hostmap.MapData {
	dst := &hostmap.MapData{}
	RasterizeInto(dst, m, tiles, freeZone)
	return dst
}

// RasterizeInto resizes dst to fit m and repaints it. Events and unknown host
// fields on dst are left alone.
//
// Each cell becomes a 2x2 block: the top-left tile is wall if the cell has a
// north or west wall, top-right follows the north wall, bottom-left follows
// the west wall and bottom-right is always ground. Every ground tile is
// marked freeZone on the zone layer. A wall row is then drawn under the last
// cell row. Tiles no block touches keep the roof id.
func RasterizeInto(dst *hostmap.MapData, m *maze.Maze, tiles TileIDs, freeZone int) {
	width, height := GridSize(m.Width, m.Height)
	dst.Resize(width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst.SetTile(x, y, LayerTiles, tiles.Roof)
		}
	}

	paint := func(x, y int, wall bool) {
		if wall {
			dst.SetTile(x, y, LayerTiles, tiles.Wall)
			return
		}
		dst.SetTile(x, y, LayerTiles, tiles.Ground)
		dst.SetTile(x, y, LayerZone, freeZone)
	}

	for cy := 0; cy < m.Height; cy++ {
		for cx := 0; cx < m.Width; cx++ {
			cell := m.Grid[cy][cx]
			bx, by := cx*2, cy*2
			paint(bx, by, cell.NorthWall || cell.WestWall)
			paint(bx+1, by, cell.NorthWall)
			paint(bx, by+1, cell.WestWall)
			paint(bx+1, by+1, false)
		}
	}

	// Duplicates the implicit south boundary; kept so existing tilesets
	// autotile the bottom edge the same way.
	southRow := m.Height * 2
	for cx := 0; cx < m.Width; cx++ {
		dst.SetTile(cx*2, southRow, LayerTiles, tiles.Wall)
		dst.SetTile(cx*2+1, southRow, LayerTiles, tiles.Wall)
	}
}

// TemplateTiles reads the roof, wall and ground ids from the first three
// tiles of a template map.
func TemplateTiles(m *hostmap.MapData) (TileIDs, error) {
	if m == nil || len(m.Data) < 3 {
		return TileIDs{}, ErrTemplateTooSmall
	}
	return TileIDs{Roof: m.Data[0], Wall: m.Data[1], Ground: m.Data[2]}, nil
}
