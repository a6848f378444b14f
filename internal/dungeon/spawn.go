package dungeon

import (
	"errors"
	"math/rand"

	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

var (
	// ErrNoWalkableTile is returned when the zone layer has no free tile.
	ErrNoWalkableTile = errors.New("no walkable tile in zone layer")

	// ErrTemplateTooSmall is returned when a template map has fewer than
	// three tiles to read the tileset from.
	ErrTemplateTooSmall = errors.New("template map has fewer than 3 tiles")
)

// FindZone returns the flat indexes (within one layer) of every tile on the
// zone layer carrying the given marker.
func FindZone(m *hostmap.MapData, zone int) []int {
	var tiles []int
	for i, v := range m.Layer(LayerZone) {
		if v == zone {
			tiles = append(tiles, i)
		}
	}
	return tiles
}

// PickSpawn chooses a tile of the zone uniformly at random.
func PickSpawn(m *hostmap.MapData, zone int, rng *rand.Rand) (maze.Point, error) {
	tiles := FindZone(m, zone)
	if len(tiles) == 0 {
		return maze.Point{}, ErrNoWalkableTile
	}
	idx := tiles[rng.Intn(len(tiles))]
	return maze.Point{X: idx % m.Width, Y: idx / m.Width}, nil
}

// Locate moves the first event running transferCode onto p. It reports
// whether such an event existed.
func Locate(m *hostmap.MapData, transferCode int, p maze.Point) bool {
	evt := m.FindEventWithCode(transferCode)
	if evt == nil {
		return false
	}
	evt.X = p.X
	evt.Y = p.Y
	return true
}
