package dungeon

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

// Placement is what the host needs after entering a dungeon map.
type Placement struct {
	MapID int              `json:"map_id"`
	Map   *hostmap.MapData `json:"map"`
	Spawn maze.Point       `json:"spawn"`

	// DisplayX and DisplayY put the spawn tile at the screen center.
	DisplayX int `json:"display_x"`
	DisplayY int `json:"display_y"`

	Cached bool `json:"cached"`
}

// Generator builds dungeon layouts from template maps.
type Generator struct {
	cfg   config.DungeonConfig
	store hostmap.Store
	cache *Cache
	log   *slog.Logger

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewGenerator creates a generator reading templates from store. A nil cache
// gets a fresh one.
func NewGenerator(cfg config.DungeonConfig, store hostmap.Store, cache *Cache, rng *rand.Rand) *Generator {
	if cache == nil {
		cache = NewCache()
	}
	return &Generator{
		cfg:   cfg,
		store: store,
		cache: cache,
		rng:   rng,
		log:   logger.With("dungeon"),
	}
}

// Cache returns the layout cache.
func (g *Generator) Cache() *Cache {
	return g.cache
}

// Generate returns the layout for mapID, building a new maze when no fresh
// layout is cached. The template's first three tiles pick the tileset.
func (g *Generator) Generate(mapID int) (*Placement, error) {
	layout, hit, err := g.cache.GetOrGenerate(mapID, g.cfg.TTL.Duration, func() (*Layout, error) {
		return g.build(mapID)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		g.log.Debug("Reusing cached dungeon", "map_id", mapID)
	}

	return &Placement{
		MapID:    mapID,
		Map:      layout.Map,
		Spawn:    layout.Spawn,
		DisplayX: layout.Spawn.X - layout.Map.Width/2,
		DisplayY: layout.Spawn.Y - layout.Map.Height/2,
		Cached:   hit,
	}, nil
}

// Invalidate forces the next Generate for mapID to build a new maze.
func (g *Generator) Invalidate(mapID int) {
	g.cache.Invalidate(mapID)
	g.log.Debug("Invalidated dungeon", "map_id", mapID)
}

func (g *Generator) build(mapID int) (*Layout, error) {
	tmpl, err := g.store.LoadMap(mapID)
	if err != nil {
		return nil, err
	}
	tiles, err := TemplateTiles(tmpl)
	if err != nil {
		return nil, fmt.Errorf("map %d: %w", mapID, err)
	}

	g.mu.Lock()
	m, err := maze.Generate(g.cfg.Width, g.cfg.Height, g.rng)
	if err != nil {
		g.mu.Unlock()
		return nil, fmt.Errorf("map %d: %w", mapID, err)
	}
	RasterizeInto(tmpl, m, tiles, g.cfg.FreeZone)
	spawn, err := PickSpawn(tmpl, g.cfg.FreeZone, g.rng)
	g.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("map %d: %w", mapID, err)
	}

	if !Locate(tmpl, g.cfg.TransferCode, spawn) {
		g.log.Warn("No transfer event on dungeon map", "map_id", mapID, "code", g.cfg.TransferCode)
	}

	g.log.Info("Generated dungeon",
		"map_id", mapID,
		"cells", fmt.Sprintf("%dx%d", m.Width, m.Height),
		"spawn_x", spawn.X,
		"spawn_y", spawn.Y)

	return &Layout{Map: tmpl, Spawn: spawn}, nil
}

// CachedStore serves fresh dungeon layouts in place of their templates, so a
// host reloading a dungeon map sees the generated tiles.
type CachedStore struct {
	hostmap.Store
	cache *Cache
}

// NewCachedStore wraps inner with cache.
func NewCachedStore(inner hostmap.Store, cache *Cache) *CachedStore {
	return &CachedStore{Store: inner, cache: cache}
}

func (s *CachedStore) LoadMap(id int) (*hostmap.MapData, error) {
	if l, ok := s.cache.Lookup(id); ok {
		return l.Map, nil
	}
	return s.Store.LoadMap(id)
}
