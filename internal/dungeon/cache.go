package dungeon

import (
	"sync"
	"time"

	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

// DefaultTTL is how long a layout is reused when no TTL is configured.
const DefaultTTL = time.Hour

// Layout is a generated dungeon: the painted map and where the party lands.
type Layout struct {
	Map   *hostmap.MapData `json:"map"`
	Spawn maze.Point       `json:"locale"`
}

// Clone returns a deep copy.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	return &Layout{Map: l.Map.Clone(), Spawn: l.Spawn}
}

// Entry is a cached layout and its expiry.
type Entry struct {
	Layout    *Layout   `json:"layout"`
	ExpiresAt time.Time `json:"expire"`
}

// Cache keeps at most one layout per map id. Concurrent callers for the same
// map id are serialized so a layout is generated once.
type Cache struct {
	mu      sync.Mutex
	entries map[int]*Entry
	locks   map[int]*sync.Mutex
	now     func() time.Time
}

// NewCache creates an empty cache using the wall clock.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[int]*Entry),
		locks:   make(map[int]*sync.Mutex),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Cache) keyLock(mapID int) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk, ok := c.locks[mapID]
	if !ok {
		lk = &sync.Mutex{}
		c.locks[mapID] = lk
	}
	return lk
}

// GetOrGenerate returns the cached layout for mapID while it is fresh, or
// calls generate and stores its result for ttl. A non-positive ttl uses
// DefaultTTL. The bool result reports a cache hit. The caller owns the
// returned layout.
func (c *Cache) GetOrGenerate(mapID int, ttl time.Duration, generate func() (*Layout, error)) (*Layout, bool, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	lk := c.keyLock(mapID)
	lk.Lock()
	defer lk.Unlock()

	if l, ok := c.Lookup(mapID); ok {
		return l, true, nil
	}

	l, err := generate()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[mapID] = &Entry{Layout: l.Clone(), ExpiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return l, false, nil
}

// Lookup returns a copy of the fresh layout for mapID, if any.
func (c *Cache) Lookup(mapID int) (*Layout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[mapID]
	if !ok || !c.now().Before(e.ExpiresAt) {
		return nil, false
	}
	return e.Layout.Clone(), true
}

// Invalidate drops the layout for mapID.
func (c *Cache) Invalidate(mapID int) {
	c.mu.Lock()
	delete(c.entries, mapID)
	c.mu.Unlock()
}

// Prune drops every expired entry and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for id, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot copies the fresh entries for persistence.
func (c *Cache) Snapshot() map[int]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	out := make(map[int]Entry, len(c.entries))
	for id, e := range c.entries {
		if now.Before(e.ExpiresAt) {
			out[id] = Entry{Layout: e.Layout.Clone(), ExpiresAt: e.ExpiresAt}
		}
	}
	return out
}

// Restore replaces the cache contents with entries.
func (c *Cache) Restore(entries map[int]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]*Entry, len(entries))
	for id, e := range entries {
		if e.Layout == nil || e.Layout.Map == nil {
			continue
		}
		c.entries[id] = &Entry{Layout: e.Layout.Clone(), ExpiresAt: e.ExpiresAt}
	}
}
