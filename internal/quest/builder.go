package quest

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
	"github.com/tychio/da-rmmv-plugins/internal/names"
)

// NameCache remembers generated quest names until cleared.
type NameCache struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewNameCache creates an empty cache.
func NewNameCache() *NameCache {
	return &NameCache{names: make(map[string]struct{})}
}

// Add records name and reports whether it was new.
func (c *NameCache) Add(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.names[name]; ok {
		return false
	}
	c.names[name] = struct{}{}
	return true
}

// Has reports whether name was generated before.
func (c *NameCache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.names[name]
	return ok
}

// Clear forgets every name.
func (c *NameCache) Clear() {
	c.mu.Lock()
	c.names = make(map[string]struct{})
	c.mu.Unlock()
}

// Len returns the number of remembered names.
func (c *NameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Names returns the remembered names sorted.
func (c *NameCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Render substitutes ${level}, ${map}, ${type} and ${target} in template.
// Any other text, including unknown placeholders, is kept as written.
func Render(template, level, mapName, typeLabel, target string) string {
	return strings.NewReplacer(
		"${level}", level,
		"${map}", mapName,
		"${type}", typeLabel,
		"${target}", target,
	).Replace(template)
}

// Builder assembles quests from sampled parts.
type Builder struct {
	cfg     config.TaskConfig
	sampler *Sampler
	maps    *MapRegistry
	names   *names.Library
	cache   *NameCache
	log     *slog.Logger
}

// NewBuilder creates a builder. A nil cache gets a fresh one.
func NewBuilder(cfg config.TaskConfig, sampler *Sampler, maps *MapRegistry, lib *names.Library, cache *NameCache) *Builder {
	if cache == nil {
		cache = NewNameCache()
	}
	return &Builder{
		cfg:     cfg,
		sampler: sampler,
		maps:    maps,
		names:   lib,
		cache:   cache,
		log:     logger.With("quest"),
	}
}

// Cache returns the name cache used for deduplication.
func (b *Builder) Cache() *NameCache {
	return b.cache
}

// TypeLabel returns the configured display text for t.
func (b *Builder) TypeLabel(t Type) string {
	for i, known := range AllTypes() {
		if known == t && i < len(b.cfg.Types) {
			return b.cfg.Types[i]
		}
	}
	return string(t)
}

// Where picks a quest map and a target on it.
func (b *Builder) Where() (Location, error) {
	info, err := b.maps.sample(b.sampler)
	if err != nil {
		return Location{}, err
	}
	var target string
	b.sampler.Locked(func(rng *rand.Rand) {
		target, err = b.names.Sample(rng)
	})
	if err != nil {
		return Location{}, err
	}
	return Location{
		MapID:   info.ID,
		MapName: b.maps.DisplayName(info.Name),
		Target:  target,
	}, nil
}

// Generate builds count quests for a party of the given strength, highest
// level first. Names already in the cache are rerolled up to the configured
// retry limit.
func (b *Builder) Generate(count int, strength float64) ([]*Quest, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	quests := make([]*Quest, 0, count)
	for i := 0; i < count; i++ {
		q, err := b.unique(strength)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}

	sort.SliceStable(quests, func(i, j int) bool {
		return quests[i].Level.Index > quests[j].Level.Index
	})

	b.log.Debug("Generated quests", "count", len(quests), "strength", strength)
	return quests, nil
}

func (b *Builder) unique(strength float64) (*Quest, error) {
	retries := b.cfg.MaxNameRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 0; attempt < retries; attempt++ {
		q, err := b.build(strength)
		if err != nil {
			return nil, err
		}
		if b.cache.Add(q.Name) {
			return q, nil
		}
		b.log.Debug("Quest name collision", "name", q.Name, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, retries)
}

func (b *Builder) build(strength float64) (*Quest, error) {
	levelIdx, err := b.sampler.Pick(len(b.cfg.Levels), b.cfg.LevelDamp, b.cfg.LevelScope, b.cfg.MaxPartyLevel, strength)
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	types := AllTypes()
	typeIdx, err := b.sampler.Pick(len(types), b.cfg.TypeDamp, b.cfg.TypeScope, b.cfg.MaxPartyLevel, strength)
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}

	level := Level{Index: levelIdx, Label: b.cfg.Levels[levelIdx], Rate: 1}
	bonus := b.sampler.Bonus(b.cfg.Credits, levelIdx)
	steps := b.sampler.Steps(levelIdx)

	loc, err := b.Where()
	if err != nil {
		return nil, err
	}

	template := b.cfg.NameTemplates[b.sampler.Intn(len(b.cfg.NameTemplates))]
	return &Quest{
		Name:  Render(template, level.Label, loc.MapName, b.TypeLabel(types[typeIdx]), loc.Target),
		Level: level,
		Type:  types[typeIdx],
		Steps: steps,
		Map:   loc,
		Bonus: bonus,
	}, nil
}
