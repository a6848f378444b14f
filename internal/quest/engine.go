package quest

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
	"github.com/tychio/da-rmmv-plugins/internal/names"
	"github.com/tychio/da-rmmv-plugins/internal/party"
)

// Party is the host party as the engine uses it: members to measure and a
// purse to pay rewards into.
type Party interface {
	party.State
	GainGold(amount int)
}

// EnterFunc is called when the party enters the active quest's map.
type EnterFunc func(mapID int, m *hostmap.MapData)

// EngineState is everything the engine persists in a save.
type EngineState struct {
	Progress ProgressState `json:"progress"`
	Names    []string      `json:"names"`
}

// Engine is the quest service: it generates quests for the party, tracks
// the accepted one and pays out rewards.
type Engine struct {
	mu sync.Mutex

	builder *Builder
	tracker *Tracker
	party   Party
	emitter hostmap.Emitter
	troopID int
	onEnter EnterFunc
	log     *slog.Logger
}

// NewEngine wires a builder and tracker sharing one random source.
func NewEngine(cfg config.TaskConfig, maps *MapRegistry, lib *names.Library, p Party, rng *rand.Rand) *Engine {
	sampler := NewSampler(rng)
	builder := NewBuilder(cfg, sampler, maps, lib, nil)
	return &Engine{
		builder: builder,
		tracker: NewTracker(cfg, sampler, builder),
		party:   p,
		emitter: hostmap.NewEncounterEmitter(),
		troopID: cfg.TroopID,
		log:     logger.With("quest"),
	}
}

// SetEmitter replaces the encounter event emitter.
func (e *Engine) SetEmitter(em hostmap.Emitter) {
	e.mu.Lock()
	e.emitter = em
	e.mu.Unlock()
}

// Tracker returns the progress tracker.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// Generate builds count quests for the party's current mean level.
func (e *Engine) Generate(count int) ([]*Quest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Generate(count, party.MeanLevel(e.party))
}

// Accept starts q if the party's tier allows it.
func (e *Engine) Accept(q *Quest) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Accept(q)
}

// NextStep advances the active quest.
func (e *Engine) NextStep() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.NextStep()
}

// Finish closes the active quest and pays the gold reward to the party.
func (e *Engine) Finish(force bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	gold, err := e.tracker.Finish(force)
	if err != nil {
		return 0, err
	}
	if e.party != nil {
		e.party.GainGold(gold)
	}
	return gold, nil
}

// Abandon drops the active quest.
func (e *Engine) Abandon() Grade {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Abandon()
}

// Current returns the active quest, or nil.
func (e *Engine) Current() *Quest {
	return e.tracker.Current()
}

// Grade returns the party's standing.
func (e *Engine) Grade() Grade {
	return e.tracker.Grade()
}

// ClearCache forgets generated names so they may be produced again.
func (e *Engine) ClearCache() {
	e.builder.Cache().Clear()
	e.log.Debug("Cleared quest name cache")
}

// OnEnter registers the map-entry callback. A nil fn is ignored.
func (e *Engine) OnEnter(fn EnterFunc) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.onEnter = fn
	e.mu.Unlock()
}

// EnterMap reports that the party entered mapID. The callback fires when a
// quest is in progress and targets that map. It reports whether it fired.
func (e *Engine) EnterMap(mapID int, m *hostmap.MapData) bool {
	e.mu.Lock()
	fn := e.onEnter
	e.mu.Unlock()

	q := e.tracker.Current()
	if fn == nil || q == nil || q.Status != StatusDoing || q.Map.MapID != mapID {
		return false
	}
	fn(mapID, m)
	return true
}

// SpawnEnemy places an encounter event named after the active quest's
// target at (x, y) with the given id and returns it. Nothing is placed when
// an event of that name is already on the map; the event is then nil.
func (e *Engine) SpawnEnemy(m *hostmap.MapData, id, x, y int, cb hostmap.Callbacks) (*hostmap.Event, error) {
	q := e.tracker.Current()
	if q == nil {
		return nil, ErrNoActiveQuest
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	name := q.Map.Target
	if m.FindEventByName(name) != nil {
		return nil, nil
	}
	evt := e.emitter.Emit(hostmap.EncounterSpec{
		ID:        id,
		Name:      name,
		X:         x,
		Y:         y,
		TroopID:   e.troopID,
		Callbacks: cb,
	})
	m.PutEvent(evt)
	e.log.Debug("Spawned quest enemy", "name", name, "event_id", id, "x", x, "y", y)
	return evt, nil
}

// Snapshot returns the engine state for a save.
func (e *Engine) Snapshot() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EngineState{
		Progress: e.tracker.Snapshot(),
		Names:    e.builder.Cache().Names(),
	}
}

// Restore loads a saved engine state.
func (e *Engine) Restore(s EngineState) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.tracker.Restore(s.Progress); err != nil {
		return err
	}
	cache := e.builder.Cache()
	cache.Clear()
	for _, n := range s.Names {
		cache.Add(n)
	}
	return nil
}
