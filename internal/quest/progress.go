package quest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
)

// Locator picks the location of a quest's next step.
type Locator interface {
	Where() (Location, error)
}

// ProgressState is the serializable part of a Tracker.
type ProgressState struct {
	Quest   *Quest `json:"task"`
	Credits int    `json:"credits"`
	Tier    int    `json:"level"`
}

// Tracker follows the one quest the party has accepted and keeps the
// party's credits on the ladder.
type Tracker struct {
	mu sync.RWMutex

	levels    []string
	ladder    []int
	upRateMax float64
	sampler   *Sampler
	locator   Locator
	log       *slog.Logger

	quest   *Quest
	credits int
	tier    int
}

// NewTracker creates a tracker with no quest and zero credits.
func NewTracker(cfg config.TaskConfig, sampler *Sampler, locator Locator) *Tracker {
	t := &Tracker{
		levels:    append([]string(nil), cfg.Levels...),
		ladder:    append([]int(nil), cfg.Credits...),
		upRateMax: cfg.UpRateMax,
		sampler:   sampler,
		locator:   locator,
		log:       logger.With("quest"),
	}
	t.tier = TierFor(t.ladder, 0)
	return t
}

// TierFor returns the first ladder index whose threshold is above credits,
// or len(ladder) when credits reach every threshold.
func TierFor(ladder []int, credits int) int {
	for i, threshold := range ladder {
		if threshold > credits {
			return i
		}
	}
	return len(ladder)
}

// Accept makes q the active quest. It returns false without changing
// anything when the quest outranks the party's tier, and ErrQuestActive
// when a quest is already in progress. The tracker keeps its own copy.
func (t *Tracker) Accept(q *Quest) (bool, error) {
	if q == nil {
		return false, fmt.Errorf("%w: nil quest", ErrInvalidTransition)
	}
	if err := t.checkLevel(q); err != nil {
		return false, err
	}
	if q.Steps < 1 {
		return false, fmt.Errorf("%w: quest %q has %d steps", ErrInvalidTransition, q.Name, q.Steps)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quest != nil {
		t.log.Warn("Rejected quest, another is active", "name", q.Name, "active", t.quest.Name)
		return false, ErrQuestActive
	}
	if q.Level.Index > t.tier {
		t.log.Debug("Rejected quest above tier", "name", q.Name, "level", q.Level.Index, "tier", t.tier)
		return false, nil
	}

	t.quest = q.Clone()
	t.quest.Status = StatusDoing
	if t.quest.Level.Rate <= 0 {
		t.quest.Level.Rate = 1
	}
	t.log.Info("Accepted quest", "name", t.quest.Name, "steps", t.quest.Steps)
	return true, nil
}

// NextStep completes the current step. The quest may be promoted first.
// The quest becomes done on its last step; otherwise a new location is
// picked.
func (t *Tracker) NextStep() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quest == nil {
		return ErrNoActiveQuest
	}
	if t.quest.Status != StatusDoing {
		return fmt.Errorf("%w: quest %q is already done", ErrInvalidTransition, t.quest.Name)
	}

	next := t.quest.Map
	if t.quest.Steps > 1 && t.locator != nil {
		loc, err := t.locator.Where()
		if err != nil {
			return err
		}
		next = loc
	}

	t.promote()
	t.quest.Steps--
	if t.quest.Steps > 0 {
		t.quest.Map = next
		t.log.Debug("Quest advanced", "name", t.quest.Name, "steps_left", t.quest.Steps, "map_id", next.MapID)
		return nil
	}

	t.quest.Steps = 0
	t.quest.Status = StatusDone
	t.log.Info("Quest done", "name", t.quest.Name)
	return nil
}

// promote grows the quest's rate and moves it up a level once the rate
// passes upRateMax^4. The old label is swapped for the new one at its first
// occurrence in the name. Must be called with lock held.
func (t *Tracker) promote() {
	q := t.quest
	q.Level.Rate *= t.sampler.Uniform(1, t.upRateMax)
	if q.Level.Rate <= math.Pow(t.upRateMax, 4) {
		return
	}

	index := q.Level.Index + 1
	if index > len(t.levels)-1 {
		index = len(t.levels) - 1
	}
	if index < 0 {
		index = 0
	}
	oldLabel := q.Level.Label
	q.Level.Index = index
	q.Level.Label = t.levels[index]
	q.Name = strings.Replace(q.Name, oldLabel, q.Level.Label, 1)
	t.log.Debug("Quest promoted", "name", q.Name, "level", q.Level.Label, "rate", q.Level.Rate)
}

// checkLevel rejects quests whose rank is outside the configured levels.
func (t *Tracker) checkLevel(q *Quest) error {
	if q.Level.Index < 0 || q.Level.Index >= len(t.levels) {
		return fmt.Errorf("%w: quest %q level %d out of range [0, %d]",
			ErrInvalidTransition, q.Name, q.Level.Index, len(t.levels)-1)
	}
	return nil
}

// Finish closes a done quest, or any active quest when forced. It adds the
// quest's bonus credits and returns the gold reward.
func (t *Tracker) Finish(force bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quest == nil {
		return 0, ErrNoActiveQuest
	}
	if t.quest.Status != StatusDone && !force {
		return 0, ErrQuestNotDone
	}

	q := t.quest
	t.credits += q.Bonus.Increase
	t.tier = TierFor(t.ladder, t.credits)

	bonus := float64((q.Level.Index + 1) * 10)
	gold := round(q.Level.Rate * bonus * bonus)
	t.quest = nil

	t.log.Info("Quest finished",
		"name", q.Name,
		"forced", force,
		"gold", gold,
		"credits", t.credits,
		"tier", t.tier)
	return gold, nil
}

// Abandon drops the active quest and deducts its penalty, never going below
// zero credits. It returns the resulting grade.
func (t *Tracker) Abandon() Grade {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quest != nil {
		deduct := t.quest.Bonus.Deduct
		if deduct > t.credits {
			deduct = t.credits
		}
		t.credits -= deduct
		t.tier = TierFor(t.ladder, t.credits)
		t.log.Info("Quest abandoned", "name", t.quest.Name, "deducted", deduct, "credits", t.credits)
		t.quest = nil
	}
	return t.grade()
}

// Current returns a copy of the active quest, or nil.
func (t *Tracker) Current() *Quest {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.quest.Clone()
}

// Grade returns the party's credits and tier.
func (t *Tracker) Grade() Grade {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.grade()
}

// grade builds the Grade value. Past the top of the ladder the label stays
// at the last level. Must be called with lock held.
func (t *Tracker) grade() Grade {
	label := ""
	if len(t.levels) > 0 {
		i := t.tier
		if i > len(t.levels)-1 {
			i = len(t.levels) - 1
		}
		label = t.levels[i]
	}
	return Grade{Credits: t.credits, Tier: t.tier, Label: label}
}

// Snapshot returns a copy of the tracker state.
func (t *Tracker) Snapshot() ProgressState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return ProgressState{Quest: t.quest.Clone(), Credits: t.credits, Tier: t.tier}
}

// Restore replaces the tracker state. The tier is recomputed from credits.
func (t *Tracker) Restore(s ProgressState) error {
	if s.Credits < 0 {
		return fmt.Errorf("invalid progress state: negative credits %d", s.Credits)
	}
	if s.Quest != nil {
		switch s.Quest.Status {
		case StatusDoing:
			if s.Quest.Steps < 1 {
				return fmt.Errorf("invalid progress state: doing quest with %d steps", s.Quest.Steps)
			}
		case StatusDone:
		default:
			return fmt.Errorf("invalid progress state: quest status %q", s.Quest.Status)
		}
		if err := t.checkLevel(s.Quest); err != nil {
			return fmt.Errorf("invalid progress state: %w", err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.quest = s.Quest.Clone()
	t.credits = s.Credits
	t.tier = TierFor(t.ladder, t.credits)
	return nil
}

// ToJSON serializes the tracker for a save payload.
func (t *Tracker) ToJSON() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}

// FromJSON rebuilds tracker state from ToJSON output. Empty data
// leaves the tracker untouched.
func (t *Tracker) FromJSON(data []byte) error {
	if len(data) == 0 || string(data) == "{}" {
		return nil
	}
	var s ProgressState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse progress: %w", err)
	}
	return t.Restore(s)
}
