// Package quest generates procedural tasks from the party's strength and
// tracks the single task the party has accepted.
package quest

import "errors"

var (
	// ErrQuestActive is returned by Accept while another quest is in progress.
	ErrQuestActive = errors.New("a quest is already active")

	// ErrNoActiveQuest is returned when an operation needs an active quest.
	ErrNoActiveQuest = errors.New("no active quest")

	// ErrQuestNotDone is returned by an unforced Finish before the last step.
	ErrQuestNotDone = errors.New("quest is not done")

	// ErrInvalidTransition covers calls that do not apply to the current
	// status, such as advancing a quest that is already done.
	ErrInvalidTransition = errors.New("invalid quest transition")

	// ErrGenerationExhausted is returned when no unused quest name could be
	// produced within the retry limit.
	ErrGenerationExhausted = errors.New("quest name generation exhausted")

	// ErrNoQuestMaps is returned when no map carries the quest marker.
	ErrNoQuestMaps = errors.New("no quest maps available")

	// ErrInvalidCount is returned when a negative number of quests is requested.
	ErrInvalidCount = errors.New("quest count must not be negative")

	// ErrEmptyList is returned when sampling from an empty list.
	ErrEmptyList = errors.New("cannot sample from an empty list")
)

// Type is what the party has to do at the target.
type Type string

const (
	TypeItem  Type = "1_item"  // find an item
	TypeEnemy Type = "2_enemy" // defeat an enemy
	TypeNPC   Type = "3_npc"   // talk to someone
)

// AllTypes returns the quest types in label order.
func AllTypes() []Type {
	return []Type{TypeItem, TypeEnemy, TypeNPC}
}

// Status is the state of an accepted quest.
type Status string

const (
	StatusDoing Status = "1_doing"
	StatusDone  Status = "2_done"
)

// Level is a quest's rank. Rate grows as the quest is advanced and promotes
// the quest a rank once it passes the configured threshold.
type Level struct {
	Index int     `json:"index" yaml:"index"`
	Label string  `json:"level" yaml:"label"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// Location is where the current step takes place.
type Location struct {
	MapID   int    `json:"id" yaml:"map_id"`
	MapName string `json:"name" yaml:"map"`
	Target  string `json:"target" yaml:"target"`
}

// Bonus is the credit change applied on finish or abandon.
type Bonus struct {
	Increase int `json:"increase" yaml:"increase"`
	Deduct   int `json:"deduct" yaml:"deduct"`
}

// Quest is a generated task. Status is empty until the quest is accepted.
type Quest struct {
	Name   string   `json:"name" yaml:"name"`
	Level  Level    `json:"level" yaml:"level"`
	Type   Type     `json:"type" yaml:"type"`
	Steps  int      `json:"steps" yaml:"steps"`
	Map    Location `json:"map" yaml:"map"`
	Bonus  Bonus    `json:"bonus" yaml:"bonus"`
	Status Status   `json:"status,omitempty" yaml:"status,omitempty"`
}

// Clone returns a copy of q. Quests hold no reference fields.
func (q *Quest) Clone() *Quest {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}

// IsDone reports whether every step has been completed.
func (q *Quest) IsDone() bool {
	return q.Status == StatusDone
}

// Grade is the party's standing on the credit ladder.
type Grade struct {
	Credits int    `json:"credits" yaml:"credits"`
	Tier    int    `json:"level" yaml:"tier"`
	Label   string `json:"levelStr" yaml:"label"`
}
