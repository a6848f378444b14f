// Package party exposes the party data the quest engine samples against.
package party

import "sync"

// Member is an active party member.
type Member struct {
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
}

// State is the read side of the host party.
type State interface {
	BattleMembers() []Member
}

// MeanLevel is the average level of the battle members, or 0 for an empty
// party.
func MeanLevel(s State) float64 {
	if s == nil {
		return 0
	}
	members := s.BattleMembers()
	if len(members) == 0 {
		return 0
	}
	total := 0
	for _, m := range members {
		total += m.Level
	}
	return float64(total) / float64(len(members))
}

// Party is a host-independent party with a gold purse.
type Party struct {
	mu      sync.RWMutex
	members []Member
	gold    int
}

// New returns a party with the given members and no gold.
func New(members ...Member) *Party {
	return &Party{members: append([]Member(nil), members...)}
}

func (p *Party) BattleMembers() []Member {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Member(nil), p.members...)
}

// SetMembers replaces the roster, e.g. when the host reports a party change.
func (p *Party) SetMembers(members []Member) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members = append([]Member(nil), members...)
}

// GainGold adds amount to the purse. Negative amounts are ignored.
func (p *Party) GainGold(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gold += amount
}

// Gold returns the purse balance.
func (p *Party) Gold() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.gold
}
