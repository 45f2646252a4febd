package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/action"
)

// Entry is one recorded dispatch result.
type Entry struct {
	ActionID uuid.UUID      `json:"action_id"`
	Type     action.Type    `json:"type"`
	Outcome  action.Outcome `json:"outcome"`
}

// Ledger is the per-run record of dispatch outcomes, keyed by action id
// and retained in insertion order. It lives for one run and is the only
// channel through which later actions observe earlier results.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[uuid.UUID]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byID: make(map[uuid.UUID]int)}
}

// Record stores an outcome for an action. Re-dispatching the same action
// (via a branch) overwrites its entry in place.
func (l *Ledger) Record(actionID uuid.UUID, t action.Type, out action.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i, ok := l.byID[actionID]; ok {
		l.entries[i] = Entry{ActionID: actionID, Type: t, Outcome: out}
		return
	}
	l.byID[actionID] = len(l.entries)
	l.entries = append(l.entries, Entry{ActionID: actionID, Type: t, Outcome: out})
}

// Get returns the recorded outcome for an action, if any.
func (l *Ledger) Get(actionID uuid.UUID) (action.Outcome, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[actionID]
	if !ok {
		return action.Outcome{}, false
	}
	return l.entries[i].Outcome, true
}

// Size returns the number of recorded entries.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of all entries in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FirstAttack scans the whole ledger in insertion order for the first
// attack-kind outcome and returns its hit flag. The scan deliberately
// covers every entry of the run, not just the immediately preceding
// action; attack_hit/attack_miss conditions are defined against this.
func (l *Ledger) FirstAttack() (hit *bool, found bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.Outcome.Kind == action.OutcomeAttack {
			return e.Outcome.Hit, true
		}
	}
	return nil, false
}
