package service

import (
	"sync"
	"time"

	"github.com/taroverse/engagebot/internal/model"
)

// Quota tracks per-user daily draw allowances. State is in-memory by
// design: losing it on restart only regains a user an extra draw, which
// is acceptable, and keeps the ledger free of throwaway counters.
type Quota struct {
	mu        sync.Mutex
	allowance map[model.Capability]int
	states    map[int64]*quotaState
	now       func() time.Time
}

type quotaState struct {
	date string // UTC calendar date of the last reset
	used map[model.Capability]int
}

func NewQuota(cardPerDay, dicePerDay int) *Quota {
	return &Quota{
		allowance: map[model.Capability]int{
			model.CapabilityCard: cardPerDay,
			model.CapabilityDice: dicePerDay,
		},
		states: make(map[int64]*quotaState),
		now:    time.Now,
	}
}

// Remaining reports how many uses of the capability the user has left
// today. Counters are normalized to the current UTC date before the
// read, so a stale state never shows yesterday's exhausted count.
func (q *Quota) Remaining(telegramID int64, capability model.Capability) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	state := q.normalized(telegramID)
	left := q.allowance[capability] - state.used[capability]
	if left < 0 {
		return 0
	}
	return left
}

// Consume uses one unit of the capability. It returns false, without
// mutating state, when today's allowance is already exhausted.
func (q *Quota) Consume(telegramID int64, capability model.Capability) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	state := q.normalized(telegramID)
	if state.used[capability] >= q.allowance[capability] {
		return false
	}
	state.used[capability]++
	return true
}

// ResetAll clears every user's counters (admin action).
func (q *Quota) ResetAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.states = make(map[int64]*quotaState)
}

// normalized returns the user's state, reset to zero if the stored date
// is not today's UTC date. Callers must hold q.mu.
func (q *Quota) normalized(telegramID int64) *quotaState {
	today := q.now().UTC().Format(time.DateOnly)

	state, ok := q.states[telegramID]
	if !ok {
		state = &quotaState{date: today, used: make(map[model.Capability]int)}
		q.states[telegramID] = state
		return state
	}

	if state.date != today {
		state.date = today
		state.used = make(map[model.Capability]int)
	}

	return state
}
