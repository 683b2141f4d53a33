package leaderboard

import (
	"context"
	"sync"

	"mathquest/core"
)

// Metric names a ranking dimension.
type Metric string

const (
	MetricCoins   Metric = "coins"
	MetricBadges  Metric = "badges"
	MetricStreaks Metric = "streaks"
)

// Metrics lists the tracked rankings.
var Metrics = [3]Metric{MetricCoins, MetricBadges, MetricStreaks}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// Tracker keeps one board per metric, updated from reward events. It
// is rebuilt from the store on startup by replaying profiles, so the
// boards are a cache, not a source of truth.
type Tracker struct {
	mu     sync.RWMutex
	boards map[Metric]Board
}

func NewTracker() *Tracker {
	t := &Tracker{boards: make(map[Metric]Board, len(Metrics))}
	for _, m := range Metrics {
		t.boards[m] = NewSkipList()
	}
	return t
}

// Board returns the ranking for a metric.
func (t *Tracker) Board(m Metric) (Board, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	b, ok := t.boards[m]
	return b, ok
}

// Seed primes the boards from a user profile, used when warming the
// tracker from stored state.
func (t *Tracker) Seed(profile core.UserProfile) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.boards[MetricCoins].Update(profile.UserID, profile.Coins)
	t.boards[MetricBadges].Update(profile.UserID, int64(profile.BadgeCount))
	t.boards[MetricStreaks].Update(profile.UserID, int64(profile.ConsecutiveDays))
}

// OnEvent folds a reward event into the boards. Badge awards increment
// the badge board; coin and streak events carry the new absolute value.
func (t *Tracker) OnEvent(_ context.Context, ev core.Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	switch ev.Type {
	case core.EventCoinsChanged:
		t.boards[MetricCoins].Update(ev.UserID, ev.Balance)
	case core.EventStreakUpdated:
		t.boards[MetricStreaks].Update(ev.UserID, int64(ev.Streak))
	case core.EventBadgeAwarded:
		board := t.boards[MetricBadges]
		entry, _ := board.Get(ev.UserID)
		board.Update(ev.UserID, entry.Score+1)
	}
}
