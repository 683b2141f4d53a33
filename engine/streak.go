package engine

import (
	"context"
	"time"

	"mathquest/core"
	"mathquest/store"
)

// streakBonusDay is the streak length that triggers the streak coin
// bonus. Streak-gated badges are evaluated by the regular badge pass.
const streakBonusDay = 7

// StreakTracker maintains the consecutive-day play counter. Days are
// compared as UTC calendar dates: playing again on the same date keeps
// the count, the next date extends it, anything else resets it to 1.
type StreakTracker struct {
	gw    store.Gateway
	bus   *EventBus
	clock Clock
}

func NewStreakTracker(gw store.Gateway, bus *EventBus, clock Clock) *StreakTracker {
	return &StreakTracker{gw: gw, bus: bus, clock: clock}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpdateConsecutiveDays advances the user's streak for a game played
// now. It returns the resulting streak length and whether this is the
// first game of a new calendar day.
func (s *StreakTracker) UpdateConsecutiveDays(ctx context.Context, userID core.UserID) (int, bool, error) {
	now := s.clock().UTC()
	profile, err := loadProfile(ctx, s.gw, userID, now)
	if err != nil {
		return 0, false, err
	}

	today := dateOf(now)
	streak := profile.ConsecutiveDays
	newDay := false
	switch {
	case profile.LastGamePlayed.IsZero():
		streak = 1
		newDay = true
	case dateOf(profile.LastGamePlayed).Equal(today):
		if streak == 0 {
			streak = 1
		}
	case dateOf(profile.LastGamePlayed).AddDate(0, 0, 1).Equal(today):
		streak++
		newDay = true
	default:
		streak = 1
		newDay = true
	}

	if err := s.gw.Update(ctx, store.CollectionUsers, string(userID), map[string]any{
		"consecutive_days": streak,
		"last_game_played": now,
		"updated":          now,
	}); err != nil {
		return 0, false, err
	}

	if newDay {
		s.bus.Publish(ctx, core.NewStreakUpdated(userID, streak))
	}
	return streak, newDay, nil
}
