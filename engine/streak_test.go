package engine

import (
	"context"
	"testing"
	"time"

	"mathquest/core"
)

func TestStreakAdvancesOnlyAcrossAdjacentDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.CheckGameAchievements(ctx, "kid-1", perfectGame(core.GameAddition))
	if err != nil {
		t.Fatalf("day 1: %v", err)
	}
	if res.ConsecutiveDays != 1 {
		t.Fatalf("day 1 streak = %d, want 1", res.ConsecutiveDays)
	}

	env.now = env.now.AddDate(0, 0, 1)
	res, err = env.svc.CheckGameAchievements(ctx, "kid-1", perfectGame(core.GameSubtraction))
	if err != nil {
		t.Fatalf("day 2: %v", err)
	}
	if res.ConsecutiveDays != 2 {
		t.Fatalf("day 2 streak = %d, want 2", res.ConsecutiveDays)
	}

	// second game the same day keeps the count
	env.now = env.now.Add(3 * time.Hour)
	res, err = env.svc.CheckGameAchievements(ctx, "kid-1", perfectGame(core.GameSubtraction))
	if err != nil {
		t.Fatalf("day 2 again: %v", err)
	}
	if res.ConsecutiveDays != 2 {
		t.Fatalf("same-day streak = %d, want 2", res.ConsecutiveDays)
	}

	// a skipped day resets
	env.now = env.now.AddDate(0, 0, 3)
	res, err = env.svc.CheckGameAchievements(ctx, "kid-1", perfectGame(core.GameAddition))
	if err != nil {
		t.Fatalf("after gap: %v", err)
	}
	if res.ConsecutiveDays != 1 {
		t.Fatalf("streak after gap = %d, want 1", res.ConsecutiveDays)
	}
}

func TestSevenDayStreakAwardsBadgeAndBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var last AchievementResult
	for day := 0; day < 7; day++ {
		if day > 0 {
			env.now = env.now.AddDate(0, 0, 1)
		}
		res, err := env.svc.CheckGameAchievements(ctx, "kid-1", perfectGame(core.GameAddition))
		if err != nil {
			t.Fatalf("day %d: %v", day+1, err)
		}
		last = res
	}

	if last.ConsecutiveDays != 7 {
		t.Fatalf("streak = %d, want 7", last.ConsecutiveDays)
	}
	if !contains(last.NewBadges, "week-warrior") {
		t.Fatalf("week-warrior not awarded on day 7: %v", last.NewBadges)
	}

	history, err := env.svc.TransactionHistory(ctx, "kid-1")
	if err != nil {
		t.Fatalf("TransactionHistory: %v", err)
	}
	var streakBonuses int
	for _, tx := range history {
		if tx.Type == core.TxStreakBonus {
			streakBonuses++
		}
	}
	if streakBonuses != 1 {
		t.Fatalf("streak bonus paid %d times, want 1", streakBonuses)
	}
}
