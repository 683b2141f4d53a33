package leaderboard

import (
	"context"
	"testing"

	"mathquest/core"
)

func TestSkipListBasic(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)
	s.Update(core.UserID("b"), 20)
	s.Update(core.UserID("c"), 15)
	top := s.TopN(3)
	if len(top) != 3 || top[0].User != core.UserID("b") || top[1].User != core.UserID("c") || top[2].User != core.UserID("a") {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update(core.UserID("a"), 25)
	top = s.TopN(1)
	if top[0].User != core.UserID("a") {
		t.Fatalf("top should be a, got %#v", top)
	}
}

func TestSkipListRankAndRemove(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("a"), 10)
	s.Update(core.UserID("b"), 20)
	s.Update(core.UserID("c"), 15)

	if rank, ok := s.Rank("a"); !ok || rank != 3 {
		t.Fatalf("rank(a) = %d, %v, want 3", rank, ok)
	}
	if rank, ok := s.Rank("b"); !ok || rank != 1 {
		t.Fatalf("rank(b) = %d, %v, want 1", rank, ok)
	}
	if _, ok := s.Rank("zz"); ok {
		t.Fatal("rank for unknown user")
	}

	s.Remove("b")
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if rank, ok := s.Rank("c"); !ok || rank != 1 {
		t.Fatalf("rank(c) after removal = %d, %v, want 1", rank, ok)
	}
}

func TestSkipListTieBreaksByUser(t *testing.T) {
	s := NewSkipList()
	s.Update(core.UserID("zoe"), 10)
	s.Update(core.UserID("amy"), 10)
	top := s.TopN(2)
	if top[0].User != core.UserID("amy") || top[1].User != core.UserID("zoe") {
		t.Fatalf("tie order: %#v", top)
	}
}

func TestTrackerFoldsEvents(t *testing.T) {
	tr := NewTracker()
	ctx := context.Background()

	tr.OnEvent(ctx, core.NewCoinsChanged("kid-1", 70, 70, core.TxReward))
	tr.OnEvent(ctx, core.NewCoinsChanged("kid-2", 30, 30, core.TxReward))
	tr.OnEvent(ctx, core.NewBadgeAwarded("kid-2", "first-steps"))
	tr.OnEvent(ctx, core.NewBadgeAwarded("kid-2", "speed-demon"))
	tr.OnEvent(ctx, core.NewStreakUpdated("kid-1", 4))

	coins, _ := tr.Board(MetricCoins)
	if top := coins.TopN(1); len(top) != 1 || top[0].User != "kid-1" || top[0].Score != 70 {
		t.Fatalf("coins top: %#v", top)
	}
	badges, _ := tr.Board(MetricBadges)
	if entry, ok := badges.Get("kid-2"); !ok || entry.Score != 2 {
		t.Fatalf("badges(kid-2) = %#v, %v", entry, ok)
	}
	streaks, _ := tr.Board(MetricStreaks)
	if entry, ok := streaks.Get("kid-1"); !ok || entry.Score != 4 {
		t.Fatalf("streaks(kid-1) = %#v, %v", entry, ok)
	}
}

func TestTrackerSeed(t *testing.T) {
	tr := NewTracker()
	tr.Seed(core.UserProfile{UserID: "kid-1", Coins: 120, BadgeCount: 3, ConsecutiveDays: 5})

	coins, _ := tr.Board(MetricCoins)
	if entry, ok := coins.Get("kid-1"); !ok || entry.Score != 120 {
		t.Fatalf("coins seed: %#v, %v", entry, ok)
	}
	badges, _ := tr.Board(MetricBadges)
	if entry, ok := badges.Get("kid-1"); !ok || entry.Score != 3 {
		t.Fatalf("badges seed: %#v, %v", entry, ok)
	}
}
