package engine

import (
	"context"
	"errors"
	"time"

	"mathquest/core"
	"mathquest/store"
)

// Clock supplies the current time. Injected so calendar-date logic
// (consecutive-day streaks) is testable.
type Clock func() time.Time

// ErrInsufficientFunds is returned when a debit would drive a coin
// balance negative. No partial write happens.
var ErrInsufficientFunds = errors.New("insufficient funds")

// RewardRates configures the coins credited for a completed game.
type RewardRates struct {
	CoinsPerCorrectAnswer int64 `json:"coins_per_correct_answer"`
	PerfectGameBonus      int64 `json:"perfect_game_bonus"`
	StreakBonusCoins      int64 `json:"streak_bonus_coins"`
	DailyBonusCoins       int64 `json:"daily_bonus_coins"`
}

// DefaultRewardRates returns the stock reward economy.
func DefaultRewardRates() RewardRates {
	return RewardRates{
		CoinsPerCorrectAnswer: 2,
		PerfectGameBonus:      20,
		StreakBonusCoins:      50,
		DailyBonusCoins:       10,
	}
}

// loadProfile fetches the user's aggregate document, bootstrapping a
// fresh one on first contact.
func loadProfile(ctx context.Context, gw store.Gateway, userID core.UserID, now time.Time) (core.UserProfile, error) {
	var profile core.UserProfile
	err := gw.Get(ctx, store.CollectionUsers, string(userID), &profile)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return core.UserProfile{}, err
	}
	profile = core.UserProfile{
		UserID:      userID,
		AvatarLevel: core.LevelNovice,
		Updated:     now,
	}
	if err := gw.Set(ctx, store.CollectionUsers, string(userID), profile); err != nil {
		return core.UserProfile{}, err
	}
	return profile, nil
}

// progressSnapshot assembles the cumulative reads the requirement
// predicates run against: the full game history, the earned-award sets,
// and the profile counters.
func progressSnapshot(ctx context.Context, gw store.Gateway, userID core.UserID) (core.ProgressSnapshot, core.UserGameStats, error) {
	var records []core.GameRecord
	if err := gw.Query(ctx, store.CollectionGames, "user_id", userID, &records); err != nil {
		return core.ProgressSnapshot{}, core.UserGameStats{}, err
	}
	stats := core.AggregateStats(records)

	var earnedBadges []core.UserBadge
	if err := gw.Query(ctx, store.CollectionUserBadges, "user_id", userID, &earnedBadges); err != nil {
		return core.ProgressSnapshot{}, core.UserGameStats{}, err
	}
	var earnedTrophies []core.UserTrophy
	if err := gw.Query(ctx, store.CollectionUserTrophies, "user_id", userID, &earnedTrophies); err != nil {
		return core.ProgressSnapshot{}, core.UserGameStats{}, err
	}

	var profile core.UserProfile
	if err := gw.Get(ctx, store.CollectionUsers, string(userID), &profile); err != nil && !errors.Is(err, store.ErrNotFound) {
		return core.ProgressSnapshot{}, core.UserGameStats{}, err
	}

	snap := core.ProgressSnapshot{
		GamesCompleted:  len(records),
		TotalScore:      stats.TotalCorrect,
		TotalQuestions:  stats.TotalQuestions,
		PerfectGames:    stats.PerfectGames,
		ConsecutiveDays: profile.ConsecutiveDays,
		CoinBalance:     profile.Coins,
		EarnedBadges:    make(map[string]struct{}, len(earnedBadges)),
		EarnedTrophies:  make(map[string]struct{}, len(earnedTrophies)),
	}
	for _, ub := range earnedBadges {
		snap.EarnedBadges[ub.BadgeID] = struct{}{}
	}
	for _, ut := range earnedTrophies {
		snap.EarnedTrophies[ut.TrophyID] = struct{}{}
	}
	return snap, stats, nil
}
