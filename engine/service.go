package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"mathquest/core"
	"mathquest/store"
)

// Service is the reward engine facade. It wires the award, ledger,
// streak, avatar and notification components over one gateway and
// exposes the operations the game UI calls.
type Service struct {
	gw    store.Gateway
	bus   *EventBus
	log   *slog.Logger
	clock Clock
	rates RewardRates

	awards *AwardManager
	ledger *CoinLedger
	streak *StreakTracker
	avatar *AvatarTracker
	notifs *Notifications
}

// NewService builds a Service over the given gateway and bus. Both are
// required.
func NewService(gw store.Gateway, bus *EventBus, log *slog.Logger, clock Clock, rates RewardRates) *Service {
	if gw == nil {
		panic("engine: nil gateway")
	}
	if bus == nil {
		panic("engine: nil event bus")
	}
	if log == nil {
		log = slog.Default()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now() }
	}

	notifs := NewNotifications(gw, clock)
	awards := NewAwardManager(gw, notifs, bus, log, clock)
	ledger := NewCoinLedger(gw, bus, clock)
	s := &Service{
		gw:     gw,
		bus:    bus,
		log:    log,
		clock:  clock,
		rates:  rates,
		awards: awards,
		ledger: ledger,
		streak: NewStreakTracker(gw, bus, clock),
		avatar: NewAvatarTracker(gw, ledger, notifs, bus, log, clock),
		notifs: notifs,
	}
	return s
}

// AchievementResult summarizes everything a completed game unlocked.
type AchievementResult struct {
	NewBadges       []string         `json:"new_badges"`
	NewTrophies     []string         `json:"new_trophies"`
	LevelUp         bool             `json:"level_up"`
	Level           core.AvatarLevel `json:"level"`
	AvatarProgress  int              `json:"avatar_progress"`
	CoinsEarned     int64            `json:"coins_earned"`
	ConsecutiveDays int              `json:"consecutive_days"`
}

// CheckGameAchievements evaluates a just-completed game: it records the
// game, advances the streak, credits coins, runs every badge and trophy
// requirement against the updated history, and refreshes the avatar
// level. Evaluation is deterministic: catalogs are scanned in id order,
// and trophies see badges earned earlier in the same call.
func (s *Service) CheckGameAchievements(ctx context.Context, userID core.UserID, result core.GameResult) (AchievementResult, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return AchievementResult{}, err
	}
	if err := result.Validate(); err != nil {
		return AchievementResult{}, fmt.Errorf("invalid game result: %w", err)
	}

	streak, newDay, err := s.streak.UpdateConsecutiveDays(ctx, userID)
	if err != nil {
		return AchievementResult{}, err
	}

	now := s.clock().UTC()
	if _, err := s.gw.Add(ctx, store.CollectionGames, core.GameRecord{
		UserID:         userID,
		GameType:       result.GameType,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		TimeSpent:      result.TimeSpent,
		PlayedAt:       now,
	}); err != nil {
		return AchievementResult{}, err
	}

	coinsEarned, err := s.creditGameCoins(ctx, userID, result, streak, newDay)
	if err != nil {
		return AchievementResult{}, err
	}

	snap, _, err := progressSnapshot(ctx, s.gw, userID)
	if err != nil {
		return AchievementResult{}, err
	}

	res := AchievementResult{ConsecutiveDays: streak, CoinsEarned: coinsEarned}

	var badges []core.Badge
	if err := s.gw.List(ctx, store.CollectionBadges, &badges); err != nil {
		return AchievementResult{}, err
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	for _, b := range badges {
		if b.Requirements.IsZero() || snap.HasBadge(b.ID) {
			continue
		}
		if !b.Requirements.SatisfiedBy(result, snap) {
			continue
		}
		awarded, err := s.awards.TryAwardBadge(ctx, userID, b.ID)
		if err != nil {
			return AchievementResult{}, err
		}
		if awarded {
			res.NewBadges = append(res.NewBadges, b.ID)
			snap.EarnedBadges[b.ID] = struct{}{}
		}
	}

	var trophies []core.Trophy
	if err := s.gw.List(ctx, store.CollectionTrophies, &trophies); err != nil {
		return AchievementResult{}, err
	}
	sort.Slice(trophies, func(i, j int) bool { return trophies[i].ID < trophies[j].ID })
	for _, t := range trophies {
		if t.Requirements.IsZero() || snap.HasTrophy(t.ID) {
			continue
		}
		if !t.Requirements.SatisfiedBy(snap) {
			continue
		}
		awarded, err := s.awards.TryAwardTrophy(ctx, userID, t.ID)
		if err != nil {
			return AchievementResult{}, err
		}
		if awarded {
			res.NewTrophies = append(res.NewTrophies, t.ID)
			snap.EarnedTrophies[t.ID] = struct{}{}
		}
	}

	level, changed, err := s.avatar.Refresh(ctx, userID)
	if err != nil {
		return AchievementResult{}, err
	}
	res.Level = level
	res.LevelUp = changed
	res.AvatarProgress = core.LevelProgress(len(snap.EarnedBadges))

	return res, nil
}

// creditGameCoins pays out the per-game coin rewards. The streak bonus
// only fires on the first game of the day that completes the bonus
// streak, so repeated play never double-credits it.
func (s *Service) creditGameCoins(ctx context.Context, userID core.UserID, result core.GameResult, streak int, newDay bool) (int64, error) {
	var total int64

	if earned := int64(result.Score) * s.rates.CoinsPerCorrectAnswer; earned > 0 {
		if _, err := s.ledger.UpdateCoins(ctx, userID, earned, core.TxCorrectAnswer,
			fmt.Sprintf("%d correct answers", result.Score)); err != nil {
			return total, err
		}
		total += earned
	}
	if result.Perfect() && s.rates.PerfectGameBonus > 0 {
		if _, err := s.ledger.UpdateCoins(ctx, userID, s.rates.PerfectGameBonus, core.TxPerfectGame,
			fmt.Sprintf("Perfect %s game", result.GameType)); err != nil {
			return total, err
		}
		total += s.rates.PerfectGameBonus
	}
	if newDay && s.rates.DailyBonusCoins > 0 {
		if _, err := s.ledger.UpdateCoins(ctx, userID, s.rates.DailyBonusCoins, core.TxDailyBonus,
			"First game of the day"); err != nil {
			return total, err
		}
		total += s.rates.DailyBonusCoins
	}
	if newDay && streak == streakBonusDay && s.rates.StreakBonusCoins > 0 {
		if _, err := s.ledger.UpdateCoins(ctx, userID, s.rates.StreakBonusCoins, core.TxStreakBonus,
			fmt.Sprintf("%d-day streak", streak)); err != nil {
			return total, err
		}
		total += s.rates.StreakBonusCoins
	}
	return total, nil
}

// UpdateCoins applies a direct balance change. Debits that would go
// negative return ErrInsufficientFunds.
func (s *Service) UpdateCoins(ctx context.Context, userID core.UserID, amount int64, txType core.TransactionType, description string) (int64, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return 0, err
	}
	return s.ledger.UpdateCoins(ctx, userID, amount, txType, description)
}

// Balance returns the user's coin balance.
func (s *Service) Balance(ctx context.Context, userID core.UserID) (int64, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return 0, err
	}
	return s.ledger.Balance(ctx, userID)
}

// TransactionHistory returns the user's coin transactions, newest first.
func (s *Service) TransactionHistory(ctx context.Context, userID core.UserID) ([]core.CoinTransaction, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, userID)
}

// PurchaseAvatarItem buys a shop item for the user.
func (s *Service) PurchaseAvatarItem(ctx context.Context, userID core.UserID, itemID string) (bool, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return false, err
	}
	return s.avatar.Purchase(ctx, userID, itemID)
}

// EquipAvatarItem equips an owned item, displacing the slot's previous
// occupant.
func (s *Service) EquipAvatarItem(ctx context.Context, userID core.UserID, itemID string) (bool, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return false, err
	}
	return s.avatar.Equip(ctx, userID, itemID)
}

// ListPendingNotifications returns the user's unseen reward
// notifications, most recent first.
func (s *Service) ListPendingNotifications(ctx context.Context, userID core.UserID) ([]core.RewardNotification, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.notifs.ListPending(ctx, userID)
}

// MarkNotificationsSeen acknowledges the given notifications.
func (s *Service) MarkNotificationsSeen(ctx context.Context, ids []string) error {
	return s.notifs.MarkSeen(ctx, ids)
}

// Profile returns the user's aggregate document, creating it on first
// contact.
func (s *Service) Profile(ctx context.Context, userID core.UserID) (core.UserProfile, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return core.UserProfile{}, err
	}
	return loadProfile(ctx, s.gw, userID, s.clock().UTC())
}

// Stats returns the user's aggregate game statistics.
func (s *Service) Stats(ctx context.Context, userID core.UserID) (core.UserGameStats, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return core.UserGameStats{}, err
	}
	_, stats, err := progressSnapshot(ctx, s.gw, userID)
	return stats, err
}

// Badges returns the user's earned badges.
func (s *Service) Badges(ctx context.Context, userID core.UserID) ([]core.UserBadge, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.awards.Badges(ctx, userID)
}

// Trophies returns the user's earned trophies.
func (s *Service) Trophies(ctx context.Context, userID core.UserID) ([]core.UserTrophy, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.awards.Trophies(ctx, userID)
}

// AvatarItems returns the user's owned avatar items.
func (s *Service) AvatarItems(ctx context.Context, userID core.UserID) ([]core.UserAvatarItem, error) {
	userID, err := core.NormalizeUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.avatar.Items(ctx, userID)
}

// Subscribe registers a handler for a domain event type and returns an
// unsubscribe func.
func (s *Service) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

// Close stops the event bus workers.
func (s *Service) Close() {
	s.bus.Close()
}
