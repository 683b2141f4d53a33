package engine

import (
	"context"
	"errors"
	"log/slog"

	"mathquest/core"
	"mathquest/store"
)

// AwardManager grants badges and trophies idempotently. The link
// records in user_badges/user_trophies are the dedup authority; the
// profile counters are projections maintained alongside.
type AwardManager struct {
	gw     store.Gateway
	notifs *Notifications
	bus    *EventBus
	log    *slog.Logger
	clock  Clock
}

func NewAwardManager(gw store.Gateway, notifs *Notifications, bus *EventBus, log *slog.Logger, clock Clock) *AwardManager {
	return &AwardManager{gw: gw, notifs: notifs, bus: bus, log: log, clock: clock}
}

// TryAwardBadge grants badgeID to the user unless already held. Returns
// true only when a new award was recorded. An unknown badge id is
// logged and skipped rather than failing the surrounding evaluation.
func (m *AwardManager) TryAwardBadge(ctx context.Context, userID core.UserID, badgeID string) (bool, error) {
	var existing []core.UserBadge
	if err := m.gw.Query(ctx, store.CollectionUserBadges, "user_id", userID, &existing); err != nil {
		return false, err
	}
	for _, ub := range existing {
		if ub.BadgeID == badgeID {
			return false, nil
		}
	}

	var badge core.Badge
	if err := m.gw.Get(ctx, store.CollectionBadges, badgeID, &badge); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.log.Warn("badge missing from catalog", "badge_id", badgeID)
			return false, nil
		}
		return false, err
	}

	now := m.clock().UTC()
	if _, err := m.gw.Add(ctx, store.CollectionUserBadges, core.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		EarnedAt:  now,
		Displayed: true,
	}); err != nil {
		return false, err
	}

	profile, err := loadProfile(ctx, m.gw, userID, now)
	if err != nil {
		return false, err
	}
	if err := m.gw.Update(ctx, store.CollectionUsers, string(userID), map[string]any{
		"badge_count": profile.BadgeCount + 1,
		"updated":     now,
	}); err != nil {
		return false, err
	}

	if err := m.notifs.Create(ctx, core.RewardNotification{
		UserID:      userID,
		Type:        core.NotifyBadge,
		ItemID:      badge.ID,
		Name:        badge.Name,
		Description: badge.Description,
		Image:       badge.Icon,
		EarnedAt:    now,
	}); err != nil {
		return false, err
	}

	m.bus.Publish(ctx, core.NewBadgeAwarded(userID, badgeID))
	m.log.Info("badge awarded", "user_id", userID, "badge_id", badgeID)
	return true, nil
}

// TryAwardTrophy grants trophyID to the user unless already held.
func (m *AwardManager) TryAwardTrophy(ctx context.Context, userID core.UserID, trophyID string) (bool, error) {
	var existing []core.UserTrophy
	if err := m.gw.Query(ctx, store.CollectionUserTrophies, "user_id", userID, &existing); err != nil {
		return false, err
	}
	for _, ut := range existing {
		if ut.TrophyID == trophyID {
			return false, nil
		}
	}

	var trophy core.Trophy
	if err := m.gw.Get(ctx, store.CollectionTrophies, trophyID, &trophy); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.log.Warn("trophy missing from catalog", "trophy_id", trophyID)
			return false, nil
		}
		return false, err
	}

	now := m.clock().UTC()
	if _, err := m.gw.Add(ctx, store.CollectionUserTrophies, core.UserTrophy{
		UserID:    userID,
		TrophyID:  trophyID,
		EarnedAt:  now,
		Displayed: true,
	}); err != nil {
		return false, err
	}

	profile, err := loadProfile(ctx, m.gw, userID, now)
	if err != nil {
		return false, err
	}
	if err := m.gw.Update(ctx, store.CollectionUsers, string(userID), map[string]any{
		"trophy_count": profile.TrophyCount + 1,
		"updated":      now,
	}); err != nil {
		return false, err
	}

	if err := m.notifs.Create(ctx, core.RewardNotification{
		UserID:      userID,
		Type:        core.NotifyTrophy,
		ItemID:      trophy.ID,
		Name:        trophy.Name,
		Description: trophy.Description,
		Image:       trophy.Image,
		Rarity:      trophy.Rarity,
		EarnedAt:    now,
	}); err != nil {
		return false, err
	}

	m.bus.Publish(ctx, core.NewTrophyAwarded(userID, trophyID))
	m.log.Info("trophy awarded", "user_id", userID, "trophy_id", trophyID)
	return true, nil
}

// Badges returns the user's earned badge links.
func (m *AwardManager) Badges(ctx context.Context, userID core.UserID) ([]core.UserBadge, error) {
	var out []core.UserBadge
	if err := m.gw.Query(ctx, store.CollectionUserBadges, "user_id", userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Trophies returns the user's earned trophy links.
func (m *AwardManager) Trophies(ctx context.Context, userID core.UserID) ([]core.UserTrophy, error) {
	var out []core.UserTrophy
	if err := m.gw.Query(ctx, store.CollectionUserTrophies, "user_id", userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}
