package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mathquest/core"
	"mathquest/store"
)

// AvatarTracker manages avatar progression and the cosmetic item shop:
// level recomputation from badge count, purchases gated by coins and
// unlock requirements, and slot-exclusive equipping.
type AvatarTracker struct {
	gw     store.Gateway
	ledger *CoinLedger
	notifs *Notifications
	bus    *EventBus
	log    *slog.Logger
	clock  Clock
}

func NewAvatarTracker(gw store.Gateway, ledger *CoinLedger, notifs *Notifications, bus *EventBus, log *slog.Logger, clock Clock) *AvatarTracker {
	return &AvatarTracker{gw: gw, ledger: ledger, notifs: notifs, bus: bus, log: log, clock: clock}
}

// Refresh recomputes the user's avatar level from their badge count.
// Returns the current level and whether it changed. A level change
// produces a notification and a level_up event.
func (a *AvatarTracker) Refresh(ctx context.Context, userID core.UserID) (core.AvatarLevel, bool, error) {
	now := a.clock().UTC()
	profile, err := loadProfile(ctx, a.gw, userID, now)
	if err != nil {
		return "", false, err
	}

	var earned []core.UserBadge
	if err := a.gw.Query(ctx, store.CollectionUserBadges, "user_id", userID, &earned); err != nil {
		return "", false, err
	}
	level := core.LevelForBadges(len(earned))
	if level == profile.AvatarLevel {
		return level, false, nil
	}

	if err := a.gw.Update(ctx, store.CollectionUsers, string(userID), map[string]any{
		"avatar_level": level,
		"updated":      now,
	}); err != nil {
		return "", false, err
	}

	if level.Rank() > profile.AvatarLevel.Rank() {
		if err := a.notifs.Create(ctx, core.RewardNotification{
			UserID:      userID,
			Type:        core.NotifyLevel,
			ItemID:      string(level),
			Name:        fmt.Sprintf("Avatar level up: %s", level),
			Description: fmt.Sprintf("Your avatar reached the %s level!", level),
			EarnedAt:    now,
		}); err != nil {
			return level, true, err
		}
		a.bus.Publish(ctx, core.NewLevelUp(userID, level))
		a.log.Info("avatar level up", "user_id", userID, "level", level)
	}
	return level, true, nil
}

// Purchase buys the item for the user. Returns false without error when
// the purchase is declined: already owned, unlock requirement not met,
// or insufficient coins. The coin debit and the ownership record are
// only written for an accepted purchase.
func (a *AvatarTracker) Purchase(ctx context.Context, userID core.UserID, itemID string) (bool, error) {
	if err := core.ValidateItemID(itemID); err != nil {
		return false, err
	}

	var item core.AvatarItem
	if err := a.gw.Get(ctx, store.CollectionAvatarItems, itemID, &item); err != nil {
		return false, err
	}

	owned, _, err := a.ownedItem(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if owned {
		return false, nil
	}

	if item.UnlockRequirement != nil {
		snap, stats, err := progressSnapshot(ctx, a.gw, userID)
		if err != nil {
			return false, err
		}
		if !item.UnlockRequirement.SatisfiedBy(snap, stats.GamesByType()) {
			a.log.Info("purchase declined, requirement not met", "user_id", userID, "item_id", itemID)
			return false, nil
		}
	}

	if _, err := a.ledger.UpdateCoins(ctx, userID, -item.Cost, core.TxPurchase, fmt.Sprintf("Purchased %s", item.Name)); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			a.log.Info("purchase declined, insufficient coins", "user_id", userID, "item_id", itemID)
			return false, nil
		}
		return false, err
	}

	now := a.clock().UTC()
	if _, err := a.gw.Add(ctx, store.CollectionUserItems, core.UserAvatarItem{
		UserID:      userID,
		ItemID:      itemID,
		PurchasedAt: now,
	}); err != nil {
		return false, err
	}

	a.bus.Publish(ctx, core.NewItemPurchased(userID, itemID, item.Cost))
	a.log.Info("item purchased", "user_id", userID, "item_id", itemID, "cost", item.Cost)
	return true, nil
}

// Equip makes itemID the equipped item for its slot, unequipping any
// other owned item occupying the same slot. Returns false without
// error when the user does not own the item.
func (a *AvatarTracker) Equip(ctx context.Context, userID core.UserID, itemID string) (bool, error) {
	if err := core.ValidateItemID(itemID); err != nil {
		return false, err
	}

	var item core.AvatarItem
	if err := a.gw.Get(ctx, store.CollectionAvatarItems, itemID, &item); err != nil {
		return false, err
	}

	owned, target, err := a.ownedItem(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if !owned {
		return false, nil
	}

	var holdings []core.UserAvatarItem
	if err := a.gw.Query(ctx, store.CollectionUserItems, "user_id", userID, &holdings); err != nil {
		return false, err
	}
	for _, h := range holdings {
		if !h.Equipped || h.ItemID == itemID {
			continue
		}
		var other core.AvatarItem
		if err := a.gw.Get(ctx, store.CollectionAvatarItems, h.ItemID, &other); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return false, err
		}
		if other.Slot != item.Slot {
			continue
		}
		if err := a.gw.Update(ctx, store.CollectionUserItems, h.ID, map[string]any{"equipped": false}); err != nil {
			return false, err
		}
	}

	if err := a.gw.Update(ctx, store.CollectionUserItems, target.ID, map[string]any{"equipped": true}); err != nil {
		return false, err
	}

	now := a.clock().UTC()
	profile, err := loadProfile(ctx, a.gw, userID, now)
	if err != nil {
		return false, err
	}
	if profile.EquippedItems == nil {
		profile.EquippedItems = make(map[core.AvatarSlot]string)
	}
	profile.EquippedItems[item.Slot] = itemID
	if err := a.gw.Update(ctx, store.CollectionUsers, string(userID), map[string]any{
		"equipped_items": profile.EquippedItems,
		"updated":        now,
	}); err != nil {
		return false, err
	}

	a.bus.Publish(ctx, core.NewItemEquipped(userID, itemID))
	return true, nil
}

// Items returns the user's owned items.
func (a *AvatarTracker) Items(ctx context.Context, userID core.UserID) ([]core.UserAvatarItem, error) {
	var out []core.UserAvatarItem
	if err := a.gw.Query(ctx, store.CollectionUserItems, "user_id", userID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AvatarTracker) ownedItem(ctx context.Context, userID core.UserID, itemID string) (bool, core.UserAvatarItem, error) {
	var holdings []core.UserAvatarItem
	if err := a.gw.Query(ctx, store.CollectionUserItems, "user_id", userID, &holdings); err != nil {
		return false, core.UserAvatarItem{}, err
	}
	for _, h := range holdings {
		if h.ItemID == itemID {
			return true, h, nil
		}
	}
	return false, core.UserAvatarItem{}, nil
}
