package engine

import (
	"context"
	"errors"
	"sort"

	"mathquest/core"
	"mathquest/store"
)

// Notifications manages the reward notification queue. Records are
// created at award time, surfaced unseen-first to the UI, flipped to
// seen exactly once, and kept afterwards as an audit trail.
type Notifications struct {
	gw    store.Gateway
	clock Clock
}

func NewNotifications(gw store.Gateway, clock Clock) *Notifications {
	return &Notifications{gw: gw, clock: clock}
}

// Create appends an unseen notification for the user.
func (n *Notifications) Create(ctx context.Context, notif core.RewardNotification) error {
	if notif.EarnedAt.IsZero() {
		notif.EarnedAt = n.clock().UTC()
	}
	notif.Seen = false
	_, err := n.gw.Add(ctx, store.CollectionNotifications, notif)
	return err
}

// ListPending returns the user's unseen notifications, most recent
// first. The UI presents them one at a time and acknowledges each via
// MarkSeen before advancing.
func (n *Notifications) ListPending(ctx context.Context, userID core.UserID) ([]core.RewardNotification, error) {
	var all []core.RewardNotification
	if err := n.gw.Query(ctx, store.CollectionNotifications, "user_id", userID, &all); err != nil {
		return nil, err
	}
	pending := all[:0]
	for _, notif := range all {
		if !notif.Seen {
			pending = append(pending, notif)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].EarnedAt.Equal(pending[j].EarnedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].EarnedAt.After(pending[j].EarnedAt)
	})
	return pending, nil
}

// MarkSeen flips the given notifications to seen. Unknown ids are
// skipped so a stale UI acknowledgement cannot fail the batch.
func (n *Notifications) MarkSeen(ctx context.Context, ids []string) error {
	for _, id := range ids {
		err := n.gw.Update(ctx, store.CollectionNotifications, id, map[string]any{"seen": true})
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}
