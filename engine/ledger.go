package engine

import (
	"context"
	"sort"

	"mathquest/core"
	"mathquest/store"
)

// CoinLedger owns the coin balance and its append-only transaction
// history. Every balance mutation, credit or debit, routes through
// UpdateCoins so the transaction log reconciles with the stored
// balance.
type CoinLedger struct {
	gw    store.Gateway
	bus   *EventBus
	clock Clock
}

func NewCoinLedger(gw store.Gateway, bus *EventBus, clock Clock) *CoinLedger {
	return &CoinLedger{gw: gw, bus: bus, clock: clock}
}

// UpdateCoins applies a signed amount to the user's balance and appends
// a ledger row. A debit that would drive the balance negative returns
// ErrInsufficientFunds and writes nothing.
func (l *CoinLedger) UpdateCoins(ctx context.Context, userID core.UserID, amount int64, txType core.TransactionType, description string) (int64, error) {
	now := l.clock().UTC()
	profile, err := loadProfile(ctx, l.gw, userID, now)
	if err != nil {
		return 0, err
	}
	next, err := core.AddSafe(profile.Coins, amount)
	if err != nil {
		return profile.Coins, err
	}
	if next < 0 {
		return profile.Coins, ErrInsufficientFunds
	}
	if err := l.gw.Update(ctx, store.CollectionUsers, string(userID), map[string]any{
		"coins":   next,
		"updated": now,
	}); err != nil {
		return profile.Coins, err
	}
	if _, err := l.gw.Add(ctx, store.CollectionTransactions, core.CoinTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		CreatedAt:   now,
	}); err != nil {
		return next, err
	}
	l.bus.Publish(ctx, core.NewCoinsChanged(userID, amount, next, txType))
	return next, nil
}

// Balance returns the user's current coin balance.
func (l *CoinLedger) Balance(ctx context.Context, userID core.UserID) (int64, error) {
	profile, err := loadProfile(ctx, l.gw, userID, l.clock().UTC())
	if err != nil {
		return 0, err
	}
	return profile.Coins, nil
}

// History returns the user's transactions, most recent first.
func (l *CoinLedger) History(ctx context.Context, userID core.UserID) ([]core.CoinTransaction, error) {
	var txs []core.CoinTransaction
	if err := l.gw.Query(ctx, store.CollectionTransactions, "user_id", userID, &txs); err != nil {
		return nil, err
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs, nil
}
