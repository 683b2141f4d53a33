package core

import "time"

// EventType enumerates reward domain events.
type EventType string

const (
	EventBadgeAwarded  EventType = "badge_awarded"
	EventTrophyAwarded EventType = "trophy_awarded"
	EventLevelUp       EventType = "level_up"
	EventCoinsChanged  EventType = "coins_changed"
	EventStreakUpdated EventType = "streak_updated"
	EventItemPurchased EventType = "item_purchased"
	EventItemEquipped  EventType = "item_equipped"
)

// Event represents an immutable domain event.
type Event struct {
	Type     EventType       `json:"type"`
	Time     time.Time       `json:"time"`
	UserID   UserID          `json:"user_id"`
	ItemID   string          `json:"item_id,omitempty"`
	Level    AvatarLevel     `json:"level,omitempty"`
	Amount   int64           `json:"amount,omitempty"`
	Balance  int64           `json:"balance,omitempty"`
	TxType   TransactionType `json:"tx_type,omitempty"`
	Streak   int             `json:"streak,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

func NewBadgeAwarded(user UserID, badgeID string) Event {
	return Event{Type: EventBadgeAwarded, Time: time.Now().UTC(), UserID: user, ItemID: badgeID}
}

func NewTrophyAwarded(user UserID, trophyID string) Event {
	return Event{Type: EventTrophyAwarded, Time: time.Now().UTC(), UserID: user, ItemID: trophyID}
}

func NewLevelUp(user UserID, level AvatarLevel) Event {
	return Event{Type: EventLevelUp, Time: time.Now().UTC(), UserID: user, Level: level}
}

func NewCoinsChanged(user UserID, amount, balance int64, txType TransactionType) Event {
	return Event{Type: EventCoinsChanged, Time: time.Now().UTC(), UserID: user, Amount: amount, Balance: balance, TxType: txType}
}

func NewStreakUpdated(user UserID, streak int) Event {
	return Event{Type: EventStreakUpdated, Time: time.Now().UTC(), UserID: user, Streak: streak}
}

func NewItemPurchased(user UserID, itemID string, cost int64) Event {
	return Event{Type: EventItemPurchased, Time: time.Now().UTC(), UserID: user, ItemID: itemID, Amount: -cost}
}

func NewItemEquipped(user UserID, itemID string) Event {
	return Event{Type: EventItemEquipped, Time: time.Now().UTC(), UserID: user, ItemID: itemID}
}
