package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// UserID uniquely identifies a player in the reward domain.
type UserID string

// GameType identifies one of the four arithmetic practice modes.
type GameType string

const (
	GameAddition       GameType = "addition"
	GameSubtraction    GameType = "subtraction"
	GameMultiplication GameType = "multiplication"
	GameDivision       GameType = "division"
)

// GameTypes lists the modes in their canonical order. Favorite-game
// tie-breaking follows this order.
var GameTypes = [4]GameType{GameAddition, GameSubtraction, GameMultiplication, GameDivision}

// Valid reports whether g is one of the four known modes.
func (g GameType) Valid() bool {
	for _, t := range GameTypes {
		if g == t {
			return true
		}
	}
	return false
}

// Rarity orders collectibles from common to legendary.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityVeryRare  Rarity = "very_rare"
	RarityLegendary Rarity = "legendary"
)

var rarityRank = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityVeryRare:  3,
	RarityLegendary: 4,
}

// Rank returns the rarity's position in the common..legendary ordering,
// or -1 for an unknown rarity.
func (r Rarity) Rank() int {
	if rank, ok := rarityRank[r]; ok {
		return rank
	}
	return -1
}

// AvatarSlot is one of the four equippable customization slots.
type AvatarSlot string

const (
	SlotHeadband   AvatarSlot = "headband"
	SlotOutfit     AvatarSlot = "outfit"
	SlotAccessory  AvatarSlot = "accessory"
	SlotBackground AvatarSlot = "background"
)

// AvatarSlots lists the slots in display order.
var AvatarSlots = [4]AvatarSlot{SlotHeadband, SlotOutfit, SlotAccessory, SlotBackground}

// Valid reports whether s names a known slot.
func (s AvatarSlot) Valid() bool {
	for _, slot := range AvatarSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// TransactionType classifies a coin ledger entry.
type TransactionType string

const (
	TxReward        TransactionType = "reward"
	TxDailyBonus    TransactionType = "daily_bonus"
	TxStreakBonus   TransactionType = "streak_bonus"
	TxPerfectGame   TransactionType = "perfect_game"
	TxPurchase      TransactionType = "purchase"
	TxCorrectAnswer TransactionType = "correct_answer"
)

// NotificationType classifies a reward notification.
type NotificationType string

const (
	NotifyBadge  NotificationType = "badge"
	NotifyTrophy NotificationType = "trophy"
	NotifyLevel  NotificationType = "level"
)

// AnswerOutcome records whether a single question was answered correctly.
type AnswerOutcome string

const (
	AnswerCorrect   AnswerOutcome = "correct"
	AnswerIncorrect AnswerOutcome = "incorrect"
)

// Badge is a catalog entry describing an unlockable achievement.
// Immutable once referenced by a UserBadge.
type Badge struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Icon         string            `json:"icon"`
	Requirements BadgeRequirements `json:"requirements"`
	CreatedAt    time.Time         `json:"created_at"`
}

// UserBadge links a user to an earned badge. At most one record exists
// per (user, badge) pair.
type UserBadge struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"user_id"`
	BadgeID   string    `json:"badge_id"`
	EarnedAt  time.Time `json:"earned_at"`
	Displayed bool      `json:"displayed"`
}

// Trophy is a rarer collectible unlocked by cumulative requirements.
type Trophy struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Image        string             `json:"image"`
	Rarity       Rarity             `json:"rarity"`
	Requirements TrophyRequirements `json:"requirements"`
	CreatedAt    time.Time          `json:"created_at"`
}

// UserTrophy links a user to an earned trophy. Same uniqueness invariant
// as UserBadge.
type UserTrophy struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"user_id"`
	TrophyID  string    `json:"trophy_id"`
	EarnedAt  time.Time `json:"earned_at"`
	Displayed bool      `json:"displayed"`
}

// AvatarItem is a purchasable cosmetic occupying exactly one slot.
type AvatarItem struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Slot              AvatarSlot         `json:"slot"`
	Image             string             `json:"image"`
	Cost              int64              `json:"cost"`
	Rarity            Rarity             `json:"rarity"`
	UnlockRequirement *UnlockRequirement `json:"unlock_requirement,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// UserAvatarItem records ownership of an AvatarItem. At most one owned
// item per slot has Equipped set.
type UserAvatarItem struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"user_id"`
	ItemID      string    `json:"item_id"`
	PurchasedAt time.Time `json:"purchased_at"`
	Equipped    bool      `json:"equipped"`
}

// CoinTransaction is an append-only ledger row. The signed sum of a
// user's transactions reconstructs their balance.
type CoinTransaction struct {
	ID          string          `json:"id"`
	UserID      UserID          `json:"user_id"`
	Amount      int64           `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RewardNotification is a user-facing unlock announcement. It is created
// at award time, flips seen=false->true exactly once, and is never deleted.
type RewardNotification struct {
	ID          string           `json:"id"`
	UserID      UserID           `json:"user_id"`
	Type        NotificationType `json:"type"`
	ItemID      string           `json:"item_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Rarity      Rarity           `json:"rarity,omitempty"`
	EarnedAt    time.Time        `json:"earned_at"`
	Seen        bool             `json:"seen"`
}

// GameResult is the just-completed game a player submits for evaluation.
type GameResult struct {
	GameType       GameType        `json:"game_type"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	TimeSpent      int             `json:"time_spent"`
	AnswerHistory  []AnswerOutcome `json:"answer_history"`
}

// Perfect reports whether every question was answered correctly.
func (r GameResult) Perfect() bool {
	return r.TotalQuestions > 0 && r.Score == r.TotalQuestions
}

// Validate checks the result for internal consistency.
func (r GameResult) Validate() error {
	if !r.GameType.Valid() {
		return errors.New("unknown game type")
	}
	if r.TotalQuestions <= 0 {
		return errors.New("total questions must be positive")
	}
	if r.Score < 0 || r.Score > r.TotalQuestions {
		return errors.New("score out of range")
	}
	if r.TimeSpent < 0 {
		return errors.New("time spent cannot be negative")
	}
	return nil
}

// GameRecord is a persisted per-game result row.
type GameRecord struct {
	ID             string    `json:"id"`
	UserID         UserID    `json:"user_id"`
	GameType       GameType  `json:"game_type"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	TimeSpent      int       `json:"time_spent"`
	PlayedAt       time.Time `json:"played_at"`
}

// Perfect reports whether the recorded game had a perfect score.
func (r GameRecord) Perfect() bool {
	return r.TotalQuestions > 0 && r.Score == r.TotalQuestions
}

// UserProfile is the per-user aggregate document. The award counters are
// read-modify-write projections; the award link records remain the
// authority for dedup.
type UserProfile struct {
	UserID          UserID                `json:"user_id"`
	Coins           int64                 `json:"coins"`
	BadgeCount      int                   `json:"badge_count"`
	TrophyCount     int                   `json:"trophy_count"`
	ConsecutiveDays int                   `json:"consecutive_days"`
	LastGamePlayed  time.Time             `json:"last_game_played"`
	AvatarLevel     AvatarLevel           `json:"avatar_level"`
	EquippedItems   map[AvatarSlot]string `json:"equipped_items,omitempty"`
	Updated         time.Time             `json:"updated"`
}

// AddSafe adds delta to base ensuring no signed overflow occurs.
func AddSafe(base int64, delta int64) (int64, error) {
	if (delta > 0 && base > math.MaxInt64-delta) || (delta < 0 && base < math.MinInt64-delta) {
		return 0, errors.New("integer overflow in AddSafe")
	}
	return base + delta, nil
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateItemID ensures a non-empty catalog id with simple charset check.
func ValidateItemID(id string) error {
	s := strings.TrimSpace(id)
	if s == "" {
		return errors.New("empty item id")
	}
	// simple check: alnum, dash, underscore
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return errors.New("invalid item id")
	}
	return nil
}
