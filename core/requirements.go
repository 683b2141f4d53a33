package core

// Requirement predicates are pure conjunctions over the fields that are
// present: a nil field imposes no constraint. A requirements object with
// no fields at all is treated as unconfigured catalog data and is never
// satisfied, so an empty object cannot auto-award its badge or trophy.

// BadgeRequirements gates a badge on a single game result plus the
// user's cumulative progress.
type BadgeRequirements struct {
	GameType        *GameType `json:"game_type,omitempty"`
	MinScore        *int      `json:"min_score,omitempty"`
	MinStreak       *int      `json:"min_streak,omitempty"`
	MaxTime         *int      `json:"max_time,omitempty"`
	GamesCompleted  *int      `json:"games_completed,omitempty"`
	PerfectScore    *bool     `json:"perfect_score,omitempty"`
	ConsecutiveDays *int      `json:"consecutive_days,omitempty"`
}

// IsZero reports whether no constraint is present.
func (r BadgeRequirements) IsZero() bool {
	return r.GameType == nil && r.MinScore == nil && r.MinStreak == nil &&
		r.MaxTime == nil && r.GamesCompleted == nil && r.PerfectScore == nil &&
		r.ConsecutiveDays == nil
}

// ProgressSnapshot captures the cumulative reads the predicates need:
// full-history counts, the earned-award sets, and the coin balance.
type ProgressSnapshot struct {
	GamesCompleted  int
	TotalScore      int
	TotalQuestions  int
	PerfectGames    int
	ConsecutiveDays int
	CoinBalance     int64
	EarnedBadges    map[string]struct{}
	EarnedTrophies  map[string]struct{}
}

// HasBadge reports whether the snapshot contains the badge id.
func (s ProgressSnapshot) HasBadge(id string) bool {
	_, ok := s.EarnedBadges[id]
	return ok
}

// HasTrophy reports whether the snapshot contains the trophy id.
func (s ProgressSnapshot) HasTrophy(id string) bool {
	_, ok := s.EarnedTrophies[id]
	return ok
}

// Accuracy returns the lifetime accuracy percentage, 0 when no
// questions have been answered.
func (s ProgressSnapshot) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return 100 * float64(s.TotalScore) / float64(s.TotalQuestions)
}

// SatisfiedBy evaluates the badge predicate against the just-completed
// result and the progress snapshot. Unconfigured requirements fail.
func (r BadgeRequirements) SatisfiedBy(result GameResult, snap ProgressSnapshot) bool {
	if r.IsZero() {
		return false
	}
	if r.GameType != nil && *r.GameType != result.GameType {
		return false
	}
	if r.MinScore != nil && result.Score < *r.MinScore {
		return false
	}
	if r.PerfectScore != nil && *r.PerfectScore && !result.Perfect() {
		return false
	}
	if r.MinStreak != nil && LongestStreak(result.AnswerHistory) < *r.MinStreak {
		return false
	}
	if r.MaxTime != nil && result.TimeSpent > *r.MaxTime {
		return false
	}
	if r.GamesCompleted != nil && snap.GamesCompleted < *r.GamesCompleted {
		return false
	}
	if r.ConsecutiveDays != nil && snap.ConsecutiveDays < *r.ConsecutiveDays {
		return false
	}
	return true
}

// TrophyRequirements gates a trophy on cumulative history only.
type TrophyRequirements struct {
	GamesCompleted *int     `json:"games_completed,omitempty"`
	MinAccuracy    *float64 `json:"min_accuracy,omitempty"`
	SpecificBadges []string `json:"specific_badges,omitempty"`
	MinCoins       *int64   `json:"min_coins,omitempty"`
}

// IsZero reports whether no constraint is present.
func (r TrophyRequirements) IsZero() bool {
	return r.GamesCompleted == nil && r.MinAccuracy == nil &&
		len(r.SpecificBadges) == 0 && r.MinCoins == nil
}

// SatisfiedBy evaluates the trophy predicate against the snapshot.
func (r TrophyRequirements) SatisfiedBy(snap ProgressSnapshot) bool {
	if r.IsZero() {
		return false
	}
	if r.GamesCompleted != nil && snap.GamesCompleted < *r.GamesCompleted {
		return false
	}
	if r.MinAccuracy != nil && snap.Accuracy() < *r.MinAccuracy {
		return false
	}
	for _, badgeID := range r.SpecificBadges {
		if !snap.HasBadge(badgeID) {
			return false
		}
	}
	if r.MinCoins != nil && snap.CoinBalance < *r.MinCoins {
		return false
	}
	return true
}

// UnlockRequirement gates an avatar-item purchase in addition to its
// coin cost. It reuses a subset of the badge predicate vocabulary.
type UnlockRequirement struct {
	BadgeID      string    `json:"badge_id,omitempty"`
	TrophyID     string    `json:"trophy_id,omitempty"`
	GameType     *GameType `json:"game_type,omitempty"`
	PerfectGames *int      `json:"perfect_games,omitempty"`
}

// IsZero reports whether no constraint is present.
func (r UnlockRequirement) IsZero() bool {
	return r.BadgeID == "" && r.TrophyID == "" && r.GameType == nil && r.PerfectGames == nil
}

// SatisfiedBy evaluates the unlock gate against the snapshot. The
// GameType constraint requires at least one completed game of that type,
// which callers surface through PerGameCompleted.
func (r UnlockRequirement) SatisfiedBy(snap ProgressSnapshot, gamesByType map[GameType]int) bool {
	if r.BadgeID != "" && !snap.HasBadge(r.BadgeID) {
		return false
	}
	if r.TrophyID != "" && !snap.HasTrophy(r.TrophyID) {
		return false
	}
	if r.GameType != nil && gamesByType[*r.GameType] == 0 {
		return false
	}
	if r.PerfectGames != nil && snap.PerfectGames < *r.PerfectGames {
		return false
	}
	return true
}

// LongestStreak scans the answer history left to right and returns the
// longest run of consecutive correct answers. Any non-correct entry
// resets the running length.
func LongestStreak(history []AnswerOutcome) int {
	best, run := 0, 0
	for _, a := range history {
		if a == AnswerCorrect {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
