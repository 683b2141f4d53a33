package core

import "time"

// GameTypeStats is the per-mode aggregate a user accumulates.
type GameTypeStats struct {
	TotalGames    int       `json:"total_games"`
	PerfectGames  int       `json:"perfect_games"`
	BestScore     int       `json:"best_score"`
	BestTime      int       `json:"best_time"`
	TotalCorrect  int       `json:"total_correct"`
	AverageTime   float64   `json:"average_time"`
	LastPlayed    time.Time `json:"last_played"`
	totalTime     int
	totalQuestion int
}

// UserGameStats is the overall rollup across all modes.
type UserGameStats struct {
	PerType        map[GameType]GameTypeStats `json:"per_type"`
	TotalGames     int                        `json:"total_games"`
	PerfectGames   int                        `json:"perfect_games"`
	TotalCorrect   int                        `json:"total_correct"`
	TotalQuestions int                        `json:"total_questions"`
	FavoriteGame   GameType                   `json:"favorite_game,omitempty"`
}

// GamesByType returns the per-mode completed-game counts, used by the
// avatar-item unlock predicate.
func (s UserGameStats) GamesByType() map[GameType]int {
	out := make(map[GameType]int, len(s.PerType))
	for t, st := range s.PerType {
		out[t] = st.TotalGames
	}
	return out
}

// AggregateStats folds a user's persisted game records into the rollup.
// Favorite game is the mode with the most total games; ties resolve to
// the earlier entry in GameTypes.
func AggregateStats(records []GameRecord) UserGameStats {
	stats := UserGameStats{PerType: make(map[GameType]GameTypeStats, len(GameTypes))}
	for _, rec := range records {
		st := stats.PerType[rec.GameType]
		st.TotalGames++
		st.TotalCorrect += rec.Score
		st.totalTime += rec.TimeSpent
		st.totalQuestion += rec.TotalQuestions
		if rec.Perfect() {
			st.PerfectGames++
		}
		if rec.Score > st.BestScore {
			st.BestScore = rec.Score
		}
		if st.BestTime == 0 || (rec.TimeSpent > 0 && rec.TimeSpent < st.BestTime) {
			st.BestTime = rec.TimeSpent
		}
		if rec.PlayedAt.After(st.LastPlayed) {
			st.LastPlayed = rec.PlayedAt
		}
		st.AverageTime = float64(st.totalTime) / float64(st.TotalGames)
		stats.PerType[rec.GameType] = st

		stats.TotalGames++
		stats.TotalCorrect += rec.Score
		stats.TotalQuestions += rec.TotalQuestions
		if rec.Perfect() {
			stats.PerfectGames++
		}
	}

	best := 0
	for _, t := range GameTypes {
		if st, ok := stats.PerType[t]; ok && st.TotalGames > best {
			best = st.TotalGames
			stats.FavoriteGame = t
		}
	}
	return stats
}
