// Package leaderboard maintains in-memory rankings fed by reward
// events: coin balances, badge counts and day streaks.
package leaderboard

import "mathquest/core"

// Entry represents one ranked user.
type Entry struct {
	User  core.UserID `json:"user"`
	Score int64       `json:"score"`
}

// Board abstracts leaderboard operations.
type Board interface {
	Update(user core.UserID, score int64)
	Remove(user core.UserID)
	TopN(n int) []Entry
	Get(user core.UserID) (Entry, bool)
	Rank(user core.UserID) (int, bool)
	Len() int
}
