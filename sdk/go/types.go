package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Profile mirrors the public JSON surface of core.UserProfile.
type Profile struct {
	UserID          string            `json:"user_id"`
	Coins           int64             `json:"coins"`
	BadgeCount      int               `json:"badge_count"`
	TrophyCount     int               `json:"trophy_count"`
	ConsecutiveDays int               `json:"consecutive_days"`
	LastGamePlayed  time.Time         `json:"last_game_played"`
	AvatarLevel     string            `json:"avatar_level"`
	EquippedItems   map[string]string `json:"equipped_items,omitempty"`
	Updated         time.Time         `json:"updated"`
}

// AchievementResult mirrors the game submission response.
type AchievementResult struct {
	NewBadges       []string `json:"new_badges"`
	NewTrophies     []string `json:"new_trophies"`
	LevelUp         bool     `json:"level_up"`
	Level           string   `json:"level"`
	AvatarProgress  int      `json:"avatar_progress"`
	CoinsEarned     int64    `json:"coins_earned"`
	ConsecutiveDays int      `json:"consecutive_days"`
}

// LeaderboardEntry is one ranked row of a leaderboard response.
type LeaderboardEntry struct {
	User  string `json:"user"`
	Score int64  `json:"score"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("request failed: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("request failed: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
