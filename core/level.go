package core

// AvatarLevel is the derived progression tier. It is a pure function of
// earned-badge count and is recomputed rather than stored as truth.
type AvatarLevel string

const (
	LevelNovice    AvatarLevel = "novice"
	LevelSkilled   AvatarLevel = "skilled"
	LevelExpert    AvatarLevel = "expert"
	LevelMaster    AvatarLevel = "master"
	LevelLegendary AvatarLevel = "legendary"
)

// levelSteps maps each tier to the badge count that unlocks it.
var levelSteps = []struct {
	Level AvatarLevel
	Min   int
}{
	{LevelNovice, 0},
	{LevelSkilled, 3},
	{LevelExpert, 5},
	{LevelMaster, 7},
	{LevelLegendary, 10},
}

var levelRank = map[AvatarLevel]int{
	LevelNovice:    0,
	LevelSkilled:   1,
	LevelExpert:    2,
	LevelMaster:    3,
	LevelLegendary: 4,
}

// Rank returns the tier's position in the novice..legendary ordering,
// or -1 for an unknown level.
func (l AvatarLevel) Rank() int {
	if r, ok := levelRank[l]; ok {
		return r
	}
	return -1
}

// LevelForBadges returns the tier unlocked by badgeCount. The function
// is a non-decreasing step function on the thresholds 3/5/7/10.
func LevelForBadges(badgeCount int) AvatarLevel {
	level := LevelNovice
	for _, step := range levelSteps {
		if badgeCount >= step.Min {
			level = step.Level
		}
	}
	return level
}

// LevelProgress returns the percentage (0-100) toward the next tier:
// linear interpolation between the current tier's threshold and the
// next. Legendary is always 100.
func LevelProgress(badgeCount int) int {
	if badgeCount < 0 {
		badgeCount = 0
	}
	for i, step := range levelSteps {
		if i == len(levelSteps)-1 {
			return 100
		}
		next := levelSteps[i+1]
		if badgeCount >= next.Min {
			continue
		}
		span := next.Min - step.Min
		pct := 100 * (badgeCount - step.Min) / span
		if pct < 0 {
			pct = 0
		}
		return pct
	}
	return 100
}
