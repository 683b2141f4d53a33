package core

import "testing"

func perfectAddition() GameResult {
	history := make([]AnswerOutcome, 20)
	for i := range history {
		history[i] = AnswerCorrect
	}
	return GameResult{
		GameType:       GameAddition,
		Score:          20,
		TotalQuestions: 20,
		TimeSpent:      40,
		AnswerHistory:  history,
	}
}

func TestLongestStreak(t *testing.T) {
	history := []AnswerOutcome{
		AnswerCorrect, AnswerCorrect, AnswerIncorrect,
		AnswerCorrect, AnswerCorrect, AnswerCorrect,
	}
	if got := LongestStreak(history); got != 3 {
		t.Fatalf("longest streak = %d, want 3", got)
	}
	if got := LongestStreak(nil); got != 0 {
		t.Fatalf("empty history streak = %d, want 0", got)
	}

	req := BadgeRequirements{MinStreak: Ptr(3)}
	if !req.SatisfiedBy(GameResult{GameType: GameAddition, Score: 4, TotalQuestions: 6, AnswerHistory: history}, ProgressSnapshot{}) {
		t.Fatal("minStreak 3 should be satisfied by max run of 3")
	}
	req = BadgeRequirements{MinStreak: Ptr(4)}
	if req.SatisfiedBy(GameResult{GameType: GameAddition, Score: 4, TotalQuestions: 6, AnswerHistory: history}, ProgressSnapshot{}) {
		t.Fatal("minStreak 4 should not be satisfied by max run of 3")
	}
}

func TestBadgeRequirementsConjunction(t *testing.T) {
	result := perfectAddition()
	snap := ProgressSnapshot{GamesCompleted: 1}

	cases := []struct {
		name string
		req  BadgeRequirements
		want bool
	}{
		{"game type match", BadgeRequirements{GameType: Ptr(GameAddition)}, true},
		{"game type mismatch", BadgeRequirements{GameType: Ptr(GameDivision)}, false},
		{"perfect score", BadgeRequirements{GameType: Ptr(GameAddition), PerfectScore: Ptr(true)}, true},
		{"max time met", BadgeRequirements{MaxTime: Ptr(45)}, true},
		{"max time exceeded", BadgeRequirements{MaxTime: Ptr(30)}, false},
		{"min score met", BadgeRequirements{MinScore: Ptr(15)}, true},
		{"min score unmet", BadgeRequirements{MinScore: Ptr(21)}, false},
		{"min streak met", BadgeRequirements{MinStreak: Ptr(15)}, true},
		{"games completed", BadgeRequirements{GamesCompleted: Ptr(2)}, false},
		{"conjunction fails on one leg", BadgeRequirements{GameType: Ptr(GameAddition), MaxTime: Ptr(10)}, false},
	}
	for _, tc := range cases {
		if got := tc.req.SatisfiedBy(result, snap); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEmptyRequirementsNeverSatisfied(t *testing.T) {
	if (BadgeRequirements{}).SatisfiedBy(perfectAddition(), ProgressSnapshot{GamesCompleted: 100}) {
		t.Fatal("empty badge requirements must not auto-award")
	}
	if (TrophyRequirements{}).SatisfiedBy(ProgressSnapshot{GamesCompleted: 100}) {
		t.Fatal("empty trophy requirements must not auto-award")
	}
}

func TestTrophyRequirements(t *testing.T) {
	snap := ProgressSnapshot{
		GamesCompleted: 25,
		TotalScore:     450,
		TotalQuestions: 500,
		CoinBalance:    600,
		EarnedBadges:   map[string]struct{}{"addition-ace": {}},
	}

	req := TrophyRequirements{GamesCompleted: Ptr(20), MinAccuracy: Ptr(90.0)}
	if !req.SatisfiedBy(snap) {
		t.Fatal("90%% accuracy over 25 games should satisfy")
	}
	req = TrophyRequirements{MinAccuracy: Ptr(95.0)}
	if req.SatisfiedBy(snap) {
		t.Fatal("95%% accuracy should not be satisfied at 90%%")
	}
	req = TrophyRequirements{SpecificBadges: []string{"addition-ace"}}
	if !req.SatisfiedBy(snap) {
		t.Fatal("prerequisite badge is earned")
	}
	req = TrophyRequirements{SpecificBadges: []string{"addition-ace", "week-warrior"}}
	if req.SatisfiedBy(snap) {
		t.Fatal("missing prerequisite badge must fail")
	}
	req = TrophyRequirements{MinCoins: Ptr(int64(500))}
	if !req.SatisfiedBy(snap) {
		t.Fatal("coin balance meets minimum")
	}

	// zero denominator accuracy
	empty := ProgressSnapshot{}
	if empty.Accuracy() != 0 {
		t.Fatalf("accuracy with no questions = %v, want 0", empty.Accuracy())
	}
}

func TestUnlockRequirement(t *testing.T) {
	snap := ProgressSnapshot{
		PerfectGames:   3,
		EarnedBadges:   map[string]struct{}{"hot-streak": {}},
		EarnedTrophies: map[string]struct{}{"sharpshooter": {}},
	}
	byType := map[GameType]int{GameDivision: 2}

	cases := []struct {
		name string
		req  UnlockRequirement
		want bool
	}{
		{"badge gate met", UnlockRequirement{BadgeID: "hot-streak"}, true},
		{"badge gate unmet", UnlockRequirement{BadgeID: "week-warrior"}, false},
		{"trophy gate met", UnlockRequirement{TrophyID: "sharpshooter"}, true},
		{"game type played", UnlockRequirement{GameType: Ptr(GameDivision)}, true},
		{"game type never played", UnlockRequirement{GameType: Ptr(GameAddition)}, false},
		{"perfect games met", UnlockRequirement{PerfectGames: Ptr(3)}, true},
		{"perfect games unmet", UnlockRequirement{PerfectGames: Ptr(4)}, false},
		{"no gate", UnlockRequirement{}, true},
	}
	for _, tc := range cases {
		if got := tc.req.SatisfiedBy(snap, byType); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
