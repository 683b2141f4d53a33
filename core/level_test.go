package core

import "testing"

func TestLevelForBadges(t *testing.T) {
	want := map[int]AvatarLevel{
		0: LevelNovice, 2: LevelNovice,
		3: LevelSkilled, 4: LevelSkilled,
		5: LevelExpert, 6: LevelExpert,
		7: LevelMaster, 8: LevelMaster, 9: LevelMaster,
		10: LevelLegendary, 11: LevelLegendary,
	}
	for count, level := range want {
		if got := LevelForBadges(count); got != level {
			t.Fatalf("LevelForBadges(%d) = %s, want %s", count, got, level)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	prev := LevelForBadges(0)
	for count := 1; count <= 30; count++ {
		cur := LevelForBadges(count)
		if cur.Rank() < prev.Rank() {
			t.Fatalf("level decreased from %s to %s at badge count %d", prev, cur, count)
		}
		prev = cur
	}
}

func TestLevelProgress(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 33},
		{2, 66},
		{3, 0},
		{4, 50},
		{5, 0},
		{6, 50},
		{7, 0},
		{8, 33},
		{9, 66},
		{10, 100},
		{15, 100},
	}
	for _, tc := range cases {
		if got := LevelProgress(tc.count); got != tc.want {
			t.Fatalf("LevelProgress(%d) = %d, want %d", tc.count, got, tc.want)
		}
	}
}

func TestRarityRank(t *testing.T) {
	order := []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityVeryRare, RarityLegendary}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("%s should rank below %s", order[i-1], order[i])
		}
	}
	if Rarity("mythic").Rank() != -1 {
		t.Fatal("unknown rarity should rank -1")
	}
}
