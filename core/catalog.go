package core

// Ptr returns a pointer to v, a convenience for building the
// optional-field requirement structs.
func Ptr[T any](v T) *T { return &v }

// DefaultBadges returns the stock badge catalog. Deployments usually
// author their own, but the demo server and the seven-day streak award
// depend on these entries.
func DefaultBadges() []Badge {
	return []Badge{
		{
			ID:          "first-steps",
			Name:        "First Steps",
			Description: "Complete your very first game",
			Icon:        "icons/first-steps.png",
			Requirements: BadgeRequirements{
				GamesCompleted: Ptr(1),
			},
		},
		{
			ID:          "addition-ace",
			Name:        "Addition Ace",
			Description: "Get a perfect score in an addition game",
			Icon:        "icons/addition-ace.png",
			Requirements: BadgeRequirements{
				GameType:     Ptr(GameAddition),
				PerfectScore: Ptr(true),
			},
		},
		{
			ID:          "subtraction-star",
			Name:        "Subtraction Star",
			Description: "Get a perfect score in a subtraction game",
			Icon:        "icons/subtraction-star.png",
			Requirements: BadgeRequirements{
				GameType:     Ptr(GameSubtraction),
				PerfectScore: Ptr(true),
			},
		},
		{
			ID:          "times-titan",
			Name:        "Times Titan",
			Description: "Get a perfect score in a multiplication game",
			Icon:        "icons/times-titan.png",
			Requirements: BadgeRequirements{
				GameType:     Ptr(GameMultiplication),
				PerfectScore: Ptr(true),
			},
		},
		{
			ID:          "division-dynamo",
			Name:        "Division Dynamo",
			Description: "Get a perfect score in a division game",
			Icon:        "icons/division-dynamo.png",
			Requirements: BadgeRequirements{
				GameType:     Ptr(GameDivision),
				PerfectScore: Ptr(true),
			},
		},
		{
			ID:          "speed-demon",
			Name:        "Speed Demon",
			Description: "Finish a game in 45 seconds or less",
			Icon:        "icons/speed-demon.png",
			Requirements: BadgeRequirements{
				MaxTime: Ptr(45),
			},
		},
		{
			ID:          "hot-streak",
			Name:        "Hot Streak",
			Description: "Answer 15 questions correctly in a row",
			Icon:        "icons/hot-streak.png",
			Requirements: BadgeRequirements{
				MinStreak: Ptr(15),
			},
		},
		{
			ID:          "dedicated-learner",
			Name:        "Dedicated Learner",
			Description: "Complete 25 games",
			Icon:        "icons/dedicated-learner.png",
			Requirements: BadgeRequirements{
				GamesCompleted: Ptr(25),
			},
		},
		{
			ID:          "week-warrior",
			Name:        "Week Warrior",
			Description: "Play every day for a whole week",
			Icon:        "icons/week-warrior.png",
			Requirements: BadgeRequirements{
				ConsecutiveDays: Ptr(7),
			},
		},
		{
			ID:          "high-scorer",
			Name:        "High Scorer",
			Description: "Score at least 18 in a single game",
			Icon:        "icons/high-scorer.png",
			Requirements: BadgeRequirements{
				MinScore: Ptr(18),
			},
		},
	}
}

// DefaultTrophies returns the stock trophy catalog.
func DefaultTrophies() []Trophy {
	return []Trophy{
		{
			ID:          "getting-started",
			Name:        "Getting Started",
			Description: "Complete 10 games",
			Image:       "trophies/getting-started.png",
			Rarity:      RarityCommon,
			Requirements: TrophyRequirements{
				GamesCompleted: Ptr(10),
			},
		},
		{
			ID:          "sharpshooter",
			Name:        "Sharpshooter",
			Description: "Keep 90% accuracy over at least 20 games",
			Image:       "trophies/sharpshooter.png",
			Rarity:      RarityRare,
			Requirements: TrophyRequirements{
				GamesCompleted: Ptr(20),
				MinAccuracy:    Ptr(90.0),
			},
		},
		{
			ID:          "operator-collector",
			Name:        "Operator Collector",
			Description: "Earn the perfect-score badge in all four modes",
			Image:       "trophies/operator-collector.png",
			Rarity:      RarityVeryRare,
			Requirements: TrophyRequirements{
				SpecificBadges: []string{
					"addition-ace", "subtraction-star", "times-titan", "division-dynamo",
				},
			},
		},
		{
			ID:          "coin-tycoon",
			Name:        "Coin Tycoon",
			Description: "Hold 500 coins at once",
			Image:       "trophies/coin-tycoon.png",
			Rarity:      RarityUncommon,
			Requirements: TrophyRequirements{
				MinCoins: Ptr(int64(500)),
			},
		},
		{
			ID:          "math-legend",
			Name:        "Math Legend",
			Description: "Complete 100 games with 95% accuracy",
			Image:       "trophies/math-legend.png",
			Rarity:      RarityLegendary,
			Requirements: TrophyRequirements{
				GamesCompleted: Ptr(100),
				MinAccuracy:    Ptr(95.0),
			},
		},
	}
}

// DefaultAvatarItems returns the stock avatar shop.
func DefaultAvatarItems() []AvatarItem {
	return []AvatarItem{
		{
			ID:          "starter-headband",
			Name:        "Starter Headband",
			Description: "A plain headband for new players",
			Slot:        SlotHeadband,
			Image:       "avatar/starter-headband.png",
			Cost:        25,
			Rarity:      RarityCommon,
		},
		{
			ID:          "wizard-outfit",
			Name:        "Wizard Outfit",
			Description: "Robes for a true math wizard",
			Slot:        SlotOutfit,
			Image:       "avatar/wizard-outfit.png",
			Cost:        150,
			Rarity:      RarityRare,
			UnlockRequirement: &UnlockRequirement{
				BadgeID: "hot-streak",
			},
		},
		{
			ID:          "calculator-charm",
			Name:        "Calculator Charm",
			Description: "A lucky charm for speedy solvers",
			Slot:        SlotAccessory,
			Image:       "avatar/calculator-charm.png",
			Cost:        75,
			Rarity:      RarityUncommon,
			UnlockRequirement: &UnlockRequirement{
				PerfectGames: Ptr(3),
			},
		},
		{
			ID:          "galaxy-background",
			Name:        "Galaxy Background",
			Description: "Study among the stars",
			Slot:        SlotBackground,
			Image:       "avatar/galaxy-background.png",
			Cost:        200,
			Rarity:      RarityVeryRare,
			UnlockRequirement: &UnlockRequirement{
				TrophyID: "sharpshooter",
			},
		},
		{
			ID:          "division-cape",
			Name:        "Division Cape",
			Description: "For players who brave division",
			Slot:        SlotOutfit,
			Image:       "avatar/division-cape.png",
			Cost:        100,
			Rarity:      RarityUncommon,
			UnlockRequirement: &UnlockRequirement{
				GameType: Ptr(GameDivision),
			},
		},
	}
}
