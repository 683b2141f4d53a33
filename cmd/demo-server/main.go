package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	mem "mathquest/adapters/memory"
	"mathquest/api/httpapi"
	"mathquest/core"
	"mathquest/engine"
	"mathquest/leaderboard"
	"mathquest/realtime"
	"mathquest/rewards"
)

// demo-server runs an in-memory reward engine seeded with the stock
// catalog, plus one sample game so the API has data to show.
func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	ctx := context.Background()
	gw := mem.New()
	if err := rewards.SeedDefaultCatalog(ctx, gw); err != nil {
		slog.Error("seed catalog", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub()
	svc := rewards.New(
		rewards.WithGateway(gw),
		rewards.WithRealtime(hub),
		rewards.WithLogger(logger),
		rewards.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()

	boards := leaderboard.NewTracker()
	svc.Subscribe(core.EventCoinsChanged, boards.OnEvent)
	svc.Subscribe(core.EventBadgeAwarded, boards.OnEvent)
	svc.Subscribe(core.EventStreakUpdated, boards.OnEvent)

	// one sample game so the demo has a user with data
	history := make([]core.AnswerOutcome, 10)
	for i := range history {
		history[i] = core.AnswerCorrect
	}
	res, err := svc.CheckGameAchievements(ctx, "demo-kid", core.GameResult{
		GameType:       core.GameAddition,
		Score:          10,
		TotalQuestions: 10,
		TimeSpent:      30,
		AnswerHistory:  history,
	})
	if err != nil {
		slog.Error("sample game", "error", err)
		os.Exit(1)
	}
	slog.Info("sample game recorded",
		"user", "demo-kid",
		"new_badges", res.NewBadges,
		"coins_earned", res.CoinsEarned)

	handler := httpapi.NewMux(svc, hub, boards, httpapi.Options{
		PathPrefix:      "/api",
		AllowCORSOrigin: "*",
	})

	slog.Info("starting demo server on :8080")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}
