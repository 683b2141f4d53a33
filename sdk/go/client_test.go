package sdk

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"mathquest/api/httpapi"
	"mathquest/core"
	"mathquest/engine"
	"mathquest/leaderboard"
	"mathquest/realtime"
	"mathquest/rewards"
)

func newTestServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := rewards.New(
		rewards.WithDispatchMode(engine.DispatchSync),
		rewards.WithLogger(logger),
		rewards.WithRealtime(hub),
	)
	t.Cleanup(gw.Close)
	boards := leaderboard.NewTracker()
	srv := httptest.NewServer(httpapi.NewMux(gw, hub, boards, httpapi.Options{PathPrefix: "/api"}))
	t.Cleanup(srv.Close)
	return srv, hub
}

func perfectAddition() core.GameResult {
	history := make([]core.AnswerOutcome, 20)
	for i := range history {
		history[i] = core.AnswerCorrect
	}
	return core.GameResult{
		GameType:       core.GameAddition,
		Score:          20,
		TotalQuestions: 20,
		TimeSpent:      40,
		AnswerHistory:  history,
	}
}

func TestClient_SubmitGameAndProfile(t *testing.T) {
	srv, _ := newTestServer(t)

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	res, err := client.SubmitGame(ctx, "kid-1", perfectAddition())
	if err != nil {
		t.Fatalf("submit game: %v", err)
	}
	if res.CoinsEarned != 70 || res.ConsecutiveDays != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	profile, err := client.GetProfile(ctx, "kid-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.UserID != "kid-1" || profile.Coins != 70 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	health, err := client.Health(ctx)
	if err != nil || health.Status != "healthy" {
		t.Fatalf("health: %+v err=%v", health, err)
	}
}

func TestClient_CoinsPurchaseEquip(t *testing.T) {
	srv, _ := newTestServer(t)

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	balance, err := client.UpdateCoins(ctx, "kid-1", 100, "reward", "allowance")
	if err != nil || balance != 100 {
		t.Fatalf("update coins got balance=%d err=%v", balance, err)
	}

	ok, err := client.PurchaseItem(ctx, "kid-1", "starter-headband")
	if err != nil || !ok {
		t.Fatalf("purchase ok=%v err=%v", ok, err)
	}
	ok, err = client.EquipItem(ctx, "kid-1", "starter-headband")
	if err != nil || !ok {
		t.Fatalf("equip ok=%v err=%v", ok, err)
	}

	// overdraft surfaces as an error
	if _, err := client.UpdateCoins(ctx, "kid-1", -1000, "purchase", ""); err == nil {
		t.Fatal("expected error for overdraft")
	}
}

func TestClient_Notifications(t *testing.T) {
	srv, _ := newTestServer(t)

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx := context.Background()

	if _, err := client.SubmitGame(ctx, "kid-1", perfectAddition()); err != nil {
		t.Fatalf("submit game: %v", err)
	}
	pending, err := client.PendingNotifications(ctx, "kid-1")
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("expected pending notifications")
	}
	if err := client.MarkNotificationsSeen(ctx, "kid-1", []string{pending[0].ID}); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	after, err := client.PendingNotifications(ctx, "kid-1")
	if err != nil {
		t.Fatalf("pending after: %v", err)
	}
	if len(after) != len(pending)-1 {
		t.Fatalf("pending after = %d, want %d", len(after), len(pending)-1)
	}
}

func TestClient_SubscribeEvents(t *testing.T) {
	srv, hub := newTestServer(t)

	client, err := NewClient(srv.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := client.SubscribeEvents(ctx, "kid-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// give the server-side subscriber time to register
	time.Sleep(20 * time.Millisecond)
	hub.Broadcast(ctx, core.NewBadgeAwarded("kid-1", "first-steps"))

	select {
	case evt := <-events:
		if evt.Type != core.EventBadgeAwarded || evt.ItemID != "first-steps" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
