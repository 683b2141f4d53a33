package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"mathquest/core"
)

func TestSinkPostsToEndpoints(t *testing.T) {
	var hits int32
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		gotAuth.Store(r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		var ev core.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if ev.Type != core.EventBadgeAwarded {
			t.Errorf("unexpected event type %q", ev.Type)
		}
	}))
	defer srv.Close()

	sink := New([]string{srv.URL}, WithHeader("Authorization", "Bearer token"))
	sink.OnEvent(context.Background(), core.NewBadgeAwarded("kid-1", "first-steps"))

	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
	if gotAuth.Load() != "Bearer token" {
		t.Fatalf("auth header = %q", gotAuth.Load())
	}
}

func TestSinkNoEndpoints(t *testing.T) {
	sink := New(nil)
	// must be a no-op
	sink.OnEvent(context.Background(), core.NewBadgeAwarded("kid-1", "first-steps"))
}
