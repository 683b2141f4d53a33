package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	wsadapter "mathquest/adapters/websocket"
	"mathquest/core"
	"mathquest/engine"
	"mathquest/leaderboard"
	"mathquest/realtime"
)

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
}

// NewMux builds an http.Handler exposing the reward REST API and
// WebSocket stream.
// Routes:
//   - POST {prefix}/users/{id}/games           (body: game result)
//   - POST {prefix}/users/{id}/coins?delta=50&type=reward&desc=...
//   - POST {prefix}/users/{id}/items/{item}/purchase
//   - POST {prefix}/users/{id}/items/{item}/equip
//   - POST {prefix}/users/{id}/notifications/seen  (body: {"ids": [...]})
//   - GET  {prefix}/users/{id}
//   - GET  {prefix}/users/{id}/stats
//   - GET  {prefix}/users/{id}/badges
//   - GET  {prefix}/users/{id}/trophies
//   - GET  {prefix}/users/{id}/items
//   - GET  {prefix}/users/{id}/transactions
//   - GET  {prefix}/users/{id}/notifications
//   - GET  {prefix}/leaderboard/{metric}?n=10
//   - GET  {prefix}/healthz
//   - WS   {prefix}/ws
func NewMux(svc *engine.Service, hub *realtime.Hub, boards *leaderboard.Tracker, opts Options) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		healthCheck(w, r, svc)
	})

	// WebSocket events
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	if boards != nil {
		mux.HandleFunc(withPrefix(opts.PathPrefix, "/leaderboard/"), func(w http.ResponseWriter, r *http.Request) {
			handleLeaderboard(w, r, boards, opts.PathPrefix)
		})
	}

	// Users API
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/users/"), func(w http.ResponseWriter, r *http.Request) {
		handleUsers(w, r, svc, opts.PathPrefix)
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

func handleUsers(w http.ResponseWriter, r *http.Request, svc *engine.Service, prefix string) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}
	parts := routeParts(r.URL.Path, prefix)
	if len(parts) < 2 {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}
	user, err := core.NormalizeUserID(core.UserID(parts[1]))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user", err.Error(), nil)
		return
	}

	switch r.Method {
	case http.MethodPost:
		handleUserPost(w, r, svc, user, parts)
	case http.MethodGet:
		handleUserGet(w, r, svc, user, parts)
	}
}

func handleUserPost(w http.ResponseWriter, r *http.Request, svc *engine.Service, user core.UserID, parts []string) {
	switch {
	case len(parts) == 3 && parts[2] == "games":
		var result core.GameResult
		if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "malformed game result", nil)
			return
		}
		res, err := svc.CheckGameAchievements(r.Context(), user, result)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		writeJSON(w, res)

	case len(parts) == 3 && parts[2] == "coins":
		delta, err := strconv.ParseInt(r.URL.Query().Get("delta"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_delta", "delta must be an integer", nil)
			return
		}
		txType := core.TransactionType(r.URL.Query().Get("type"))
		if txType == "" {
			txType = core.TxReward
		}
		balance, err := svc.UpdateCoins(r.Context(), user, delta, txType, r.URL.Query().Get("desc"))
		if err != nil {
			if errors.Is(err, engine.ErrInsufficientFunds) {
				writeError(w, http.StatusConflict, "insufficient_funds", err.Error(), nil)
				return
			}
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"balance": balance})

	case len(parts) == 5 && parts[2] == "items" && parts[4] == "purchase":
		ok, err := svc.PurchaseAvatarItem(r.Context(), user, parts[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"purchased": ok})

	case len(parts) == 5 && parts[2] == "items" && parts[4] == "equip":
		ok, err := svc.EquipAvatarItem(r.Context(), user, parts[3])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"equipped": ok})

	case len(parts) == 4 && parts[2] == "notifications" && parts[3] == "seen":
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "malformed id list", nil)
			return
		}
		if err := svc.MarkNotificationsSeen(r.Context(), body.IDs); err != nil {
			writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
			return
		}
		writeJSON(w, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
	}
}

func handleUserGet(w http.ResponseWriter, r *http.Request, svc *engine.Service, user core.UserID, parts []string) {
	var (
		payload any
		err     error
	)
	switch {
	case len(parts) == 2:
		payload, err = svc.Profile(r.Context(), user)
	case len(parts) == 3 && parts[2] == "stats":
		payload, err = svc.Stats(r.Context(), user)
	case len(parts) == 3 && parts[2] == "badges":
		payload, err = svc.Badges(r.Context(), user)
	case len(parts) == 3 && parts[2] == "trophies":
		payload, err = svc.Trophies(r.Context(), user)
	case len(parts) == 3 && parts[2] == "items":
		payload, err = svc.AvatarItems(r.Context(), user)
	case len(parts) == 3 && parts[2] == "transactions":
		payload, err = svc.TransactionHistory(r.Context(), user)
	case len(parts) == 3 && parts[2] == "notifications":
		payload, err = svc.ListPendingNotifications(r.Context(), user)
	default:
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
		return
	}
	writeJSON(w, payload)
}

func handleLeaderboard(w http.ResponseWriter, r *http.Request, boards *leaderboard.Tracker, prefix string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}
	parts := routeParts(r.URL.Path, prefix)
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}
	metric := leaderboard.Metric(parts[1])
	board, ok := boards.Board(metric)
	if !ok || !metric.Valid() {
		writeError(w, http.StatusNotFound, "unknown_metric", "unknown leaderboard metric", nil)
		return
	}
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "invalid_n", "n must be in 1..100", nil)
			return
		}
		n = parsed
	}
	writeJSON(w, map[string]any{"metric": metric, "entries": board.TopN(n)})
}

// Helpers

// healthCheck verifies the service is working properly
func healthCheck(w http.ResponseWriter, r *http.Request, svc *engine.Service) {
	ctx := r.Context()

	// Verify storage works with a lightweight probe read
	_, err := svc.Profile(ctx, "healthcheck-probe")

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["storage"] = "failed"
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(status)
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func routeParts(path, prefix string) []string {
	path = strings.TrimPrefix(path, prefix)
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return split(path, '/')
}

func split(p string, sep rune) []string {
	var parts []string
	cur := make([]rune, 0, len(p))
	// trim leading '/'
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for _, r := range p {
		if r == sep {
			if len(cur) > 0 {
				parts = append(parts, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAPIKeyAuth enforces a shared API key list.
func withAPIKeyAuth(next http.Handler, apiKeys []string) http.Handler {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		k = strings.TrimSpace(k)
		if k != "" {
			allowed[k] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key", nil)
			return
		}
		if _, ok := allowed[key]; !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client key.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !limiter.allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return ""
}

// clientKey uses API key if present, otherwise remote IP.
func clientKey(r *http.Request) string {
	if key := extractAPIKey(r); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	if b.tokens < 1 {
		b.last = now
		return false
	}
	b.tokens--
	b.last = now
	return true
}
