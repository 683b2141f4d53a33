// Package sdk provides typed access to the MathQuest reward HTTP and
// WebSocket API for game clients written in Go.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mathquest/core"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the reward HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// SubmitGame reports a completed game and returns everything it
// unlocked.
func (c *Client) SubmitGame(ctx context.Context, userID string, result core.GameResult) (AchievementResult, error) {
	if strings.TrimSpace(userID) == "" {
		return AchievementResult{}, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s/games", c.baseURL, url.PathEscape(userID))
	var res AchievementResult
	if err := c.postJSON(ctx, u, result, &res); err != nil {
		return AchievementResult{}, err
	}
	return res, nil
}

// UpdateCoins applies a signed coin delta and returns the new balance.
func (c *Client) UpdateCoins(ctx context.Context, userID string, delta int64, txType, description string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrEmptyUserID
	}
	u, err := url.Parse(fmt.Sprintf("%s/users/%s/coins", c.baseURL, url.PathEscape(userID)))
	if err != nil {
		return 0, err
	}
	q := u.Query()
	q.Set("delta", fmt.Sprintf("%d", delta))
	if txType != "" {
		q.Set("type", txType)
	}
	if description != "" {
		q.Set("desc", description)
	}
	u.RawQuery = q.Encode()

	var body struct {
		Balance int64 `json:"balance"`
	}
	if err := c.postJSON(ctx, u.String(), nil, &body); err != nil {
		return 0, err
	}
	return body.Balance, nil
}

// PurchaseItem buys a shop item. A false result means the purchase was
// declined (locked, already owned, or not enough coins).
func (c *Client) PurchaseItem(ctx context.Context, userID, itemID string) (bool, error) {
	return c.itemAction(ctx, userID, itemID, "purchase", "purchased")
}

// EquipItem equips an owned item.
func (c *Client) EquipItem(ctx context.Context, userID, itemID string) (bool, error) {
	return c.itemAction(ctx, userID, itemID, "equip", "equipped")
}

func (c *Client) itemAction(ctx context.Context, userID, itemID, action, field string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s/items/%s/%s", c.baseURL, url.PathEscape(userID), url.PathEscape(itemID), action)
	var body map[string]bool
	if err := c.postJSON(ctx, u, nil, &body); err != nil {
		return false, err
	}
	return body[field], nil
}

// GetProfile fetches the user's aggregate reward state.
func (c *Client) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrEmptyUserID
	}
	var p Profile
	err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID)), &p)
	return p, err
}

// PendingNotifications fetches the user's unseen reward notifications.
func (c *Client) PendingNotifications(ctx context.Context, userID string) ([]core.RewardNotification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	var out []core.RewardNotification
	err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s/notifications", c.baseURL, url.PathEscape(userID)), &out)
	return out, err
}

// MarkNotificationsSeen acknowledges notifications by id.
func (c *Client) MarkNotificationsSeen(ctx context.Context, userID string, ids []string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	u := fmt.Sprintf("%s/users/%s/notifications/seen", c.baseURL, url.PathEscape(userID))
	var body map[string]any
	return c.postJSON(ctx, u, map[string][]string{"ids": ids}, &body)
}

// Leaderboard fetches the top n entries for a metric (coins, badges,
// streaks).
func (c *Client) Leaderboard(ctx context.Context, metric string, n int) ([]LeaderboardEntry, error) {
	u := fmt.Sprintf("%s/leaderboard/%s?n=%d", c.baseURL, url.PathEscape(metric), n)
	var body struct {
		Entries []LeaderboardEntry `json:"entries"`
	}
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	return body.Entries, nil
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	err := c.getJSON(ctx, c.baseURL+"/healthz", &hs)
	return hs, err
}

// SubscribeEvents connects to the WebSocket stream and emits core.Event
// values. A non-empty userID narrows the stream to one player. The
// returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context, userID string) (<-chan core.Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	wsURL := c.wsURL
	if userID != "" {
		wsURL += "?user=" + url.QueryEscape(userID)
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt core.Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, rawURL string, payload, target any) error {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
