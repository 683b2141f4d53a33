// Package webhook posts reward events to external HTTP endpoints, so a
// parent dashboard or classroom service can react to unlocks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"mathquest/core"
)

// Sink posts domain events to configured HTTP endpoints. Delivery is
// synchronous and best effort; attach it through an async event bus
// when the caller must not block on slow receivers.
type Sink struct {
	client    *http.Client
	endpoints []string
	headers   map[string]string
}

// Option configures a Sink.
type Option func(*Sink)

// WithClient overrides the HTTP client (defaults to 2s timeout).
func WithClient(c *http.Client) Option {
	return func(s *Sink) {
		if c != nil {
			s.client = c
		}
	}
}

// WithHeader adds a header to every delivery, typically an auth token.
func WithHeader(key, value string) Option {
	return func(s *Sink) { s.headers[key] = value }
}

// New creates a webhook sink.
func New(endpoints []string, opts ...Option) *Sink {
	s := &Sink{
		client:  &http.Client{Timeout: 2 * time.Second},
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.endpoints = append([]string{}, endpoints...)
	return s
}

// OnEvent posts the event JSON to all endpoints. Delivery failures are
// dropped; endpoints are expected to be idempotent consumers.
func (s *Sink) OnEvent(ctx context.Context, ev core.Event) {
	if len(s.endpoints) == 0 {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for _, ep := range s.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep, bytes.NewReader(body))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range s.headers {
			req.Header.Set(k, v)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
