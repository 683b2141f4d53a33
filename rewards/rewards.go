// Package rewards is the top-level entry point for embedding the
// achievement engine. It assembles an engine.Service from functional
// options, defaulting to in-memory storage and async event dispatch.
package rewards

import (
	"context"
	"log/slog"
	"time"

	"mathquest/adapters/memory"
	"mathquest/core"
	"mathquest/engine"
	"mathquest/realtime"
	"mathquest/store"
)

// Option configures the service builder.
type Option func(*config)

type config struct {
	gateway store.Gateway
	mode    engine.DispatchMode
	hub     *realtime.Hub
	logger  *slog.Logger
	clock   engine.Clock
	rates   engine.RewardRates
}

// WithGateway sets the persistence adapter.
func WithGateway(gw store.Gateway) Option { return func(c *config) { c.gateway = gw } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithClock overrides the time source. Tests use this to drive the
// consecutive-day streak logic.
func WithClock(clock engine.Clock) Option { return func(c *config) { c.clock = clock } }

// WithRewardRates overrides the coin economy.
func WithRewardRates(r engine.RewardRates) Option { return func(c *config) { c.rates = r } }

// New builds a configured Service. Defaults when not provided:
//   - gateway: in-memory
//   - dispatch: async
//   - rates: DefaultRewardRates
func New(opts ...Option) *engine.Service {
	cfg := &config{
		mode:  engine.DispatchAsync,
		rates: engine.DefaultRewardRates(),
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.gateway == nil {
		cfg.gateway = memory.New()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}

	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewService(cfg.gateway, bus, cfg.logger, cfg.clock, cfg.rates)
	if cfg.hub != nil {
		broadcast := func(ctx context.Context, ev core.Event) { cfg.hub.Broadcast(ctx, ev) }
		for _, typ := range []core.EventType{
			core.EventBadgeAwarded,
			core.EventTrophyAwarded,
			core.EventLevelUp,
			core.EventCoinsChanged,
			core.EventStreakUpdated,
			core.EventItemPurchased,
			core.EventItemEquipped,
		} {
			bus.Subscribe(typ, broadcast)
		}
	}
	return svc
}

// SeedDefaultCatalog loads the stock badge, trophy and avatar item
// catalogs into the gateway. Existing entries with the same ids are
// overwritten.
func SeedDefaultCatalog(ctx context.Context, gw store.Gateway) error {
	now := time.Now().UTC()
	for _, b := range core.DefaultBadges() {
		b.CreatedAt = now
		if err := gw.Set(ctx, store.CollectionBadges, b.ID, b); err != nil {
			return err
		}
	}
	for _, t := range core.DefaultTrophies() {
		t.CreatedAt = now
		if err := gw.Set(ctx, store.CollectionTrophies, t.ID, t); err != nil {
			return err
		}
	}
	for _, item := range core.DefaultAvatarItems() {
		item.CreatedAt = now
		if err := gw.Set(ctx, store.CollectionAvatarItems, item.ID, item); err != nil {
			return err
		}
	}
	return nil
}
