package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	fileAdapter "mathquest/adapters/jsonfile"
	memAdapter "mathquest/adapters/memory"
	redisAdapter "mathquest/adapters/redis"
	sqlxAdapter "mathquest/adapters/sqlx"
	"mathquest/api/httpapi"
	"mathquest/config"
	"mathquest/core"
	"mathquest/engine"
	"mathquest/integrations/webhook"
	"mathquest/leaderboard"
	"mathquest/realtime"
	"mathquest/rewards"
	"mathquest/store"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Gateway store.Gateway
	Service *engine.Service
	Boards  *leaderboard.Tracker
	Handler http.Handler
	Server  *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	if path := os.Getenv("MATHQUEST_CONFIG_FILE"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideGateway(ctx context.Context, cfg *config.Config) (store.Gateway, error) {
	gw, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.SeedCatalog {
		if err := rewards.SeedDefaultCatalog(ctx, gw); err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}
	return gw, nil
}

func provideService(cfg *config.Config, logger *slog.Logger, hub *realtime.Hub, gw store.Gateway) *engine.Service {
	svc := rewards.New(
		rewards.WithGateway(gw),
		rewards.WithRealtime(hub),
		rewards.WithLogger(logger),
		rewards.WithRewardRates(cfg.Rewards.Rates()),
		rewards.WithDispatchMode(engine.DispatchAsync),
	)
	if len(cfg.Webhook.Endpoints) > 0 {
		var opts []webhook.Option
		if cfg.Webhook.AuthToken != "" {
			opts = append(opts, webhook.WithHeader("Authorization", "Bearer "+cfg.Webhook.AuthToken))
		}
		sink := webhook.New(cfg.Webhook.Endpoints, opts...)
		for _, typ := range []core.EventType{
			core.EventBadgeAwarded,
			core.EventTrophyAwarded,
			core.EventLevelUp,
			core.EventItemPurchased,
		} {
			svc.Subscribe(typ, sink.OnEvent)
		}
	}
	return svc
}

func provideBoards(ctx context.Context, gw store.Gateway, svc *engine.Service) (*leaderboard.Tracker, error) {
	boards := leaderboard.NewTracker()

	// warm the boards from stored profiles, then follow live events
	var profiles []core.UserProfile
	if err := gw.List(ctx, store.CollectionUsers, &profiles); err != nil {
		return nil, fmt.Errorf("warm leaderboards: %w", err)
	}
	for _, p := range profiles {
		boards.Seed(p)
	}
	for _, typ := range []core.EventType{
		core.EventCoinsChanged,
		core.EventBadgeAwarded,
		core.EventStreakUpdated,
	} {
		svc.Subscribe(typ, boards.OnEvent)
	}
	return boards, nil
}

func provideHandler(svc *engine.Service, hub *realtime.Hub, boards *leaderboard.Tracker, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, boards, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the appropriate storage adapter based on configuration.
func setupStorage(ctx context.Context, cfg *config.Config) (store.Gateway, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return memAdapter.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		st, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "file":
		return fileAdapter.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
