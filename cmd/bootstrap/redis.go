package bootstrap

import (
	"context"
	"log/slog"

	"table-reservation/internal/handler/middleware"
	"table-reservation/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRateLimiter,
	),
)

// NewRateLimiter returns nil when REDIS_ADDR is unset. An unreachable Redis at
// startup is logged, not fatal, since the limiter fails open.
func NewRateLimiter(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) *middleware.RateLimiter {
	if !cfg.Redis.RateLimitEnabled() {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unreachable, rate limiting fails open", "addr", cfg.Redis.Addr, "error", err)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})

	return middleware.NewRateLimiter(rdb, cfg.Redis, logger)
}
