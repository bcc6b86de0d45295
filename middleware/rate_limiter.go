package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/tirzah-studio/site-api/pkg/apperrors"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/pkg/metrics"
)

const msgTooManyRequests = "Too many requests from this IP, please try again later."

// RateLimiterConfig holds the configuration for rate limiting.
type RateLimiterConfig struct {
	Group         string        // label for metrics and the Redis key
	MaxRequests   int           // requests allowed per window
	Window        time.Duration // fixed window length
	BlockDuration time.Duration // how long an IP stays blocked after exceeding the limit
	Redis         *redis.Client // nil selects the in-memory limiter
	Logger        logger.Logger
}

func tooManyRequests(group string) error {
	metrics.RateLimitedTotal.WithLabelValues(group).Inc()
	return apperrors.NewTooManyRequests(apperrors.ErrCodeRateLimitExceeded, msgTooManyRequests)
}

// RateLimiterMiddleware limits requests per client IP. With Redis the
// counters are shared across instances; without it each process keeps its
// own token buckets.
func RateLimiterMiddleware(cfg RateLimiterConfig) echo.MiddlewareFunc {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Redis == nil {
		return memoryLimiter(cfg)
	}

	log := cfg.Logger.WithComponent("rate_limiter")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			allowed, err := allow(ctx, cfg, c.RealIP())
			if err != nil {
				// Fail open.
				log.WithContext(ctx).Warn("Rate limiter unavailable, allowing request",
					logger.String("group", cfg.Group), logger.Err(err))
				return next(c)
			}
			if !allowed {
				return tooManyRequests(cfg.Group)
			}
			return next(c)
		}
	}
}

func rateKeys(group, ip string) (count, block string) {
	return fmt.Sprintf("ratelimit:%s:%s", group, ip), fmt.Sprintf("ratelimit:%s:%s:blocked", group, ip)
}

// allow counts the request in the current fixed window and blocks the IP
// once the window's budget is spent.
func allow(ctx context.Context, cfg RateLimiterConfig, ip string) (bool, error) {
	countKey, blockKey := rateKeys(cfg.Group, ip)

	blocked, err := cfg.Redis.Exists(ctx, blockKey).Result()
	if err != nil {
		return false, err
	}
	if blocked > 0 {
		return false, nil
	}

	n, err := cfg.Redis.Incr(ctx, countKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := cfg.Redis.Expire(ctx, countKey, cfg.Window).Err(); err != nil {
			return false, err
		}
	}
	if n <= int64(cfg.MaxRequests) {
		return true, nil
	}

	if cfg.BlockDuration > 0 {
		if err := cfg.Redis.Set(ctx, blockKey, 1, cfg.BlockDuration).Err(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func memoryLimiter(cfg RateLimiterConfig) echo.MiddlewareFunc {
	expires := cfg.BlockDuration
	if expires < cfg.Window {
		expires = cfg.Window
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.MaxRequests) / cfg.Window.Seconds()),
		Burst:     cfg.MaxRequests,
		ExpiresIn: expires,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewForbidden(apperrors.ErrCodeRateLimitExceeded, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return tooManyRequests(cfg.Group)
		},
	})
}
