package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"table-reservation/internal/handler/httperr"
	"table-reservation/internal/pkg/config"
	"table-reservation/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var errRateLimited = errs.New("rate limit exceeded")

// tokenBucketScript refills and takes one token atomically.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

type RateLimiter struct {
	rdb    redis.Scripter
	cfg    config.RedisConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimiter returns nil when rdb is nil; a nil limiter lets every request through.
func NewRateLimiter(rdb redis.Scripter, cfg config.RedisConfig, logger *slog.Logger) *RateLimiter {
	if rdb == nil {
		return nil
	}
	return &RateLimiter{rdb: rdb, cfg: cfg, logger: logger, now: time.Now}
}

// Handler limits requests per client IP and route. Redis failures fail open.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := l.key(c)
		args := []any{
			l.now().UnixMilli(),
			l.cfg.RateLimitCapacity,
			l.cfg.RateLimitRefillTokens,
			l.cfg.RateLimitRefillInterval.Milliseconds(),
			int64(l.cfg.RateLimitTTL / time.Second),
		}

		vals, err := tokenBucketScript.Run(c.Request.Context(), l.rdb, []string{key}, args...).Int64Slice()
		if err != nil || len(vals) != 3 {
			l.logger.WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request",
				slog.String("key", key), slog.Any("error", err))
			c.Next()
			return
		}
		allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.RateLimitCapacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000.0))
			c.Header("Retry-After", strconv.Itoa(secs))
			httperr.AbortWithError(c, http.StatusTooManyRequests, errRateLimited, "Too many requests", gin.H{"retry_after": secs})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) key(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return strings.Join([]string{l.cfg.RateLimitPrefix, "ip", ip, "route", c.Request.Method + " " + route}, ":")
}
