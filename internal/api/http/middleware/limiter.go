package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/caseservice/config"
)

// NewLimiter rate limits per client IP with a sliding window. Counters live
// in Redis when a client is given, in process memory otherwise.
func NewLimiter(cfg config.RateLimitConfig, rdb *redis.Client) fiber.Handler {
	max := cfg.Max
	if max <= 0 {
		max = 100
	}
	exp := time.Duration(cfg.ExpirationSeconds) * time.Second
	if exp <= 0 {
		exp = time.Minute
	}

	lc := limiter.Config{
		Max:               max,
		Expiration:        exp,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached: func(c fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	}
	if rdb != nil {
		lc.Storage = fiberredis.NewFromConnection(rdb)
	}
	return limiter.New(lc)
}
