package ratelimit

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler returns fiber middleware limiting requests per client IP. A limiter
// error lets the request through. Rejections become a 429 *fiber.Error for the
// application error handler to render.
func Handler(limiter Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			slog.Warn("rate limiter unavailable", "error", err, "ip", c.IP())
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		}
		return c.Next()
	}
}
