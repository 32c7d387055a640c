package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Counter increments a counter that expires ttl after its first increment
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Limits are the allowed requests per client IP. Zero disables a level.
type Limits struct {
	PerSecond int
	PerDay    int
}

// RateLimit limits requests per client IP per second and per day. When the
// counter store fails the request is let through.
func RateLimit(counter Counter, limits Limits) fiber.Handler {
	return rateLimit(counter, limits, time.Now)
}

func rateLimit(counter Counter, limits Limits, now func() time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		t := now()
		ip := c.IP()

		if limits.PerSecond > 0 {
			key := fmt.Sprintf("rl:ip:%s:second:%d", ip, t.Unix())
			count, err := counter.Incr(ctx, key, 2*time.Second)
			if err != nil {
				log.Printf("Warning: rate limit counter failed: %v", err)
				return c.Next()
			}

			if count > int64(limits.PerSecond) {
				c.Set("X-RateLimit-Limit-Second", strconv.Itoa(limits.PerSecond))
				c.Set("X-RateLimit-Remaining-Second", "0")
				c.Set("Retry-After", "1")

				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error":       "rate_limit_exceeded",
					"message":     "Too many requests per second",
					"limit_type":  "per_second",
					"limit":       limits.PerSecond,
					"retry_after": 1,
				})
			}
		}

		if limits.PerDay > 0 {
			key := fmt.Sprintf("rl:ip:%s:day:%s", ip, t.Format("2006-01-02"))
			// 25 hours to cover timezone differences
			count, err := counter.Incr(ctx, key, 25*time.Hour)
			if err != nil {
				log.Printf("Warning: rate limit counter failed: %v", err)
				return c.Next()
			}

			if count > int64(limits.PerDay) {
				tomorrow := t.AddDate(0, 0, 1)
				midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
				retryAfter := int64(midnight.Sub(t).Seconds())

				c.Set("X-RateLimit-Limit-Day", strconv.Itoa(limits.PerDay))
				c.Set("X-RateLimit-Remaining-Day", "0")
				c.Set("X-RateLimit-Reset-Day", strconv.FormatInt(midnight.Unix(), 10))
				c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error":       "daily_quota_exceeded",
					"message":     "Daily quota exceeded",
					"limit_type":  "per_day",
					"limit":       limits.PerDay,
					"used":        count,
					"retry_after": retryAfter,
					"reset_at":    midnight.Format(time.RFC3339),
				})
			}

			c.Set("X-RateLimit-Remaining-Day", strconv.FormatInt(int64(limits.PerDay)-count, 10))
		}

		c.Set("X-RateLimit-Limit-Second", strconv.Itoa(limits.PerSecond))
		c.Set("X-RateLimit-Limit-Day", strconv.Itoa(limits.PerDay))

		return c.Next()
	}
}
