package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicportal/admin-api/internal/api/metrics"
	"github.com/civicportal/admin-api/internal/core/domain"
)

// Limiter counts one hit for key and reports whether it is still allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit refuses requests once the client exceeds the limiter's quota.
// Authenticated callers are counted by user id, anonymous ones by the IP the
// router's IPExtractor reports. Limiter errors let the request through.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := clientKey(c)
			ok, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("client", key).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !ok {
				metrics.IssueReportsThrottledTotal.Inc()
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}

func clientKey(c echo.Context) string {
	if uid, _ := c.Get("user_id").(string); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}
