package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blogify/backend/internal/apperr"
)

// RateLimit caps requests per client IP within a fixed window, backed by
// Redis so the limit holds across replicas. Used to guard the credential
// endpoints. If Redis is unreachable the request is let through; losing the
// limiter must not take down sign-in.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + r.URL.Path + ":" + clientIP(r)

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				logger.WithError(err).Warn("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}

			if count > int64(limit) {
				logger.WithFields(logrus.Fields{
					"ip":   clientIP(r),
					"path": r.URL.Path,
				}).Warn("rate limit exceeded")
				apperr.WriteError(w, &apperr.Error{
					Status:  http.StatusTooManyRequests,
					Message: "too many requests, please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
