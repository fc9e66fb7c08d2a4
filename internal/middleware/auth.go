package middleware

import (
	"context"
	"net/http"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFrom returns the session claims injected by RequireAuth.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// WithClaims returns a context carrying the given session claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RequireAuth validates the session cookie and injects the token claims into
// the request context. A missing cookie, bad signature, or expired token all
// reject the request with 401.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
				return
			}

			claims, err := tokens.Verify(cookie.Value)
			if err != nil {
				apperr.WriteError(w, apperr.Unauthorized("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin rejects callers whose session does not carry the admin flag.
// Must be mounted after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok || !claims.IsAdmin {
			apperr.WriteError(w, apperr.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
