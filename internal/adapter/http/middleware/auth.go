package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user
	UserContextKey ContextKey = "user"

	// UserIDHeader carries the acting user when token auth is disabled.
	UserIDHeader = "X-User-ID"
)

// AuthMiddleware requires a valid bearer token. m may be nil.
func AuthMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, reason, msg string) {
		if m != nil {
			m.AuthFailures.WithLabelValues(reason).Inc()
		}
		writeFailure(w, http.StatusUnauthorized, msg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, "missing", "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				reject(w, "malformed", "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(token)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired"
				}
				reject(w, reason, "invalid or expired token")
				return
			}

			user := &domain.User{
				ID:    claims.UserID,
				Email: claims.Email,
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// HeaderAuth trusts the X-User-ID header. It is meant for deployments where
// an upstream gateway has already authenticated the caller.
func HeaderAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			writeFailure(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &domain.User{ID: userID})))
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUserFromContext extracts the authenticated user from context
func GetUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// UserIDFromContext returns the acting user's id, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	if user, ok := GetUserFromContext(ctx); ok {
		return user.ID
	}
	return ""
}
