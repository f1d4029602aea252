package handlers

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"meridianwealth/internal/domain"
	"meridianwealth/internal/util"

	apperrors "meridianwealth/pkg/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticate validates the bearer token and loads the user into the
// request context. Hands back 401 on any failure, handlers below it can
// assume UserFrom returns a live account.
func Authenticate(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, apperrors.Unauthorized("missing bearer token"))
				return
			}

			claims, err := util.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, apperrors.Unauthorized("invalid or expired token"))
				return
			}

			user, err := util.GetUserFromToken(db, claims)
			if err != nil {
				writeError(w, apperrors.Unauthorized("account not found"))
				return
			}
			if !user.IsActive {
				writeError(w, apperrors.Forbidden("account is deactivated"))
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin accounts. Must sit below Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFrom(r.Context())
		if user == nil || !user.IsAdmin {
			writeError(w, apperrors.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFrom returns the authenticated user, or nil outside Authenticate
func UserFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// SecurityHeaders sets the baseline response headers on every route
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
