package middleware

import (
	"context"
	"net/http"
	"strings"

	"managme-project/backend/logging"
	"managme-project/backend/models"
	"managme-project/backend/utils"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser returns the authenticated user resolved by the auth
// middleware, or nil when the request carried no valid session.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// UserResolver resolves the email of a validated token to a user
// profile. A session without a profile row resolves to a minimal guest
// profile rather than an error.
type UserResolver interface {
	GetOrCreateProfile(ctx context.Context, email string) (*models.User, error)
}

// JWTAuthMiddleware validates the bearer token and loads the matching
// user profile into the request context. Requests without a valid token
// are rejected before reaching any handler.
func JWTAuthMiddleware(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := utils.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.GetOrCreateProfile(r.Context(), claims.Email)
			if err != nil {
				logging.Logger.Errorf("Event ID: JWT_AUTH_PROFILE_FAILED, Description: Failed to resolve profile for %s on request to %s %s: %v", claims.Email, r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
