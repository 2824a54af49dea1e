package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xelth-com/eckscalego/internal/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth verifies JWT bearer tokens against the given secret and stores the
// claims in the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Username extracts the authenticated operator's username from the request
// context, or "" for unauthenticated requests.
func Username(r *http.Request) string {
	claims, ok := r.Context().Value(UserContextKey).(jwt.MapClaims)
	if !ok {
		return ""
	}
	name, _ := claims["username"].(string)
	return name
}
