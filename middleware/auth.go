package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"nba-predictions-go/models"
	"nba-predictions-go/services"
)

// AuthCookieName holds the JWT for browser clients
const AuthCookieName = "auth_token"

// TokenResolver turns a bearer token into a user
type TokenResolver interface {
	GetUserFromToken(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	tokens TokenResolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokens TokenResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid token with a JSON 401
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.getUserFromRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(services.ContextWithUser(r.Context(), user)))
	})
}

// OptionalAuth adds the user to the context when a valid token is present
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, _ := m.getUserFromRequest(r); user != nil {
			r = r.WithContext(services.ContextWithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// getUserFromRequest reads a Bearer header first, then the auth cookie
func (m *AuthMiddleware) getUserFromRequest(r *http.Request) (*models.User, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return m.tokens.GetUserFromToken(r.Context(), parts[1])
		}
	}

	cookie, err := r.Cookie(AuthCookieName)
	if err == nil && cookie.Value != "" {
		return m.tokens.GetUserFromToken(r.Context(), cookie.Value)
	}

	return nil, http.ErrNoCookie
}

// GetUserFromContext retrieves the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	return services.CurrentUser(r.Context())
}

// IsAuthenticated checks if the request has an authenticated user
func IsAuthenticated(r *http.Request) bool {
	return GetUserFromContext(r) != nil
}
