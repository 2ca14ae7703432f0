package http

import (
	"context"
	"net/http"
	"strings"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "session-claims"

// AuthMiddleware validates the bearer token and stashes the session
// claims in the request context.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a handler to the listed session roles.
func RequireRoles(roles ...domain.SessionRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.SessionRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r)
			if !ok {
				respondError(w, http.StatusUnauthorized, "missing session")
				return
			}
			if !allowed[claims.Role] {
				logger.Warn("Role denied", "employeeID", claims.EmployeeID, "role", claims.Role, "path", r.URL.Path)
				respondError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFrom extracts the session claims placed by Authenticate.
func ClaimsFrom(r *http.Request) (*security.SessionClaims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(*security.SessionClaims)
	return claims, ok
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
