package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	RequestIDKey contextKey = "requestId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
	logger  *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc, logger: logger}
}

// RequireUser validates the identity token from the Authorization header,
// or the token query param for WebSocket upgrades.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		principal, err := m.authSvc.ResolveUser(r.Context(), claims)
		if err != nil {
			m.logger.Error("Failed to resolve user",
				zap.String("userId", claims.Subject),
				zap.Any("request_id", r.Context().Value(RequestIDKey)),
				zap.Error(err),
			)
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireUser
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		if p == nil {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}
		if !p.IsAdmin() {
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipal extracts the authenticated caller from context
func GetPrincipal(ctx context.Context) *model.Principal {
	if v, ok := ctx.Value(PrincipalKey).(*model.Principal); ok {
		return v
	}
	return nil
}

// GetUserID extracts the caller's user ID from context
func GetUserID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
