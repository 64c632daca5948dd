package middleware

import (
	"context"
	"net/http"
	"strings"

	"vms-backend/internal/auth"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware validates the Bearer token and stores the resulting
// actor in the request context. Role checks happen in the services;
// RequireRoles exists for routes with no service behind them.
type AuthMiddleware struct {
	jwt *auth.JWTManager
}

func NewAuthMiddleware(jwt *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			writeAuthError(w, "missing or malformed Authorization header")
			return
		}
		claims, err := m.jwt.Parse(token)
		if err != nil {
			writeAuthError(w, "invalid or expired token")
			return
		}
		actor := auth.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// extractToken reads the Bearer header, falling back to the token query
// parameter for websocket handshakes where browsers cannot set headers.
func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// RequireRoles rejects authenticated requests whose role is not listed.
func (m *AuthMiddleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok || !actor.HasRole(roles...) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "insufficient permissions"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetActorFromContext returns the authenticated actor, if any.
func GetActorFromContext(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(auth.Actor)
	return actor, ok
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "` + msg + `"}`))
}
