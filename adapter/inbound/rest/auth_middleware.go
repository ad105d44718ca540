package rest

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

type AuthMiddleware struct {
	authService  inbound.AuthService
	logger       outbound.Logger
	enabled      atomic.Bool
	publicRoutes []string
	queryToken   map[string]bool
}

// NewAuthMiddleware guards every route except health and the given public
// paths (for instance the metrics endpoint).
func NewAuthMiddleware(authService inbound.AuthService, logger outbound.Logger, enabled bool, publicRoutes ...string) *AuthMiddleware {
	m := &AuthMiddleware{
		authService:  authService,
		logger:       logger,
		publicRoutes: append([]string{"/api/health"}, publicRoutes...),
		queryToken:   make(map[string]bool),
	}
	m.enabled.Store(enabled)
	return m
}

func (m *AuthMiddleware) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// AllowQueryToken accepts ?token= on path, for clients that cannot set
// headers such as browser websockets
func (m *AuthMiddleware) AllowQueryToken(path string) {
	m.queryToken[path] = true
}

func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled.Load() || m.isPublicRoute(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := m.extractToken(r)
		if token == "" {
			m.unauthorized(w, "missing token")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			m.unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetClaimsFromContext(ctx context.Context) *inbound.TokenClaims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*inbound.TokenClaims); ok {
		return claims
	}
	return nil
}

func (m *AuthMiddleware) isPublicRoute(path string) bool {
	for _, route := range m.publicRoutes {
		if path == route {
			return true
		}
	}
	return false
}

func (m *AuthMiddleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if m.queryToken[r.URL.Path] {
			return r.URL.Query().Get("token")
		}
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

func (m *AuthMiddleware) unauthorized(w http.ResponseWriter, message string) {
	m.logger.Warn("Unauthorized access", "message", message)
	writeError(w, http.StatusUnauthorized, "unauthorized", message)
}
