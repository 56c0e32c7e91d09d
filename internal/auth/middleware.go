package auth

import (
	"net/http"
	"strings"

	"caloriehub/internal/userctx"
)

// Middleware gates every non-public route behind a Bearer token.
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth verifies the Authorization header and attaches the caller
// identity to the request context before any handler runs.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicRoute(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authenticateHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.WithUser(r.Context(), user)))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (userctx.User, error) {
	if authHeader == "" {
		return userctx.User{}, ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return userctx.User{}, ErrInvalidToken
	}

	return m.service.VerifyJWT(parts[1])
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"error":"Authentication required"}`))
}

// isPublicRoute lists the routes reachable without a token. Verify-token
// is public only via POST with the token in the body; the GET variant
// reports on the header token and stays gated.
func isPublicRoute(method, path string) bool {
	if path == "/healthz" || path == "/api/auth/health" {
		return true
	}

	if method != http.MethodPost {
		return false
	}

	switch path {
	case "/api/auth/register", "/api/auth/login", "/api/auth/verify-token":
		return true
	}
	return false
}
