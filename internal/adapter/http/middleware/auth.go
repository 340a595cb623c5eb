package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/auth"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and stores the operator it
// identifies in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.User())))
		})
	}
}

// StaticOperator attaches the same operator to every request. It is used
// when token authentication is disabled.
func StaticOperator(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects operators whose role ranks below minRole.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if rank(user.Role) < rank(minRole) {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rank(role domain.Role) int {
	switch role {
	case domain.RoleAdmin:
		return 3
	case domain.RoleOperator:
		return 2
	case domain.RoleViewer:
		return 1
	default:
		return 0
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated operator from ctx.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
