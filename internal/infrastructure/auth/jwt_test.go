package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:   "user-123",
		Name: "Olga",
		Role: domain.RoleOperator,
	}

	token, err := manager.Generate(user)
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, user, claims.User())
	assert.Equal(t, auth.Issuer, claims.Issuer)
}

func TestJWTManagerRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	_, err := manager.Generate(&domain.User{ID: "x", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func signed(t *testing.T, secret string, claims auth.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTManagerVerifyFailures(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)
	now := time.Now()

	expired := signed(t, "secret", auth.Claims{
		UserID: "expired",
		Role:   domain.RoleViewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Minute)),
		},
	})

	foreign := signed(t, "secret", auth.Claims{
		UserID: "someone",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "elsewhere",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})

	badRole := signed(t, "secret", auth.Claims{
		UserID: "someone",
		Role:   "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})

	tests := []struct {
		name    string
		manager *auth.JWTManager
		token   string
		wantErr error
	}{
		{"expired", manager, expired, domain.ErrExpiredToken},
		{"wrong secret", auth.NewJWTManager("other-secret", time.Minute), foreign, domain.ErrInvalidToken},
		{"wrong issuer", manager, foreign, domain.ErrInvalidToken},
		{"unknown role", manager, badRole, domain.ErrInvalidToken},
		{"malformed", manager, "not-a-token", domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
