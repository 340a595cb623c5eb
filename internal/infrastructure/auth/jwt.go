package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/gowallet/internal/domain"
)

// Issuer is the iss claim of operator tokens.
const Issuer = "gowallet"

// Claims represents the JWT claims of an operator token
type Claims struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// User returns the operator the claims identify.
func (c *Claims) User() *domain.User {
	return &domain.User{
		ID:   c.UserID,
		Name: c.Name,
		Role: c.Role,
	}
}

// JWTManager manages JWT token creation and validation
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate generates a new JWT token for an operator
func (m *JWTManager) Generate(user *domain.User) (string, error) {
	if !user.Role.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidRequest, user.Role)
	}

	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify verifies a JWT token and returns the claims
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(Issuer),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if !claims.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
