package service

import (
	"errors"
	"fmt"

	"github.com/axonlms/integrity-engine/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Role identifies the caller class encoded in platform tokens.
type Role string

const (
	RoleLearner  Role = "learner"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// Claims extends JWT standard claims with the platform identity fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

// AuthService verifies platform-issued JWTs. Tokens are minted by the main
// platform with a shared HMAC secret; the engine only validates them.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
