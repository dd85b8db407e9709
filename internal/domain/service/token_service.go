package service

import (
	"time"

	"slynk/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess marks access tokens so other JWTs signed with the same key are rejected.
const TokenTypeAccess = "access"

// Claims defines the custom claims for access tokens.
type Claims struct {
	UserID uuid.UUID   `json:"id"`
	Role   entity.Role `json:"role"`
	Type   string      `json:"type"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies access tokens and produces opaque refresh tokens.
type TokenService interface {
	GenerateAccessToken(userID uuid.UUID, role entity.Role) (string, error)

	// ValidateAccessToken verifies signature, expiry and token type.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// GenerateRefreshToken returns a high-entropy opaque token (64 random bytes, hex encoded).
	GenerateRefreshToken() (string, error)

	// HashRefreshToken derives the value stored in the ledger. The raw token is never persisted.
	HashRefreshToken(token string) string

	AccessTokenDuration() time.Duration
	RefreshTokenDuration() time.Duration
}
