// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"slynk/config"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher reads the work factor from auth.bcryptCost and clamps it to bcrypt's range.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return newBcryptHasher(cost)
}

func newBcryptHasher(cost int) *bcryptHasher {
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash. Salt generation is handled by bcrypt.
// Passwords over 72 bytes are a client error, not a hashing failure.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domainerrors.NewValidationError("password must be at most 72 bytes long")
	}
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
