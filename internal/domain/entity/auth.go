package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one long-lived session. Only the keyed hash of the opaque token is stored.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
