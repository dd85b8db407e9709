package repository

import (
	"context"
	"time"

	"slynk/internal/domain/entity"
)

// PendingSignupRepository is the transient store for signups awaiting OTP verification.
// Records are keyed by lowercase email and expire on their own.
type PendingSignupRepository interface {
	// Get returns domainerrors.ErrPendingSignupNotFound when the key is absent or expired.
	Get(ctx context.Context, email string) (*entity.PendingSignup, error)

	// Set overwrites any record for the email and restarts its TTL.
	Set(ctx context.Context, record *entity.PendingSignup, ttl time.Duration) error

	// Update overwrites the record while keeping its remaining TTL.
	// It returns domainerrors.ErrPendingSignupNotFound if the key expired in the meantime.
	Update(ctx context.Context, record *entity.PendingSignup) error

	Delete(ctx context.Context, email string) error
}
