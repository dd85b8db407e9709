package repository

import (
	"context"
	"time"

	"slynk/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrRefreshTokenNotFound is returned when no row matches a token hash.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository is the ledger of issued refresh tokens, keyed by token hash.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash returns ErrRefreshTokenNotFound when absent. Expiry is not checked.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// ConsumeByHash atomically deletes the row and returns it, so a token can be
	// redeemed at most once even under concurrent refreshes.
	ConsumeByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteByHash removes the row if present. Deleting an absent token is not an error.
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteExpired removes all rows expiring at or before now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
