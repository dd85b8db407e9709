// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"slynk/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository persists verified accounts.
type UserRepository interface {
	// FindByID returns domainerrors.ErrUserNotFound when no row matches.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail returns domainerrors.ErrUserNotFound when no row matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// ExistsByEmailOrUsername reports whether any user holds the email or the username.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)

	// ExistsByEmail and ExistsByPhone read the primary, so they see a row committed a moment ago.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Create inserts the user and fills its ID. A unique violation on email, username
	// or phone surfaces as domainerrors.ErrAccountAlreadyExists.
	Create(ctx context.Context, user *entity.User) error
}
