package usecase

import (
	"context"

	"slynk/internal/domain/entity"

	"github.com/google/uuid"
)

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// SessionUsecase covers everything after an account exists: login, token rotation, logout
// and resolving the caller of an authenticated request.
type SessionUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Refresh redeems refreshToken exactly once and issues a new pair.
	Refresh(ctx context.Context, refreshToken string) (*AuthOutput, error)

	// Logout revokes refreshToken if it is known. It never fails.
	Logout(ctx context.Context, refreshToken string)

	// CurrentUser loads the account behind a validated access token.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
