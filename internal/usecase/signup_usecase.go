// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"slynk/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput is the structurally validated signup form.
type SignupInput struct {
	Name     string
	Username string
	Email    string
	Phone    string
	Password string
	Role     string
}

// VerifyOTPInput carries the code the user received by email.
type VerifyOTPInput struct {
	Email string
	OTP   string
}

// ResendOTPInput identifies the pending signup to re-send a code for.
type ResendOTPInput struct {
	Email string
}

// --- Output DTOs ---

// SignupOutput acknowledges a staged signup. It never carries the code.
type SignupOutput struct {
	Email     string
	ExpiresIn time.Duration
}

// TokenPair is a freshly issued access token and refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// AuthOutput is returned by every operation that starts a session.
type AuthOutput struct {
	User   *entity.User
	Tokens *TokenPair
}

// SignupUsecase drives the two-phase signup: stage a pending record, then promote it on a valid OTP.
type SignupUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*SignupOutput, error)
	VerifyOTP(ctx context.Context, input *VerifyOTPInput) (*AuthOutput, error)
	ResendOTP(ctx context.Context, input *ResendOTPInput) error
}
