package impl

import (
	"context"
	"time"

	"slynk/internal/domain/entity"
	"slynk/internal/domain/repository"
	"slynk/internal/domain/service"
	"slynk/internal/usecase"

	"github.com/pkg/errors"
)

// tokenIssuer mints an access token and records a new refresh token in the ledger it is handed,
// which may be bound to an open transaction.
type tokenIssuer struct {
	tokens service.TokenService
	now    func() time.Time
}

func (i *tokenIssuer) issue(ctx context.Context, ledger repository.RefreshTokenRepository, user *entity.User) (*usecase.TokenPair, error) {
	accessToken, err := i.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	refreshToken, err := i.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	record := &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: i.tokens.HashRefreshToken(refreshToken),
		ExpiresAt: i.now().Add(i.tokens.RefreshTokenDuration()),
	}
	if err := ledger.Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	return &usecase.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresIn:  i.tokens.AccessTokenDuration(),
		RefreshExpiresIn: i.tokens.RefreshTokenDuration(),
	}, nil
}
