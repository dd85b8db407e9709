package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "slynk/internal/delivery/context"
	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	"slynk/internal/domain/service"
	"slynk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokens           service.TokenService
	issuer           *tokenIssuer
	now              func() time.Time
	logger           *slog.Logger
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Logger           *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return newSessionService(params, time.Now)
}

func newSessionService(params SessionServiceParams, now func() time.Time) *sessionService {
	return &sessionService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokens:           params.TokenService,
		issuer:           &tokenIssuer{tokens: params.TokenService, now: now},
		now:              now,
		logger:           params.Logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login checks credentials and opens a session. The verified flag is not consulted.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	email := normalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	tokens, err := srv.issuer.issue(ctx, srv.refreshTokenRepo, user)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{User: user, Tokens: tokens}, nil
}

// Refresh consumes the presented token and issues its replacement in one transaction.
// Expired and orphaned tokens are consumed too, so the delete is committed before failing.
func (srv *sessionService) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthOutput, error) {
	if refreshToken == "" {
		return nil, domainerrors.ErrRefreshTokenMissing
	}

	tokenHash := srv.tokens.HashRefreshToken(refreshToken)

	var (
		output   *usecase.AuthOutput
		rejected error
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		ledger := repoFactory.RefreshTokenRepo()

		stored, err := ledger.ConsumeByHash(ctx, tokenHash)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			rejected = domainerrors.ErrRefreshTokenInvalid

			return nil
		}
		if err != nil {
			return err
		}

		if stored.IsExpired(srv.now()) {
			rejected = domainerrors.ErrRefreshTokenInvalid

			return nil
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, stored.UserID)
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			rejected = domainerrors.ErrSessionUserGone

			return nil
		}
		if err != nil {
			return err
		}

		tokens, err := srv.issuer.issue(ctx, ledger, user)
		if err != nil {
			return err
		}
		output = &usecase.AuthOutput{User: user, Tokens: tokens}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to rotate refresh token")
	}
	if rejected != nil {
		srv.log(ctx).Info("Refresh token rejected", slog.String("reason", rejected.Error()))

		return nil, rejected
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.Any("userID", output.User.ID))

	return output, nil
}

func (srv *sessionService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	if err := srv.refreshTokenRepo.DeleteByHash(ctx, srv.tokens.HashRefreshToken(refreshToken)); err != nil {
		srv.log(ctx).Warn("Failed to revoke refresh token on logout", slog.Any("error", err))
	}
}

func (srv *sessionService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, domainerrors.ErrUserNotFound) {
		return nil, domainerrors.ErrSessionUserGone
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
