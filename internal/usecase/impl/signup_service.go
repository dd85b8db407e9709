package impl

import (
	"context"
	"log/slog"
	"time"

	"slynk/config"
	deliverycontext "slynk/internal/delivery/context"
	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	"slynk/internal/domain/service"
	"slynk/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// signupService implements the SignupUsecase interface.
type signupService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	pendingRepo repository.PendingSignupRepository
	hasher      service.PasswordHasher
	otp         service.OTPGenerator
	mailer      service.Mailer
	issuer      *tokenIssuer
	policy      otpPolicy
	now         func() time.Time
	logger      *slog.Logger
}

// SignupServiceParams holds dependencies for SignupService, injected by Fx.
type SignupServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	PendingRepo  repository.PendingSignupRepository
	Hasher       service.PasswordHasher
	OTPGenerator service.OTPGenerator
	Mailer       service.Mailer
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewSignupService is the constructor for signupService.
func NewSignupService(params SignupServiceParams) usecase.SignupUsecase {
	return newSignupService(params, time.Now)
}

func newSignupService(params SignupServiceParams, now func() time.Time) *signupService {
	return &signupService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		pendingRepo: params.PendingRepo,
		hasher:      params.Hasher,
		otp:         params.OTPGenerator,
		mailer:      params.Mailer,
		issuer:      &tokenIssuer{tokens: params.TokenService, now: now},
		policy:      newOTPPolicy(params.Config),
		now:         now,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *signupService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup stages a pending record and emails its OTP. Nothing durable is written.
func (srv *signupService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	email := normalizeEmail(input.Email)
	username := normalizeUsername(input.Username)
	phone := normalizePhone(input.Phone)

	role, ok := entity.ParseRole(input.Role)
	if !ok {
		return nil, domainerrors.NewValidationError("role must be one of innovator, developer, investor, admin")
	}

	exists, err := srv.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check existing account")
	}
	if exists {
		return nil, domainerrors.ErrAccountAlreadyExists
	}

	if phone != "" {
		taken, err := srv.userRepo.ExistsByPhone(ctx, phone)
		if err != nil {
			return nil, errors.Wrap(err, "failed to check phone")
		}
		if taken {
			return nil, domainerrors.ErrPhoneAlreadyInUse
		}
	}

	now := srv.now()

	existing, err := srv.pendingRepo.Get(ctx, email)
	switch {
	case err == nil:
		if existing.InCooldown(now, srv.policy.cooldown) {
			return nil, domainerrors.ErrOTPCooldown
		}
	case errors.Is(err, domainerrors.ErrPendingSignupNotFound):
	default:
		return nil, errors.Wrap(err, "failed to load pending signup")
	}

	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	code, codeHash, err := srv.otp.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate otp")
	}

	record := &entity.PendingSignup{
		Name:         input.Name,
		Username:     username,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		OTPHash:      codeHash,
		OTPExpiresAt: now.Add(srv.policy.ttl),
		CreatedAt:    now,
		LastSentAt:   now,
		Attempts:     0,
	}
	if err := srv.pendingRepo.Set(ctx, record, srv.policy.ttl); err != nil {
		return nil, errors.Wrap(err, "failed to store pending signup")
	}

	if err := srv.sendOTP(ctx, record, code, false); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Signup staged, OTP sent", slog.String("email", email), slog.Any("role", role))

	return &usecase.SignupOutput{Email: email, ExpiresIn: srv.policy.ttl}, nil
}

// VerifyOTP checks the submitted code and, on a match, promotes the pending record into a user
// and opens its first session.
func (srv *signupService) VerifyOTP(ctx context.Context, input *usecase.VerifyOTPInput) (*usecase.AuthOutput, error) {
	email := normalizeEmail(input.Email)

	pending, err := srv.pendingRepo.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	if pending.AttemptsExhausted(srv.policy.maxAttempts) {
		srv.discardPending(ctx, email)

		return nil, domainerrors.ErrTooManyAttempts
	}

	if pending.IsOTPExpired(srv.now()) {
		srv.discardPending(ctx, email)

		return nil, domainerrors.ErrOTPExpired
	}

	if !srv.otp.Matches(input.OTP, pending.OTPHash) {
		return nil, srv.recordFailedAttempt(ctx, pending)
	}

	user := entity.NewVerifiedUser(pending, srv.now())

	var tokens *usecase.TokenPair
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Create(ctx, user); err != nil {
			return err
		}

		pair, err := srv.issuer.issue(ctx, repoFactory.RefreshTokenRepo(), user)
		if err != nil {
			return err
		}
		tokens = pair

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountAlreadyExists) {
			// The record can never be promoted now, whoever holds the conflicting value.
			srv.discardPending(ctx, email)

			return nil, srv.explainConflict(ctx, pending)
		}

		return nil, errors.Wrap(err, "failed to create verified user")
	}

	srv.discardPending(ctx, email)

	srv.log(ctx).Info("Account verified", slog.Any("userID", user.ID), slog.Any("role", user.Role))

	return &usecase.AuthOutput{User: user, Tokens: tokens}, nil
}

// explainConflict tells a concurrent verify of the same signup apart from another account
// claiming the username or phone after this signup was staged.
func (srv *signupService) explainConflict(ctx context.Context, pending *entity.PendingSignup) error {
	verified, err := srv.userRepo.ExistsByEmail(ctx, pending.Email)
	if err != nil {
		return errors.Wrap(err, "failed to resolve signup conflict")
	}
	if verified {
		return domainerrors.ErrAccountAlreadyVerified
	}

	if pending.Phone != "" {
		taken, err := srv.userRepo.ExistsByPhone(ctx, pending.Phone)
		if err != nil {
			return errors.Wrap(err, "failed to resolve signup conflict")
		}
		if taken {
			return domainerrors.ErrPhoneAlreadyInUse
		}
	}

	return domainerrors.ErrAccountAlreadyExists
}

// recordFailedAttempt counts a wrong code. The failure that uses up the budget ends the signup,
// but that submission is still answered as a wrong code.
func (srv *signupService) recordFailedAttempt(ctx context.Context, pending *entity.PendingSignup) error {
	pending.Attempts++

	if pending.AttemptsExhausted(srv.policy.maxAttempts) {
		srv.discardPending(ctx, pending.Email)
		srv.log(ctx).Warn("OTP attempts exhausted", slog.String("email", pending.Email))

		return domainerrors.ErrInvalidOTP
	}

	if err := srv.pendingRepo.Update(ctx, pending); err != nil {
		return errors.Wrap(err, "failed to record otp attempt")
	}

	srv.log(ctx).Info("Invalid OTP submitted",
		slog.String("email", pending.Email),
		slog.Int("attempts", pending.Attempts),
	)

	return domainerrors.ErrInvalidOTP
}

// ResendOTP replaces the code of a pending signup and restores its full attempt budget.
func (srv *signupService) ResendOTP(ctx context.Context, input *usecase.ResendOTPInput) error {
	email := normalizeEmail(input.Email)

	pending, err := srv.pendingRepo.Get(ctx, email)
	if err != nil {
		return err
	}

	now := srv.now()
	if pending.InCooldown(now, srv.policy.cooldown) {
		return domainerrors.ErrOTPCooldown
	}

	code, codeHash, err := srv.otp.Generate()
	if err != nil {
		return errors.Wrap(err, "failed to generate otp")
	}

	pending.Reissue(codeHash, now, srv.policy.ttl)
	if err := srv.pendingRepo.Set(ctx, pending, srv.policy.ttl); err != nil {
		return errors.Wrap(err, "failed to store pending signup")
	}

	if err := srv.sendOTP(ctx, pending, code, true); err != nil {
		return err
	}

	srv.log(ctx).Info("OTP resent", slog.String("email", email))

	return nil
}

func (srv *signupService) sendOTP(ctx context.Context, pending *entity.PendingSignup, code string, resend bool) error {
	err := srv.mailer.SendOTP(ctx, &service.OTPMail{
		To:       pending.Email,
		Name:     pending.Name,
		Code:     code,
		ValidFor: srv.policy.ttl,
		Resend:   resend,
	})
	if err != nil {
		srv.log(ctx).Error("Failed to send OTP email", slog.String("email", pending.Email), slog.Any("error", err))

		return domainerrors.ErrMailDeliveryFailed.WrapMessage(err.Error())
	}

	return nil
}

// discardPending is best-effort: the outcome of the request does not depend on it.
func (srv *signupService) discardPending(ctx context.Context, email string) {
	if err := srv.pendingRepo.Delete(ctx, email); err != nil {
		srv.log(ctx).Warn("Failed to delete pending signup", slog.String("email", email), slog.Any("error", err))
	}
}
