package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/repository"
	mockRepo "slynk/internal/mocks/repository"
	"slynk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sessionFixtures struct {
	service *sessionService
	clock   *fakeClock
	users   *fakeUserRepo
	ledger  *fakeLedger
	tokens  *fakeTokens
}

func createTestSessionService(t *testing.T) *sessionFixtures {
	t.Helper()

	f := &sessionFixtures{
		clock:  &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		users:  newFakeUserRepo(),
		ledger: newFakeLedger(),
		tokens: &fakeTokens{},
	}

	f.service = newSessionService(SessionServiceParams{
		TxManager:        &fakeTxManager{users: f.users, ledger: f.ledger},
		UserRepo:         f.users,
		RefreshTokenRepo: f.ledger,
		Hasher:           fakeHasher{},
		TokenService:     f.tokens,
		Logger:           newDiscardLogger(),
	}, f.clock.Now)

	return f
}

func (f *sessionFixtures) seedUser(t *testing.T, verified bool) *entity.User {
	t.Helper()

	user := &entity.User{
		Name:         "Ada",
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "pw:secret1",
		Role:         entity.RoleDeveloper,
		Verified:     verified,
	}
	require.NoError(t, f.users.Create(context.Background(), user))

	return user
}

func TestSessionService_Login_Success(t *testing.T) {
	f := createTestSessionService(t)
	user := f.seedUser(t, true)
	ctx := context.Background()

	out, err := f.service.Login(ctx, &usecase.LoginInput{Email: " ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	claims, err := f.tokens.ValidateAccessToken(out.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, entity.RoleDeveloper, claims.Role)

	stored, err := f.ledger.FindByHash(ctx, "rt:"+out.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, f.clock.now.Add(30*24*time.Hour), stored.ExpiresAt)
}

func TestSessionService_Login_DoesNotRequireVerified(t *testing.T) {
	f := createTestSessionService(t)
	f.seedUser(t, false)

	_, err := f.service.Login(context.Background(), &usecase.LoginInput{Email: "ada@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestSessionService_Login_Failures(t *testing.T) {
	f := createTestSessionService(t)
	f.seedUser(t, true)
	ctx := context.Background()

	_, err := f.service.Login(ctx, &usecase.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	_, err = f.service.Login(ctx, &usecase.LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	assert.Zero(t, f.ledger.count())
}

func TestSessionService_Refresh_Rotates(t *testing.T) {
	f := createTestSessionService(t)
	user := f.seedUser(t, true)
	ctx := context.Background()

	login, err := f.service.Login(ctx, &usecase.LoginInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	refreshed, err := f.service.Refresh(ctx, login.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)
	assert.NotEqual(t, login.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)

	assert.Equal(t, 1, f.ledger.count())
	_, err = f.ledger.FindByHash(ctx, "rt:"+login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, repository.ErrRefreshTokenNotFound)

	// Single use.
	_, err = f.service.Refresh(ctx, login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestSessionService_Refresh_Missing(t *testing.T) {
	f := createTestSessionService(t)

	_, err := f.service.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenMissing)
}

func TestSessionService_Refresh_ExpiredIsReaped(t *testing.T) {
	f := createTestSessionService(t)
	user := f.seedUser(t, true)
	ctx := context.Background()

	require.NoError(t, f.ledger.Create(ctx, &entity.RefreshToken{
		UserID:    user.ID,
		TokenHash: "rt:stale",
		ExpiresAt: f.clock.now.Add(-time.Second),
	}))

	_, err := f.service.Refresh(ctx, "stale")
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	assert.Zero(t, f.ledger.count())
}

func TestSessionService_Refresh_OrphanedToken(t *testing.T) {
	f := createTestSessionService(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Create(ctx, &entity.RefreshToken{
		UserID:    uuid.New(),
		TokenHash: "rt:orphan",
		ExpiresAt: f.clock.now.Add(time.Hour),
	}))

	_, err := f.service.Refresh(ctx, "orphan")
	assert.ErrorIs(t, err, domainerrors.ErrSessionUserGone)
	assert.Zero(t, f.ledger.count())
}

func TestSessionService_Refresh_ConcurrentRedeemOnce(t *testing.T) {
	f := createTestSessionService(t)
	f.seedUser(t, true)
	ctx := context.Background()

	login, err := f.service.Login(ctx, &usecase.LoginInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.Refresh(ctx, login.Tokens.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.ledger.count())
}

func TestSessionService_Refresh_StoreFailure(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	srv := newSessionService(SessionServiceParams{
		TxManager:    txManager,
		TokenService: &fakeTokens{},
		Logger:       newDiscardLogger(),
	}, time.Now)

	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("conn reset"), "failed to consume refresh token")
	txManager.On("Execute", mock.Anything, mock.Anything).Return(dbErr).Once()

	_, err := srv.Refresh(context.Background(), "token")
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.HTTPCode())
}

func TestSessionService_Refresh_TransactionCallback(t *testing.T) {
	txManager := mockRepo.NewMockTransactionManager(t)
	ledger := mockRepo.NewMockRefreshTokenRepository(t)
	users := mockRepo.NewMockUserRepository(t)
	srv := newSessionService(SessionServiceParams{
		TxManager:    txManager,
		TokenService: &fakeTokens{},
		Logger:       newDiscardLogger(),
	}, time.Now)

	userID := uuid.New()
	txManager.On("Execute", mock.Anything, mock.Anything).
		Return(mockRepo.RunWith(&mockRepo.MockRepositoryFactory{Users: users, RefreshTokens: ledger})).Once()
	ledger.On("ConsumeByHash", mock.Anything, "rt:token").
		Return(&entity.RefreshToken{UserID: userID, TokenHash: "rt:token", ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	users.On("FindByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Role: entity.RoleAdmin}, nil).Once()
	ledger.On("Create", mock.Anything, mock.MatchedBy(func(token *entity.RefreshToken) bool {
		return token.UserID == userID && token.TokenHash == "rt:refresh-1"
	})).Return(nil).Once()

	out, err := srv.Refresh(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", out.Tokens.RefreshToken)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)
}

func TestSessionService_Logout(t *testing.T) {
	f := createTestSessionService(t)
	f.seedUser(t, true)
	ctx := context.Background()

	login, err := f.service.Login(ctx, &usecase.LoginInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	f.service.Logout(ctx, login.Tokens.RefreshToken)
	assert.Zero(t, f.ledger.count())

	// Unknown or absent tokens are fine.
	f.service.Logout(ctx, login.Tokens.RefreshToken)
	f.service.Logout(ctx, "")
}

func TestSessionService_Logout_SwallowsStoreErrors(t *testing.T) {
	ledger := mockRepo.NewMockRefreshTokenRepository(t)
	srv := newSessionService(SessionServiceParams{
		RefreshTokenRepo: ledger,
		TokenService:     &fakeTokens{},
		Logger:           newDiscardLogger(),
	}, time.Now)

	ledger.On("DeleteByHash", mock.Anything, "rt:token").Return(errors.New("db down")).Once()

	assert.NotPanics(t, func() { srv.Logout(context.Background(), "token") })
}

func TestSessionService_CurrentUser(t *testing.T) {
	f := createTestSessionService(t)
	user := f.seedUser(t, true)
	ctx := context.Background()

	found, err := f.service.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = f.service.CurrentUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrSessionUserGone)
}
