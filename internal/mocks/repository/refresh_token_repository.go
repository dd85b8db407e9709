package repository

import (
	"context"
	"testing"
	"time"

	"slynk/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockRefreshTokenRepository is a mock of repository.RefreshTokenRepository.
type MockRefreshTokenRepository struct {
	mock.Mock
}

func NewMockRefreshTokenRepository(t *testing.T) *MockRefreshTokenRepository {
	m := &MockRefreshTokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRefreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	token, _ := args.Get(0).(*entity.RefreshToken)

	return token, args.Error(1)
}

func (m *MockRefreshTokenRepository) ConsumeByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	token, _ := args.Get(0).(*entity.RefreshToken)

	return token, args.Error(1)
}

func (m *MockRefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	removed, _ := args.Get(0).(int64)

	return removed, args.Error(1)
}
