package repository

import (
	"context"
	"testing"
	"time"

	"slynk/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockPendingSignupRepository is a mock of repository.PendingSignupRepository.
type MockPendingSignupRepository struct {
	mock.Mock
}

func NewMockPendingSignupRepository(t *testing.T) *MockPendingSignupRepository {
	m := &MockPendingSignupRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPendingSignupRepository) Get(ctx context.Context, email string) (*entity.PendingSignup, error) {
	args := m.Called(ctx, email)
	record, _ := args.Get(0).(*entity.PendingSignup)

	return record, args.Error(1)
}

func (m *MockPendingSignupRepository) Set(ctx context.Context, record *entity.PendingSignup, ttl time.Duration) error {
	return m.Called(ctx, record, ttl).Error(0)
}

func (m *MockPendingSignupRepository) Update(ctx context.Context, record *entity.PendingSignup) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockPendingSignupRepository) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
