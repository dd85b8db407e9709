package repository

import (
	"context"
	"testing"

	"slynk/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockTransactionManager is a mock of repository.TransactionManager.
// Use RunWith to execute the callback against a factory.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager(t *testing.T) *MockTransactionManager {
	m := &MockTransactionManager{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)
	if run, ok := args.Get(0).(func(func(repository.RepositoryFactory) error) error); ok {
		return run(fn)
	}

	return args.Error(0)
}

// RunWith makes Execute invoke the callback with factory and return its error.
func RunWith(factory repository.RepositoryFactory) func(func(repository.RepositoryFactory) error) error {
	return func(fn func(repository.RepositoryFactory) error) error {
		return fn(factory)
	}
}

// MockRepositoryFactory hands out fixed repositories.
type MockRepositoryFactory struct {
	Users         repository.UserRepository
	RefreshTokens repository.RefreshTokenRepository
}

func (f *MockRepositoryFactory) UserRepo() repository.UserRepository {
	return f.Users
}

func (f *MockRepositoryFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return f.RefreshTokens
}
