package service

import (
	"testing"
	"time"

	"slynk/internal/domain/entity"
	"slynk/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTokenService is a mock of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func NewMockTokenService(t *testing.T) *MockTokenService {
	m := &MockTokenService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTokenService) GenerateAccessToken(userID uuid.UUID, role entity.Role) (string, error) {
	args := m.Called(userID, role)

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *MockTokenService) GenerateRefreshToken() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) HashRefreshToken(token string) string {
	return m.Called(token).String(0)
}

func (m *MockTokenService) AccessTokenDuration() time.Duration {
	d, _ := m.Called().Get(0).(time.Duration)

	return d
}

func (m *MockTokenService) RefreshTokenDuration() time.Duration {
	d, _ := m.Called().Get(0).(time.Duration)

	return d
}
