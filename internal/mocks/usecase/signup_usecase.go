// Package usecase holds testify mocks of the usecase interfaces.
package usecase

import (
	"context"
	"testing"

	"slynk/internal/domain/entity"
	"slynk/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSignupUsecase is a mock of usecase.SignupUsecase.
type MockSignupUsecase struct {
	mock.Mock
}

func NewMockSignupUsecase(t *testing.T) *MockSignupUsecase {
	m := &MockSignupUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSignupUsecase) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.SignupOutput)

	return out, args.Error(1)
}

func (m *MockSignupUsecase) VerifyOTP(ctx context.Context, input *usecase.VerifyOTPInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *MockSignupUsecase) ResendOTP(ctx context.Context, input *usecase.ResendOTPInput) error {
	return m.Called(ctx, input).Error(0)
}

// MockSessionUsecase is a mock of usecase.SessionUsecase.
type MockSessionUsecase struct {
	mock.Mock
}

func NewMockSessionUsecase(t *testing.T) *MockSessionUsecase {
	m := &MockSessionUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *MockSessionUsecase) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, refreshToken)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *MockSessionUsecase) Logout(ctx context.Context, refreshToken string) {
	m.Called(ctx, refreshToken)
}

func (m *MockSessionUsecase) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}
