// Package service holds testify mocks of the domain service interfaces.
package service

import (
	"context"
	"testing"

	"slynk/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock of service.Mailer.
type MockMailer struct {
	mock.Mock
}

func NewMockMailer(t *testing.T) *MockMailer {
	m := &MockMailer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockMailer) SendOTP(ctx context.Context, mail *service.OTPMail) error {
	return m.Called(ctx, mail).Error(0)
}
