package service

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockOTPGenerator is a mock of service.OTPGenerator.
type MockOTPGenerator struct {
	mock.Mock
}

func NewMockOTPGenerator(t *testing.T) *MockOTPGenerator {
	m := &MockOTPGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOTPGenerator) Generate() (string, string, error) {
	args := m.Called()

	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockOTPGenerator) Hash(code string) string {
	return m.Called(code).String(0)
}

func (m *MockOTPGenerator) Matches(code, codeHash string) bool {
	return m.Called(code, codeHash).Bool(0)
}
