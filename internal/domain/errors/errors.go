package errors

import (
	"net/http"

	"slynk/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-facing message
	Details() string   // Optional detail, never shown in production
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context while keeping it matchable with errors.Is.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

func (e *BaseError) Message() string {
	return e.message
}

func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy carrying details. The copy no longer matches the original with errors.Is.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Validation
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Invalid request",
		"",
	)

	// Signup conflicts
	ErrAccountAlreadyExists = NewBaseError(
		http.StatusBadRequest,
		"ACCOUNT_ALREADY_EXISTS",
		"Email or username already exists",
		"",
	)

	ErrPhoneAlreadyInUse = NewBaseError(
		http.StatusBadRequest,
		"PHONE_ALREADY_IN_USE",
		"Phone number already in use",
		"",
	)

	ErrAccountAlreadyVerified = NewBaseError(
		http.StatusBadRequest,
		"ACCOUNT_ALREADY_VERIFIED",
		"Account already verified",
		"",
	)

	// OTP lifecycle
	ErrOTPCooldown = NewBaseError(
		http.StatusTooManyRequests,
		"OTP_COOLDOWN",
		"OTP recently sent. Try again after 60 seconds.",
		"",
	)

	ErrPendingSignupNotFound = NewBaseError(
		http.StatusBadRequest,
		"PENDING_SIGNUP_NOT_FOUND",
		"No pending signup or OTP expired",
		"",
	)

	ErrTooManyAttempts = NewBaseError(
		http.StatusTooManyRequests,
		"OTP_TOO_MANY_ATTEMPTS",
		"Too many attempts. Signup again.",
		"",
	)

	ErrOTPExpired = NewBaseError(
		http.StatusBadRequest,
		"OTP_EXPIRED",
		"OTP expired. Signup again.",
		"",
	)

	ErrInvalidOTP = NewBaseError(
		http.StatusBadRequest,
		"OTP_INVALID",
		"Invalid OTP",
		"",
	)

	// Authentication
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid credentials",
		"",
	)

	ErrRefreshTokenMissing = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_MISSING",
		"No refresh token provided",
		"",
	)

	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"Invalid or expired refresh token",
		"",
	)

	ErrAccessTokenMissing = NewBaseError(
		http.StatusUnauthorized,
		"ACCESS_TOKEN_MISSING",
		"Not authorized, token missing",
		"",
	)

	ErrAccessTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"ACCESS_TOKEN_INVALID",
		"Not authorized, token invalid",
		"",
	)

	ErrSessionUserGone = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_USER_NOT_FOUND",
		"Not authorized, user not found",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Forbidden: insufficient permissions",
		"",
	)

	// Transient collaborators
	ErrMailDeliveryFailed = NewBaseError(
		http.StatusInternalServerError,
		"MAIL_DELIVERY_FAILED",
		"Failed to send verification email",
		"",
	)

	ErrPendingStoreUnavailable = NewBaseError(
		http.StatusInternalServerError,
		"PENDING_STORE_UNAVAILABLE",
		"Signup store unavailable",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// NewValidationError reports malformed input with a message meant for the client.
func NewValidationError(message string) *BaseError {
	return NewBaseError(http.StatusBadRequest, ErrValidationFailed.errorCode, message, "")
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

func (e *DatabaseExecuteError) Message() string {
	return "Internal server error"
}

func (e *DatabaseExecuteError) Details() string {
	return e.details
}
