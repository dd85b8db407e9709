// Package response writes the flat JSON bodies of the auth API.
package response

import (
	"github.com/labstack/echo/v4"
)

// MessageBody is the acknowledgement returned by most endpoints.
type MessageBody struct {
	Message string `json:"message"`
}

// SignupBody acknowledges a staged signup.
type SignupBody struct {
	Message          string `json:"message"`
	Email            string `json:"email"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// SessionBody is returned when a session was opened and the cookies were set.
type SessionBody struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// AccessTokenBody is returned by the refresh endpoint.
type AccessTokenBody struct {
	AccessToken string `json:"accessToken"`
}

// UserBody is the public view of an account.
type UserBody struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	Verified  bool    `json:"verified"`
	CreatedAt string  `json:"createdAt"`
}

// ErrorBody is the single error shape. Debug is only filled outside production.
type ErrorBody struct {
	Error string     `json:"error"`
	Code  string     `json:"code"`
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo exposes the error chain to developers.
type DebugInfo struct {
	Name  string `json:"name"`
	Stack string `json:"stack"`
}

// Message writes {message}.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageBody{Message: message})
}

// Error writes {error, code[, debug]}.
func Error(c echo.Context, statusCode int, errorCode, message string, debug *DebugInfo) error {
	return c.JSON(statusCode, ErrorBody{
		Error: message,
		Code:  errorCode,
		Debug: debug,
	})
}
