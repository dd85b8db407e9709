// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"time"

	"slynk/internal/delivery/http/cookie"
	"slynk/internal/delivery/http/middleware"
	"slynk/internal/delivery/http/response"
	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// HeaderXRefreshToken lets non-browser clients log out without the refresh cookie.
const HeaderXRefreshToken = "X-Refresh-Token"

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,min=3,max=10"`
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	signup   usecase.SignupUsecase
	sessions usecase.SessionUsecase
	jar      *cookie.Jar
}

type AuthHandlerParams struct {
	fx.In

	SignupUsecase  usecase.SignupUsecase
	SessionUsecase usecase.SessionUsecase
	Jar            *cookie.Jar
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		signup:   params.SignupUsecase,
		sessions: params.SessionUsecase,
		jar:      params.Jar,
	}
}

// Signup stages the account and emails the OTP.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.signup.Signup(c.Request().Context(), &usecase.SignupInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusCreated, response.SignupBody{
		Message:          "Signup initiated. Check your email for OTP.",
		Email:            output.Email,
		ExpiresInSeconds: int64(output.ExpiresIn / time.Second),
	})
}

// VerifyOTP promotes the pending signup and opens the first session.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.signup.VerifyOTP(c.Request().Context(), &usecase.VerifyOTPInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSession(c, output.Tokens)

	return c.JSON(http.StatusOK, response.SessionBody{
		Message: "Email verified and account created",
		UserID:  output.User.ID.String(),
	})
}

// ResendOTP issues a fresh code for a pending signup.
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req resendOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.signup.ResendOTP(c.Request().Context(), &usecase.ResendOTPInput{Email: req.Email}); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "OTP resent successfully.")
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.sessions.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSession(c, output.Tokens)

	return c.JSON(http.StatusOK, response.SessionBody{
		Message: "Login successful",
		UserID:  output.User.ID.String(),
	})
}

// RefreshToken rotates the refresh cookie.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	token := h.jar.RefreshToken(c)
	if token == "" {
		return domainerrors.ErrRefreshTokenMissing
	}

	output, err := h.sessions.Refresh(c.Request().Context(), token)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSession(c, output.Tokens)

	return c.JSON(http.StatusOK, response.AccessTokenBody{AccessToken: output.Tokens.AccessToken})
}

// Logout always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := h.jar.RefreshToken(c)
	if token == "" {
		token = c.Request().Header.Get(HeaderXRefreshToken)
	}

	if token != "" {
		h.sessions.Logout(c.Request().Context(), token)
	}

	h.jar.Clear(c)

	return response.Message(c, http.StatusOK, "Logged out successfully")
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domainerrors.ErrAccessTokenMissing
	}

	return c.JSON(http.StatusOK, map[string]response.UserBody{"user": userBody(user)})
}

// AdminPing answers only for admins.
func (h *AuthHandler) AdminPing(c echo.Context) error {
	return response.Message(c, http.StatusOK, "pong")
}

func (h *AuthHandler) setSession(c echo.Context, tokens *usecase.TokenPair) {
	h.jar.SetSession(c, tokens.AccessToken, tokens.AccessExpiresIn, tokens.RefreshToken, tokens.RefreshExpiresIn)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.NewValidationError("Invalid request body")
	}

	return c.Validate(req)
}

func userBody(u *entity.User) response.UserBody {
	return response.UserBody{
		ID:        u.ID.String(),
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role.String(),
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
