// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"slynk/internal/delivery/http/middleware"
	"slynk/internal/delivery/http/router/handler"
	"slynk/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	HealthHandler  *handler.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	healthHandler  *handler.HealthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		healthHandler:  params.HealthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.HealthCheck)

	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/verify-otp", r.authHandler.VerifyOTP)
		authGroup.POST("/resend-otp", r.authHandler.ResendOTP)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/refresh-token", r.authHandler.RefreshToken)

		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
		authGroup.GET("/admin/ping", r.authHandler.AdminPing,
			r.authMiddleware.Authenticate,
			r.authMiddleware.RequireRole(entity.RoleAdmin),
		)
	}
}
