package middleware

import (
	"slices"
	"strings"

	"slynk/internal/delivery/http/cookie"
	"slynk/internal/domain/entity"
	domainerrors "slynk/internal/domain/errors"
	"slynk/internal/domain/service"
	"slynk/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const contextKeyUser = "auth.user"

// AuthMiddleware authenticates requests by access token and authorizes them by role.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	sessions usecase.SessionUsecase
	jar      *cookie.Jar
}

type AuthMiddlewareParams struct {
	fx.In

	TokenService   service.TokenService
	SessionUsecase usecase.SessionUsecase
	Jar            *cookie.Jar
}

func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: params.TokenService,
		sessions: params.SessionUsecase,
		jar:      params.Jar,
	}
}

// Authenticate reads the access token from the cookie, falling back to a Bearer header,
// and loads the account it belongs to.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.jar.AccessToken(c)
		if token == "" {
			token = bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		}
		if token == "" {
			return domainerrors.ErrAccessTokenMissing
		}

		claims, err := m.tokenSvc.ValidateAccessToken(token)
		if err != nil {
			return domainerrors.ErrAccessTokenInvalid.WrapMessage(err.Error())
		}

		user, err := m.sessions.CurrentUser(c.Request().Context(), claims.UserID)
		if err != nil {
			return err
		}

		c.Set(contextKeyUser, user)

		return next(c)
	}
}

// RequireRole must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return domainerrors.ErrAccessTokenMissing
			}

			if !slices.Contains(roles, user.Role) {
				return domainerrors.ErrForbidden
			}

			return next(c)
		}
	}
}

// CurrentUser returns the account attached by Authenticate.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(contextKeyUser).(*entity.User)

	return user, ok && user != nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}
