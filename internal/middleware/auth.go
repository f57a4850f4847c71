package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/roles"
	"github.com/agrotrack/livestock_tracker/internal/service"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

type Auth struct {
	Svc *service.AuthService
}

func NewAuth(svc *service.AuthService) *Auth {
	return &Auth{Svc: svc}
}

// RequireAuth resolves the bearer token through the full validation pipeline
// and stores the user on the request context. Every failure is the same 401.
func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := BearerToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}

		user, _, err := m.Svc.Validate(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		return next(c)
	}
}

// RequireRole gates a route on the role hierarchy: any role at least as
// privileged as required passes. Must run after RequireAuth.
func (m *Auth) RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			if !roles.AtLeast(user.Role, required) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient privileges")
			}
			return next(c)
		}
	}
}

func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userKey).(*models.User); ok {
		return u
	}
	return nil
}

func CurrentToken(c echo.Context) string {
	if t, ok := c.Get(tokenKey).(string); ok {
		return t
	}
	return ""
}
