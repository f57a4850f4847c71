package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/middleware"
	"github.com/agrotrack/livestock_tracker/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, service.ErrInactiveAccount):
			return echo.NewHTTPError(http.StatusBadRequest, "inactive account")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusOK, TokenResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		User:        res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	token := middleware.CurrentToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	if err := h.Svc.Logout(ctx, token); err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_change_password")

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "new password must not be empty")
	}

	user := middleware.CurrentUser(c)
	if err := h.Svc.ChangePassword(ctx, user, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrBadCurrentPassword) {
			return echo.NewHTTPError(http.StatusBadRequest, "current password is incorrect")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// VerifyToken reports token validity. RequireAuth already ran the pipeline,
// so reaching this handler means the token is good.
func (h *AuthHTTP) VerifyToken(c echo.Context) error {
	return c.JSON(http.StatusOK, VerifyResponse{
		Valid: true,
		User:  middleware.CurrentUser(c),
	})
}
