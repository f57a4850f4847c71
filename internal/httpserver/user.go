package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/middleware"
	"github.com/agrotrack/livestock_tracker/internal/service"
	"github.com/agrotrack/livestock_tracker/internal/util"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	user, err := h.Svc.Create(ctx, middleware.CurrentUser(c), service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHTTP) List(c echo.Context) error {
	skip, limit := util.Pagination(
		queryInt(c, "skip", 0),
		queryInt(c, "limit", 100),
	)

	users, err := h.Svc.List(c.Request().Context(), middleware.CurrentUser(c), skip, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *UserHTTP) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Get(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update")

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Update(ctx, middleware.CurrentUser(c), id, service.UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHTTP) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *UserHTTP) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *UserHTTP) setActive(c echo.Context, active bool) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.SetActive(c.Request().Context(), middleware.CurrentUser(c), id, active)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return uint(id), nil
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
