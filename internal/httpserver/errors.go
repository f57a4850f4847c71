package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/service"
)

// httpError maps service failures onto the status+detail pairs the API
// reports. Anything unrecognized is a 500 with no internals leaked.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "insufficient privileges")
	case errors.Is(err, service.ErrSelfAction):
		return echo.NewHTTPError(http.StatusBadRequest, "cannot perform this action on your own account")
	case errors.Is(err, service.ErrBadRole):
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	case errors.Is(err, service.ErrBadShipment):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid shipment record")
	case errors.Is(err, repo.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "username or email already registered")
	case errors.Is(err, repo.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
