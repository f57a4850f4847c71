package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/middleware"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/service"
	"github.com/agrotrack/livestock_tracker/internal/service/search"
	"github.com/agrotrack/livestock_tracker/internal/util"
)

type ReportHTTP struct {
	Shipments *service.ShipmentService
	Reports   *service.ReportService
}

func (h *ReportHTTP) RecordShipment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shipment_record")

	var req RecordShipmentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("record_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	shipment, err := h.Shipments.Record(ctx, middleware.CurrentUser(c), service.RecordShipmentInput{
		BatchCode:    req.BatchCode,
		OriginSite:   req.OriginSite,
		DestSite:     req.DestSite,
		NetHeadCount: req.NetHeadCount,
		LoadingStart: req.LoadingStart,
		LoadingEnd:   req.LoadingEnd,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, shipment)
}

func (h *ReportHTTP) ListShipments(c echo.Context) error {
	skip, limit := util.Pagination(
		queryInt(c, "skip", 0),
		queryInt(c, "limit", 100),
	)

	filter := repo.ShipmentFilter{Skip: skip, Limit: limit}
	if from, err := queryTime(c, "from"); err != nil {
		return err
	} else if from != nil {
		filter.From = from
	}
	if to, err := queryTime(c, "to"); err != nil {
		return err
	} else if to != nil {
		filter.To = to
	}

	shipments, err := h.Shipments.List(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, shipments)
}

func (h *ReportHTTP) SearchShipments(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}
	if h.Shipments.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	skip, limit := util.Pagination(
		queryInt(c, "skip", 0),
		queryInt(c, "limit", 20),
	)

	total, shipments, err := search.Shipments(
		c.Request().Context(), h.Shipments.ES, h.Shipments.ESIndex, query, skip, limit,
	)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("search_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":     total,
		"shipments": shipments,
	})
}

func (h *ReportHTTP) Summary(c echo.Context) error {
	summary, err := h.Reports.Summary(c.Request().Context(), time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+" timestamp")
	}
	return &t, nil
}
