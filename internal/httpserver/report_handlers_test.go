package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/service"
)

func recordBody(batch string, head int, end time.Time) RecordShipmentRequest {
	return RecordShipmentRequest{
		BatchCode:    batch,
		OriginSite:   "farm-north",
		DestSite:     "plant-1",
		NetHeadCount: head,
		LoadingStart: end.Add(-time.Hour),
		LoadingEnd:   end,
	}
}

func TestRecordShipmentRequiresSupervisor(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("carol", "secret1", models.RoleUser, true)
	env.seedUser("sam", "secret1", models.RoleSupervisor, true)

	carolToken := env.login("carol", "secret1")
	rec := env.request(http.MethodPost, "/shipments", carolToken, recordBody("L-001", 120, time.Now()))
	require.Equal(t, http.StatusForbidden, rec.Code)

	samToken := env.login("sam", "secret1")
	rec = env.request(http.MethodPost, "/shipments", samToken, recordBody("L-001", 120, time.Now()))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Shipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "L-001", created.BatchCode)
	require.Equal(t, 120, created.NetHeadCount)
	require.NotZero(t, created.ID)
}

func TestRecordShipmentValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("sam", "secret1", models.RoleSupervisor, true)
	samToken := env.login("sam", "secret1")

	body := recordBody("L-001", 0, time.Now())
	rec := env.request(http.MethodPost, "/shipments", samToken, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body = recordBody("L-001", 120, time.Now())
	body.LoadingStart, body.LoadingEnd = body.LoadingEnd, body.LoadingStart
	rec = env.request(http.MethodPost, "/shipments", samToken, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body = recordBody("", 120, time.Now())
	rec = env.request(http.MethodPost, "/shipments", samToken, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListShipments(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("sam", "secret1", models.RoleSupervisor, true)
	env.seedUser("carol", "secret1", models.RoleUser, true)
	samToken := env.login("sam", "secret1")

	for _, batch := range []string{"L-001", "L-002", "L-003"} {
		rec := env.request(http.MethodPost, "/shipments", samToken, recordBody(batch, 100, time.Now()))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// plain users can read
	carolToken := env.login("carol", "secret1")
	rec := env.request(http.MethodGet, "/shipments?limit=2", carolToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page []models.Shipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 2)

	rec = env.request(http.MethodGet, "/shipments?from=bogus", carolToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("sam", "secret1", models.RoleSupervisor, true)
	samToken := env.login("sam", "secret1")

	rec := env.request(http.MethodPost, "/shipments", samToken, recordBody("L-001", 120, time.Now()))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.request(http.MethodPost, "/shipments", samToken, recordBody("L-002", 80, time.Now()))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(http.MethodGet, "/reports/summary", samToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sum service.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Equal(t, 2, sum.TotalShipments)
	require.Equal(t, 200, sum.TotalHead)
	require.Equal(t, 2, sum.ShipmentsToday)
}

func TestSearchUnavailableWithoutES(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("carol", "secret1", models.RoleUser, true)
	carolToken := env.login("carol", "secret1")

	rec := env.request(http.MethodGet, "/shipments/search?q=L-001", carolToken, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.request(http.MethodGet, "/shipments/search", carolToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
