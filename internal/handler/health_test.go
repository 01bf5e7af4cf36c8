package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/handler"
	"github.com/pkordes/dive-logbook/internal/service"
)

func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	rec := serve(handler.Handler(handler.NewHealthHandler()), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetHealth_reportsCounts(t *testing.T) {
	dives := &mockDiveServicer{
		page: func(domain.PaginationParams) ([]domain.Dive, int) { return nil, 12 },
	}
	trips := &mockTripServicer{
		trips: func() []service.TripView { return make([]service.TripView, 3) },
	}

	rec := serve(handler.Handler(handler.NewServer(dives, trips, nil, nil)), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	require.NotNil(t, body.Dives)
	assert.Equal(t, 12, *body.Dives)
	require.NotNil(t, body.Trips)
	assert.Equal(t, 3, *body.Trips)
}

// compile-time check: the dive list service backs every servicer in cmd/api.
var (
	_ handler.DiveServicer     = (*service.DiveListService)(nil)
	_ handler.TripServicer     = (*service.DiveListService)(nil)
	_ handler.DiveListServicer = (*service.DiveListService)(nil)
	_ handler.ExportServicer   = (*service.DiveListService)(nil)
)
