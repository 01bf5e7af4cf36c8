package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/handler"
)

// mockDiveServicer is a test double for handler.DiveServicer.
// Set only the method fields your test needs.
type mockDiveServicer struct {
	page   func(p domain.PaginationParams) ([]domain.Dive, int)
	get    func(index int) (domain.Dive, error)
	create func(ctx context.Context, dive domain.Dive) (domain.Dive, error)
	update func(ctx context.Context, index int, dive domain.Dive) (domain.Dive, error)
	delete func(ctx context.Context, index int) error
}

func (m *mockDiveServicer) Page(p domain.PaginationParams) ([]domain.Dive, int) {
	return m.page(p)
}
func (m *mockDiveServicer) Get(index int) (domain.Dive, error) {
	return m.get(index)
}
func (m *mockDiveServicer) Create(ctx context.Context, d domain.Dive) (domain.Dive, error) {
	return m.create(ctx, d)
}
func (m *mockDiveServicer) Update(ctx context.Context, index int, d domain.Dive) (domain.Dive, error) {
	return m.update(ctx, index, d)
}
func (m *mockDiveServicer) Delete(ctx context.Context, index int) error {
	return m.delete(ctx, index)
}

// compile-time check: mockDiveServicer must satisfy handler.DiveServicer.
var _ handler.DiveServicer = (*mockDiveServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func newDiveHTTPHandler(svc handler.DiveServicer) http.Handler {
	return handler.Handler(handler.NewServer(svc, nil, nil, nil))
}

func diveFixture() domain.Dive {
	return domain.Dive{
		ID:          uuid.New(),
		Index:       4,
		Number:      12,
		When:        time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		DurationSec: 2700,
		MaxDepthMM:  18400,
		Location:    "Blue Hole",
		TripFlag:    domain.TripFlagInTrip,
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func serve(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- GET /dives ------------------------------------------------------------

func TestListDives_200_DefaultPagination(t *testing.T) {
	var got domain.PaginationParams
	svc := &mockDiveServicer{
		page: func(p domain.PaginationParams) ([]domain.Dive, int) {
			got = p
			return []domain.Dive{diveFixture()}, 41
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodGet, "/dives", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 20}, got)

	var resp handler.DiveListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 12, resp.Data[0].Number)
	assert.Equal(t, handler.Pagination{Page: 1, Limit: 20, Total: 41}, resp.Pagination)
}

func TestListDives_200_LimitCapped(t *testing.T) {
	var got domain.PaginationParams
	svc := &mockDiveServicer{
		page: func(p domain.PaginationParams) ([]domain.Dive, int) {
			got = p
			return nil, 0
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodGet, "/dives?page=3&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 100}, got)
}

func TestListDives_400_BadPage(t *testing.T) {
	rec := serve(newDiveHTTPHandler(&mockDiveServicer{}), http.MethodGet, "/dives?page=abc", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GET /dives/{index} ----------------------------------------------------

func TestGetDive_200(t *testing.T) {
	fixture := diveFixture()
	svc := &mockDiveServicer{
		get: func(index int) (domain.Dive, error) {
			require.Equal(t, 4, index)
			return fixture, nil
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodGet, "/dives/4", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.Dive
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, domain.TripFlagInTrip, resp.TripFlag)
}

func TestGetDive_404(t *testing.T) {
	svc := &mockDiveServicer{
		get: func(int) (domain.Dive, error) {
			return domain.Dive{}, fmt.Errorf("service: %w", domain.ErrNotFound)
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodGet, "/dives/99", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

func TestGetDive_400_BadIndex(t *testing.T) {
	rec := serve(newDiveHTTPHandler(&mockDiveServicer{}), http.MethodGet, "/dives/first", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- POST /dives -----------------------------------------------------------

func TestCreateDive_201(t *testing.T) {
	fixture := diveFixture()
	var got domain.Dive
	svc := &mockDiveServicer{
		create: func(_ context.Context, d domain.Dive) (domain.Dive, error) {
			got = d
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"number":       12,
		"when":         "2025-06-01T11:30:00+02:00",
		"max_depth_mm": 18400,
		"location":     "Blue Hole",
		"trip_flag":    "in_trip",
		"cylinders":    []map[string]any{{"size_ml": 12000, "mix": map[string]int{"o2_permille": 320}}},
	})
	rec := serve(newDiveHTTPHandler(svc), http.MethodPost, "/dives", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, got.When.Equal(fixture.When))
	assert.Equal(t, time.UTC, got.When.Location())
	assert.Equal(t, domain.TripFlagInTrip, got.TripFlag)
	require.Len(t, got.Cylinders, 1)
	assert.Equal(t, 320, got.Cylinders[0].Mix.O2)

	var resp domain.Dive
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestCreateDive_422_MissingWhen(t *testing.T) {
	svc := &mockDiveServicer{
		create: func(context.Context, domain.Dive) (domain.Dive, error) {
			t.Fatal("service must not be called")
			return domain.Dive{}, nil
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodPost, "/dives", jsonBody(t, map[string]any{"number": 1}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "when is required", decodeError(t, rec).Error.Message)
}

func TestCreateDive_422_BadRating(t *testing.T) {
	body := jsonBody(t, map[string]any{"when": "2025-06-01T09:00:00Z", "rating": 9})

	rec := serve(newDiveHTTPHandler(&mockDiveServicer{}), http.MethodPost, "/dives", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "rating must satisfy lte=5", decodeError(t, rec).Error.Message)
}

func TestCreateDive_422_UnknownTripFlag(t *testing.T) {
	body := jsonBody(t, map[string]any{"when": "2025-06-01T09:00:00Z", "trip_flag": "sometimes"})

	rec := serve(newDiveHTTPHandler(&mockDiveServicer{}), http.MethodPost, "/dives", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateDive_422_EmptyBody(t *testing.T) {
	rec := serve(newDiveHTTPHandler(&mockDiveServicer{}), http.MethodPost, "/dives", bytes.NewBuffer(nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "request body is required", decodeError(t, rec).Error.Message)
}

func TestCreateDive_422_ServiceValidation(t *testing.T) {
	svc := &mockDiveServicer{
		create: func(context.Context, domain.Dive) (domain.Dive, error) {
			return domain.Dive{}, fmt.Errorf("service.DiveListService.Create: %w: mean depth exceeds max depth", domain.ErrValidation)
		},
	}
	body := jsonBody(t, map[string]any{"when": "2025-06-01T09:00:00Z", "max_depth_mm": 1000, "mean_depth_mm": 2000})

	rec := serve(newDiveHTTPHandler(svc), http.MethodPost, "/dives", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "mean depth exceeds max depth", resp.Error.Message)
}

func TestCreateDive_500_StoreFailure(t *testing.T) {
	svc := &mockDiveServicer{
		create: func(context.Context, domain.Dive) (domain.Dive, error) {
			return domain.Dive{}, errors.New("connection reset")
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodPost, "/dives",
		jsonBody(t, map[string]any{"when": "2025-06-01T09:00:00Z"}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Error.Code)
}

// ---- PUT /dives/{index} ----------------------------------------------------

func TestUpdateDive_200(t *testing.T) {
	fixture := diveFixture()
	svc := &mockDiveServicer{
		update: func(_ context.Context, index int, d domain.Dive) (domain.Dive, error) {
			require.Equal(t, 4, index)
			require.Equal(t, "Blue Hole", d.Location)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"when": "2025-06-01T09:30:00Z", "location": "Blue Hole"})
	rec := serve(newDiveHTTPHandler(svc), http.MethodPut, "/dives/4", body)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateDive_404(t *testing.T) {
	svc := &mockDiveServicer{
		update: func(context.Context, int, domain.Dive) (domain.Dive, error) {
			return domain.Dive{}, domain.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{"when": "2025-06-01T09:30:00Z"})
	rec := serve(newDiveHTTPHandler(svc), http.MethodPut, "/dives/40", body)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "dive not found", decodeError(t, rec).Error.Message)
}

// ---- DELETE /dives/{index} -------------------------------------------------

func TestDeleteDive_204(t *testing.T) {
	svc := &mockDiveServicer{
		delete: func(_ context.Context, index int) error {
			require.Equal(t, 2, index)
			return nil
		},
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodDelete, "/dives/2", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteDive_404(t *testing.T) {
	svc := &mockDiveServicer{
		delete: func(context.Context, int) error { return domain.ErrNotFound },
	}

	rec := serve(newDiveHTTPHandler(svc), http.MethodDelete, "/dives/2", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
