package handler_test

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/handler"
)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	export func() []domain.ExportRow
}

func (m *mockExportServicer) Export() []domain.ExportRow {
	return m.export()
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func newExportHTTPHandler(svc handler.ExportServicer) http.Handler {
	return handler.Handler(handler.NewServer(nil, nil, nil, svc))
}

// exportRowsFixture returns one dive inside a trip and one outside.
func exportRowsFixture() []domain.ExportRow {
	tripWhen := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	return []domain.ExportRow{
		{
			Index:       0,
			Number:      41,
			When:        tripWhen,
			TripID:      uuid.NewString(),
			TripWhen:    &tripWhen,
			TripCount:   2,
			DurationSec: 3120,
			MaxDepthMM:  24300,
			Location:    "Ras Mohammed",
			Cylinder:    "AL80",
			O2:          320,
			MinO2:       320,
			SAC:         15400,
		},
		{
			Index:  1,
			Number: 42,
			When:   time.Date(2024, 8, 2, 14, 0, 0, 0, time.UTC),
		},
	}
}

func TestGetExport_JSON_Default(t *testing.T) {
	fixture := exportRowsFixture()
	svc := &mockExportServicer{export: func() []domain.ExportRow { return fixture }}

	rec := serve(newExportHTTPHandler(svc), http.MethodGet, "/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var rows []handler.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].TripID)
	assert.Equal(t, fixture[0].TripID, *rows[0].TripID)
	require.NotNil(t, rows[0].Location)
	assert.Equal(t, "Ras Mohammed", *rows[0].Location)
	assert.Equal(t, 2, rows[0].TripDives)
	assert.Equal(t, 320, rows[0].O2)

	assert.Nil(t, rows[1].TripID, "dives outside a trip omit trip fields")
	assert.Nil(t, rows[1].TripWhen)
	assert.Nil(t, rows[1].Location)
}

func TestGetExport_CSV(t *testing.T) {
	fixture := exportRowsFixture()
	svc := &mockExportServicer{export: func() []domain.ExportRow { return fixture }}

	rec := serve(newExportHTTPHandler(svc), http.MethodGet, "/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per dive")

	header := records[0]
	assert.Equal(t, "index", header[0])
	assert.Equal(t, "weight_g", header[len(header)-1])

	first := records[1]
	assert.Equal(t, "41", first[1])
	assert.Equal(t, "2024-06-15T08:00:00Z", first[2])
	assert.Equal(t, fixture[0].TripID, first[3])
	assert.Equal(t, "2", first[5])
	assert.Equal(t, "Ras Mohammed", first[11])

	second := records[2]
	assert.Empty(t, second[3])
	assert.Empty(t, second[4])
	assert.Empty(t, second[5])
}

func TestGetExport_400_UnknownFormat(t *testing.T) {
	rec := serve(newExportHTTPHandler(&mockExportServicer{}), http.MethodGet, "/export?format=xml", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
