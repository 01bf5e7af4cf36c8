package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"index", "number", "when", "trip_id", "trip_when", "trip_dives",
	"duration_sec", "max_depth_mm", "mean_depth_mm", "water_temp_mk", "rating",
	"location", "suit", "cylinder", "o2_permille", "he_permille", "min_o2_permille",
	"sac_ml_min", "otu", "weight_g",
}

// ExportRow is one dive of the JSON export.
type ExportRow struct {
	Index       int        `json:"index"`
	Number      int        `json:"number"`
	When        time.Time  `json:"when"`
	TripID      *string    `json:"trip_id,omitempty"`
	TripWhen    *time.Time `json:"trip_when,omitempty"`
	TripDives   int        `json:"trip_dives,omitempty"`
	DurationSec int        `json:"duration_sec"`
	MaxDepthMM  int        `json:"max_depth_mm"`
	MeanDepthMM int        `json:"mean_depth_mm"`
	WaterTempMK int        `json:"water_temp_mk,omitempty"`
	Rating      int        `json:"rating"`
	Location    *string    `json:"location,omitempty"`
	Suit        *string    `json:"suit,omitempty"`
	Cylinder    *string    `json:"cylinder,omitempty"`
	O2          int        `json:"o2_permille"`
	He          int        `json:"he_permille"`
	MinO2       int        `json:"min_o2_permille"`
	SAC         int        `json:"sac_ml_min"`
	OTU         int        `json:"otu"`
	WeightGrams int        `json:"weight_g"`
}

// GetExport handles GET /export.
// It returns every dive with its computed trip and statistics as a flat table.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	format, err := queryString(r, "format")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	switch format {
	case "", "json", "csv":
	default:
		writeJSON(w, http.StatusBadRequest, requestBody("format must be json or csv"))
		return
	}

	rows := s.export.Export()
	if format == "csv" {
		buf := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}
	writeJSON(w, http.StatusOK, buildJSON(rows))
}

// buildJSON converts domain rows to the JSON export rows.
func buildJSON(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToExportRow(r))
	}
	return out
}

// buildCSV encodes domain rows as CSV.
func buildCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write(domainRowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

// domainRowToExportRow maps a domain.ExportRow to the JSON export row.
// Fields that are empty strings become nil pointers (omitempty in JSON).
func domainRowToExportRow(r domain.ExportRow) ExportRow {
	row := ExportRow{
		Index:       r.Index,
		Number:      r.Number,
		When:        r.When,
		TripWhen:    r.TripWhen,
		TripDives:   r.TripCount,
		DurationSec: r.DurationSec,
		MaxDepthMM:  r.MaxDepthMM,
		MeanDepthMM: r.MeanDepthMM,
		WaterTempMK: r.WaterTempMK,
		Rating:      r.Rating,
		O2:          r.O2,
		He:          r.He,
		MinO2:       r.MinO2,
		SAC:         r.SAC,
		OTU:         r.OTU,
		WeightGrams: r.WeightGrams,
	}
	if r.TripID != "" {
		row.TripID = &r.TripID
	}
	if r.Location != "" {
		row.Location = &r.Location
	}
	if r.Suit != "" {
		row.Suit = &r.Suit
	}
	if r.Cylinder != "" {
		row.Cylinder = &r.Cylinder
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// A nil trip time is encoded as an empty string.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	itoa := strconv.Itoa
	tripDives := ""
	if r.TripID != "" {
		tripDives = itoa(r.TripCount)
	}
	return []string{
		itoa(r.Index),
		itoa(r.Number),
		r.When.UTC().Format(time.RFC3339),
		r.TripID,
		formatOptionalTime(r.TripWhen),
		tripDives,
		itoa(r.DurationSec),
		itoa(r.MaxDepthMM),
		itoa(r.MeanDepthMM),
		itoa(r.WaterTempMK),
		itoa(r.Rating),
		r.Location,
		r.Suit,
		r.Cylinder,
		itoa(r.O2),
		itoa(r.He),
		itoa(r.MinO2),
		itoa(r.SAC),
		itoa(r.OTU),
		itoa(r.WeightGrams),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
