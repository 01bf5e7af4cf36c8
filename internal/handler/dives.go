package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// DiveRequest is the body of POST /dives and PUT /dives/{index}.
type DiveRequest struct {
	Number      int                   `json:"number" validate:"gte=0"`
	When        *time.Time            `json:"when" validate:"required"`
	DurationSec int                   `json:"duration_sec" validate:"gte=0"`
	MaxDepthMM  int                   `json:"max_depth_mm" validate:"gte=0"`
	MeanDepthMM int                   `json:"mean_depth_mm" validate:"gte=0"`
	Rating      int                   `json:"rating" validate:"gte=0,lte=5"`
	Location    string                `json:"location"`
	Suit        string                `json:"suit"`
	WaterTempMK int                   `json:"water_temp_mk" validate:"gte=0"`
	TripFlag    domain.TripFlag       `json:"trip_flag"`
	Cylinders   []domain.Cylinder     `json:"cylinders" validate:"max=8"`
	Weights     []domain.WeightSystem `json:"weights" validate:"max=6"`
	Samples     []domain.Sample       `json:"samples"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// DiveListResponse is the body of GET /dives.
type DiveListResponse struct {
	Data       []domain.Dive `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ListDives handles GET /dives.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListDives(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	dives, total := s.dives.Page(params)
	writeJSON(w, http.StatusOK, DiveListResponse{
		Data:       dives,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetDive handles GET /dives/{index}.
func (s *Server) GetDive(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	dive, err := s.dives.Get(index)
	if err != nil {
		writeServiceError(w, r, err, "dive not found")
		return
	}
	writeJSON(w, http.StatusOK, dive)
}

// CreateDive handles POST /dives.
func (s *Server) CreateDive(w http.ResponseWriter, r *http.Request) {
	var body DiveRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	created, err := s.dives.Create(r.Context(), requestToDive(body))
	if err != nil {
		writeServiceError(w, r, err, "dive not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateDive handles PUT /dives/{index}.
func (s *Server) UpdateDive(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	var body DiveRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	updated, err := s.dives.Update(r.Context(), index, requestToDive(body))
	if err != nil {
		writeServiceError(w, r, err, "dive not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteDive handles DELETE /dives/{index}.
func (s *Server) DeleteDive(w http.ResponseWriter, r *http.Request) {
	index, err := pathInt(r, "index")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	if err := s.dives.Delete(r.Context(), index); err != nil {
		writeServiceError(w, r, err, "dive not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestToDive converts a validated DiveRequest into a domain.Dive.
func requestToDive(body DiveRequest) domain.Dive {
	return domain.Dive{
		Number:      body.Number,
		When:        body.When.UTC(),
		DurationSec: body.DurationSec,
		MaxDepthMM:  body.MaxDepthMM,
		MeanDepthMM: body.MeanDepthMM,
		Rating:      body.Rating,
		Location:    body.Location,
		Suit:        body.Suit,
		WaterTempMK: body.WaterTempMK,
		TripFlag:    body.TripFlag,
		Cylinders:   body.Cylinders,
		Weights:     body.Weights,
		Samples:     body.Samples,
	}
}
