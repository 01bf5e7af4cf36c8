package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// TripResponse is one computed trip of the last rebuild.
type TripResponse struct {
	Node     int       `json:"node"`
	ID       uuid.UUID `json:"id"`
	When     time.Time `json:"when"`
	Count    int       `json:"count"`
	Location string    `json:"location,omitempty"`
	Members  []int     `json:"members"`
}

// TripHintRequest is the body of POST /trips.
type TripHintRequest struct {
	StartedAt *time.Time `json:"started_at" validate:"required"`
	Location  string     `json:"location"`
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, _ *http.Request) {
	trips := s.trips.Trips()
	out := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		out = append(out, TripResponse{
			Node:     t.Node,
			ID:       t.Trip.ID,
			When:     t.Trip.When,
			Count:    t.Trip.Count,
			Location: t.Trip.Location,
			Members:  t.Members,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTrip handles POST /trips. It persists a trip hint that in_trip
// dives can join on the next rebuild.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripHintRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.CreateTripHint(r.Context(), requestToTripHint(body))
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	if err := s.trips.DeleteTripHint(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestToTripHint converts a validated TripHintRequest into a domain.TripHint.
func requestToTripHint(body TripHintRequest) domain.TripHint {
	return domain.TripHint{StartedAt: body.StartedAt.UTC(), Location: body.Location}
}
