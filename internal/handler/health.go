package handler

import (
	"net/http"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// HealthResponse is the body of GET /healthz. Counts are omitted when the
// server runs without a dive list, as NewHealthHandler does.
type HealthResponse struct {
	Status string `json:"status"`
	Dives  *int   `json:"dives,omitempty"`
	Trips  *int   `json:"trips,omitempty"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} and the loaded dive and trip counts.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.dives != nil {
		_, total := s.dives.Page(domain.NewPaginationParams(nil, nil))
		resp.Dives = &total
	}
	if s.trips != nil {
		n := len(s.trips.Trips())
		resp.Trips = &n
	}
	writeJSON(w, http.StatusOK, resp)
}
