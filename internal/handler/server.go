// Package handler implements the HTTP handlers for the dive logbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, dives.go, divelist.go, ...) and mounted on a chi router by
// Handler.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/dive-logbook/internal/divelist"
	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/service"
	"github.com/pkordes/dive-logbook/internal/units"
)

// DiveServicer defines the dive operations the dive handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type DiveServicer interface {
	Page(p domain.PaginationParams) ([]domain.Dive, int)
	Get(index int) (domain.Dive, error)
	Create(ctx context.Context, dive domain.Dive) (domain.Dive, error)
	Update(ctx context.Context, index int, dive domain.Dive) (domain.Dive, error)
	Delete(ctx context.Context, index int) error
}

// TripServicer defines the trip operations: computed trips and persisted hints.
type TripServicer interface {
	Trips() []service.TripView
	CreateTripHint(ctx context.Context, hint domain.TripHint) (domain.TripHint, error)
	DeleteTripHint(ctx context.Context, id uuid.UUID) error
}

// DiveListServicer defines the dive list interaction surface.
type DiveListServicer interface {
	Snapshot(kind *divelist.ProjectionKind) service.ListView
	Rebuild()
	ApplySelection(changes []divelist.SelectionChange) divelist.Diff
	Toggle(ref divelist.RowRef) divelist.Diff
	Expand(trip int) divelist.Diff
	Collapse(trip int) divelist.Diff
	ExpandAll() divelist.Diff
	CollapseAll() divelist.Diff
	Activate(ref divelist.RowRef) divelist.Diff
	SortBy(col divelist.Column, order divelist.SortOrder) (divelist.Diff, error)
	SetUnits(u units.Units)
	SetAutogroup(on bool)
	SetWindow(window time.Duration) error
	SetColumnVisible(col divelist.Column, visible bool) error
	SetFont(font string)
	MarkChanged(changed bool)
	HasUnsavedChanges() bool
}

// ExportServicer produces the flat logbook export.
type ExportServicer interface {
	Export() []domain.ExportRow
}

// Server holds the dependencies of every API endpoint.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	dives    DiveServicer
	trips    TripServicer
	list     DiveListServicer
	export   ExportServicer
	validate *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
// Any servicer may be nil when the routes that need it are not exercised.
func NewServer(dives DiveServicer, trips TripServicer, list DiveListServicer, export ExportServicer) *Server {
	return &Server{
		dives:    dives,
		trips:    trips,
		list:     list,
		export:   export,
		validate: newValidator(),
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Handler returns an http.Handler serving every API route of s.
func Handler(s *Server) http.Handler {
	return HandlerFromMux(s, chi.NewRouter())
}

// HandlerFromMux registers every API route of s on r and returns it.
func HandlerFromMux(s *Server, r chi.Router) http.Handler {
	r.Get("/healthz", s.GetHealth)

	r.Route("/dives", func(r chi.Router) {
		r.Get("/", s.ListDives)
		r.Post("/", s.CreateDive)
		r.Get("/{index}", s.GetDive)
		r.Put("/{index}", s.UpdateDive)
		r.Delete("/{index}", s.DeleteDive)
	})

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Delete("/{id}", s.DeleteTrip)
	})

	r.Route("/divelist", func(r chi.Router) {
		r.Get("/", s.GetDiveList)
		r.Post("/rebuild", s.RebuildDiveList)
		r.Post("/selection", s.ApplySelection)
		r.Post("/rows/{kind}/{id}/toggle", s.ToggleRow)
		r.Post("/rows/{kind}/{id}/activate", s.ActivateRow)
		r.Post("/trips/{id}/expand", s.ExpandTrip)
		r.Post("/trips/{id}/collapse", s.CollapseTrip)
		r.Post("/expand-all", s.ExpandAll)
		r.Post("/collapse-all", s.CollapseAll)
		r.Put("/sort", s.SortDiveList)
		r.Put("/units", s.SetUnits)
		r.Put("/autogroup", s.SetAutogroup)
		r.Put("/window", s.SetWindow)
		r.Put("/columns/{column}", s.SetColumn)
		r.Put("/font", s.SetFont)
		r.Get("/changed", s.GetChanged)
		r.Put("/changed", s.SetChanged)
	})

	r.Get("/export", s.GetExport)
	return r
}
