// Package service contains the business logic for the dive logbook.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/dive-logbook/internal/divelist"
	"github.com/pkordes/dive-logbook/internal/divestore"
	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/grouping"
	"github.com/pkordes/dive-logbook/internal/repo"
	"github.com/pkordes/dive-logbook/internal/units"
)

// Options configures a DiveListService.
type Options struct {
	Autogroup bool
	// Window is the trip grouping window; zero means grouping.DefaultWindow.
	Window time.Duration
	Units  units.Units
	Font   string
	Logger *slog.Logger
}

// DiveListService owns the loaded dive table and the dive list built over it.
// Every method is safe for concurrent use.
type DiveListService struct {
	dives repo.DiveRepo
	trips repo.TripHintRepo
	log   *slog.Logger

	mu    sync.Mutex
	ctx   *divelist.Context
	table *divestore.Table
	list  *divelist.List
}

// NewDiveListService constructs a service with an empty dive table.
// Call Load to read the logbook from the store.
func NewDiveListService(dives repo.DiveRepo, trips repo.TripHintRepo, opts Options) *DiveListService {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	window := opts.Window
	if window <= 0 {
		window = grouping.DefaultWindow
	}

	ctx := divelist.NewContext()
	ctx.Autogroup = opts.Autogroup
	ctx.Window = grouping.Threshold(window)
	ctx.Units = opts.Units
	if opts.Font != "" {
		ctx.Font = opts.Font
	}

	s := &DiveListService{dives: dives, trips: trips, log: log, ctx: ctx}
	s.reset(divestore.New(nil, nil))
	return s
}

func (s *DiveListService) reset(table *divestore.Table) {
	s.table = table
	shell := logShell{log: s.log, list: func() *divelist.List { return s.list }}
	s.list = divelist.New(table, s.ctx, divelist.WithShell(shell))
}

// Load reads every dive and trip hint from the store and rebuilds the list.
// Selection from a previous load is discarded.
func (s *DiveListService) Load(ctx context.Context) error {
	dives, err := s.dives.List(ctx)
	if err != nil {
		storeErrors.WithLabelValues("list_dives").Inc()
		return fmt.Errorf("service.DiveListService.Load: %w", err)
	}
	hints, err := s.trips.List(ctx)
	if err != nil {
		storeErrors.WithLabelValues("list_trips").Inc()
		return fmt.Errorf("service.DiveListService.Load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(divestore.New(dives, hints))
	s.rebuild()
	s.log.Info("logbook loaded", "dives", len(dives), "trip_hints", len(hints))
	return nil
}

// Rebuild regroups trips and repopulates both projections.
func (s *DiveListService) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuild()
}

// rebuild must be called with mu held.
func (s *DiveListService) rebuild() {
	start := time.Now()
	s.list.RebuildAll()
	elapsed := time.Since(start)

	rebuildTotal.Inc()
	rebuildDuration.Observe(elapsed.Seconds())
	diveCount.Set(float64(s.table.DiveCount()))
	tripCount.Set(float64(s.list.TripCount()))
	selectedCount.Set(float64(s.list.SelectedCount()))
	s.log.Debug("dive list rebuilt",
		"dives", s.table.DiveCount(),
		"trips", s.list.TripCount(),
		"elapsed", elapsed,
	)
}

// ---- views -------------------------------------------------------------------

// ColumnView describes one column header.
type ColumnView struct {
	Column  divelist.Column
	Title   string
	Visible bool
}

// RowView is one row of a projection in display order.
type RowView struct {
	Ref      divelist.RowRef
	Parent   int
	Depth    int
	Selected bool
	Expanded bool
	Children int
	Fields   divelist.Fields
}

// ListView is a consistent snapshot of one projection and the list state.
type ListView struct {
	Projection divelist.ProjectionKind
	Active     divelist.ProjectionKind
	SortColumn divelist.Column
	SortOrder  divelist.SortOrder
	Units      units.Units
	Font       string
	Autogroup  bool
	Current    int
	Selected   int
	EditLabel  string
	Unsaved    bool
	Columns    []ColumnView
	Rows       []RowView
}

// Snapshot returns the given projection, or the active one when kind is nil.
func (s *DiveListService) Snapshot(kind *divelist.ProjectionKind) ListView {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.list.Active()
	if kind != nil {
		p = s.list.Projection(*kind)
	}
	col, order := p.Sort()
	v := ListView{
		Projection: p.Kind(),
		Active:     s.ctx.Active,
		SortColumn: col,
		SortOrder:  order,
		Units:      s.ctx.Units,
		Font:       s.ctx.Font,
		Autogroup:  s.ctx.Autogroup,
		Current:    s.list.Current(),
		Selected:   s.list.SelectedCount(),
		EditLabel:  s.list.EditLabel(),
		Unsaved:    s.list.HasUnsavedChanges(),
		Rows:       make([]RowView, 0, p.Len()),
	}
	for _, c := range divelist.Columns() {
		v.Columns = append(v.Columns, ColumnView{Column: c, Title: s.list.ColumnTitle(c), Visible: s.ctx.Visible[c]})
	}
	p.Walk(func(r divelist.Row, depth int) {
		parent := -1
		if r.Ref.Kind == divelist.KindDive {
			if t, ok := p.Parent(r.Ref.ID); ok {
				parent = t
			}
		}
		v.Rows = append(v.Rows, RowView{
			Ref:      r.Ref,
			Parent:   parent,
			Depth:    depth,
			Selected: r.Selected,
			Expanded: r.Expanded,
			Children: len(r.Children),
			Fields:   r.Fields,
		})
	})
	return v
}

// Trips returns the trips of the last rebuild with their member indexes.
func (s *DiveListService) Trips() []TripView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TripView, 0, s.list.TripCount())
	for i := range s.list.TripCount() {
		trip, members, _ := s.list.Trip(i)
		out = append(out, TripView{Node: i, Trip: trip, Members: members})
	}
	return out
}

// TripView is one computed trip.
type TripView struct {
	Node    int
	Trip    domain.Trip
	Members []int
}

// ---- selection and expansion -------------------------------------------------------

// ApplySelection reconciles row selection changes reported by a client.
func (s *DiveListService) ApplySelection(changes []divelist.SelectionChange) divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range changes {
		selectionChanges.WithLabelValues(c.Row.Kind.String()).Inc()
	}
	return s.list.ApplySelection(changes)
}

// Toggle flips the selection of one row of the active projection.
func (s *DiveListService) Toggle(ref divelist.RowRef) divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	selectionChanges.WithLabelValues(ref.Kind.String()).Inc()
	return s.list.Toggle(ref)
}

func (s *DiveListService) Expand(trip int) divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Expand(trip)
}

func (s *DiveListService) Collapse(trip int) divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Collapse(trip)
}

func (s *DiveListService) ExpandAll() divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.ExpandAll()
}

func (s *DiveListService) CollapseAll() divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.CollapseAll()
}

// Activate expands or collapses a trip, or requests an edit of a dive.
func (s *DiveListService) Activate(ref divelist.RowRef) divelist.Diff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Activate(ref)
}

// ---- presentation ------------------------------------------------------------------

// SortBy sorts the list, switching projections as needed.
func (s *DiveListService) SortBy(col divelist.Column, order divelist.SortOrder) (divelist.Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.list.SortBy(col, order)
	if err != nil {
		return divelist.Diff{}, fmt.Errorf("service.DiveListService.SortBy: %w", err)
	}
	return d, nil
}

// SetUnits re-renders both projections in new display units.
func (s *DiveListService) SetUnits(u units.Units) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.UpdateUnits(u)
}

// SetAutogroup toggles autogrouping and rebuilds.
func (s *DiveListService) SetAutogroup(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Autogroup == on {
		return
	}
	s.ctx.Autogroup = on
	s.rebuild()
}

// SetWindow changes the trip grouping window and rebuilds.
func (s *DiveListService) SetWindow(window time.Duration) error {
	if window <= 0 {
		return fmt.Errorf("service.DiveListService.SetWindow: %w: window must be positive", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.Window = grouping.Threshold(window)
	s.rebuild()
	return nil
}

// SetColumnVisible shows or hides an optional column.
func (s *DiveListService) SetColumnVisible(col divelist.Column, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.list.SetColumnVisible(col, visible) {
		return fmt.Errorf("service.DiveListService.SetColumnVisible: %w: column %s cannot be hidden",
			domain.ErrValidation, col)
	}
	return nil
}

// SetFont records the list font.
func (s *DiveListService) SetFont(font string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.SetDisplayFont(font)
}

// MarkChanged sets or clears the unsaved-changes flag.
func (s *DiveListService) MarkChanged(changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.MarkChanged(changed)
}

func (s *DiveListService) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.HasUnsavedChanges()
}
