package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/dive-logbook/internal/divelist"
	"github.com/pkordes/dive-logbook/internal/service"
	"github.com/pkordes/dive-logbook/internal/units"
)

// ---- response types ----------------------------------------------------------

// ColumnResponse describes one column header.
type ColumnResponse struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

// RowResponse is one row of a projection in display order. Cells holds the
// rendered text of every visible column, keyed by column name.
type RowResponse struct {
	Kind     string            `json:"kind"`
	ID       int               `json:"id"`
	Trip     *int              `json:"trip,omitempty"`
	Depth    int               `json:"depth"`
	Selected bool              `json:"selected"`
	Expanded bool              `json:"expanded,omitempty"`
	Children int               `json:"children,omitempty"`
	Cells    map[string]string `json:"cells"`
}

// SortState is the sort column and direction of a projection.
type SortState struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// DiveListViewResponse is the body of GET /divelist.
type DiveListViewResponse struct {
	Projection string           `json:"projection"`
	Active     string           `json:"active"`
	Sort       SortState        `json:"sort"`
	Units      string           `json:"units"`
	Font       string           `json:"font"`
	Autogroup  bool             `json:"autogroup"`
	Current    int              `json:"current"`
	Selected   int              `json:"selected"`
	EditLabel  string           `json:"edit_label"`
	Unsaved    bool             `json:"unsaved_changes"`
	Columns    []ColumnResponse `json:"columns"`
	Rows       []RowResponse    `json:"rows"`
}

// RowChange is one reported or pushed row selection change.
type RowChange struct {
	Kind     string `json:"kind" validate:"required,oneof=dive trip"`
	ID       int    `json:"id" validate:"gte=0"`
	Selected bool   `json:"selected"`
}

// DiffResponse is what the client must apply after a list operation.
type DiffResponse struct {
	Changes  []RowChange `json:"changes"`
	Expanded []int       `json:"expanded"`
	Current  int         `json:"current"`
	Selected int         `json:"selected"`
}

// ---- request types -----------------------------------------------------------

// SelectionRequest is the body of POST /divelist/selection.
type SelectionRequest struct {
	Changes []RowChange `json:"changes" validate:"required,dive"`
}

// SortRequest is the body of PUT /divelist/sort.
type SortRequest struct {
	Column string `json:"column" validate:"required"`
	Order  string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// UnitsRequest is the body of PUT /divelist/units.
type UnitsRequest struct {
	Units string `json:"units" validate:"required,oneof=metric imperial"`
}

// AutogroupRequest is the body of PUT /divelist/autogroup.
type AutogroupRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// WindowRequest is the body of PUT /divelist/window, e.g. {"window":"96h"}.
type WindowRequest struct {
	Window string `json:"window" validate:"required"`
}

// ColumnRequest is the body of PUT /divelist/columns/{column}.
type ColumnRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

// FontRequest is the body of PUT /divelist/font.
type FontRequest struct {
	Font string `json:"font"`
}

// ChangedState is the body of GET and PUT /divelist/changed.
type ChangedState struct {
	Changed *bool `json:"changed" validate:"required"`
}

// ---- view --------------------------------------------------------------------

// GetDiveList handles GET /divelist.
// ?view=grouped|flat selects a projection; the default is the active one.
func (s *Server) GetDiveList(w http.ResponseWriter, r *http.Request) {
	view, err := queryString(r, "view")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}

	var kind *divelist.ProjectionKind
	if view != "" && view != "active" {
		k, err := divelist.ParseProjectionKind(view)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody(unwrapMessage(err)))
			return
		}
		kind = &k
	}
	writeJSON(w, http.StatusOK, viewToResponse(s.list.Snapshot(kind)))
}

// RebuildDiveList handles POST /divelist/rebuild.
func (s *Server) RebuildDiveList(w http.ResponseWriter, _ *http.Request) {
	s.list.Rebuild()
	writeJSON(w, http.StatusOK, viewToResponse(s.list.Snapshot(nil)))
}

// ---- selection and expansion -------------------------------------------------

// ApplySelection handles POST /divelist/selection.
func (s *Server) ApplySelection(w http.ResponseWriter, r *http.Request) {
	var body SelectionRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	changes := make([]divelist.SelectionChange, 0, len(body.Changes))
	for _, c := range body.Changes {
		kind, err := divelist.ParseRowKind(c.Kind)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		changes = append(changes, divelist.SelectionChange{
			Row:      divelist.RowRef{Kind: kind, ID: c.ID},
			Selected: c.Selected,
		})
	}
	writeJSON(w, http.StatusOK, diffToResponse(s.list.ApplySelection(changes)))
}

// ToggleRow handles POST /divelist/rows/{kind}/{id}/toggle.
func (s *Server) ToggleRow(w http.ResponseWriter, r *http.Request) {
	ref, err := rowRef(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(unwrapMessage(err)))
		return
	}
	writeJSON(w, http.StatusOK, diffToResponse(s.list.Toggle(ref)))
}

// ActivateRow handles POST /divelist/rows/{kind}/{id}/activate.
func (s *Server) ActivateRow(w http.ResponseWriter, r *http.Request) {
	ref, err := rowRef(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(unwrapMessage(err)))
		return
	}
	writeJSON(w, http.StatusOK, diffToResponse(s.list.Activate(ref)))
}

// ExpandTrip handles POST /divelist/trips/{id}/expand.
func (s *Server) ExpandTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, diffToResponse(s.list.Expand(id)))
}

// CollapseTrip handles POST /divelist/trips/{id}/collapse.
func (s *Server) CollapseTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, diffToResponse(s.list.Collapse(id)))
}

func (s *Server) ExpandAll(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, diffToResponse(s.list.ExpandAll()))
}

func (s *Server) CollapseAll(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, diffToResponse(s.list.CollapseAll()))
}

// ---- presentation ------------------------------------------------------------

// SortDiveList handles PUT /divelist/sort.
func (s *Server) SortDiveList(w http.ResponseWriter, r *http.Request) {
	var body SortRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	col, err := divelist.ParseColumn(body.Column)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}
	order, err := divelist.ParseSortOrder(body.Order)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	diff, err := s.list.SortBy(col, order)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, diffToResponse(diff))
}

// SetUnits handles PUT /divelist/units.
func (s *Server) SetUnits(w http.ResponseWriter, r *http.Request) {
	var body UnitsRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	u, err := units.Parse(body.Units)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}
	s.list.SetUnits(u)
	w.WriteHeader(http.StatusNoContent)
}

// SetAutogroup handles PUT /divelist/autogroup.
func (s *Server) SetAutogroup(w http.ResponseWriter, r *http.Request) {
	var body AutogroupRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.list.SetAutogroup(*body.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

// SetWindow handles PUT /divelist/window.
func (s *Server) SetWindow(w http.ResponseWriter, r *http.Request) {
	var body WindowRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	window, err := time.ParseDuration(body.Window)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("window: "+err.Error()))
		return
	}
	if err := s.list.SetWindow(window); err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetColumn handles PUT /divelist/columns/{column}.
func (s *Server) SetColumn(w http.ResponseWriter, r *http.Request) {
	col, err := divelist.ParseColumn(chi.URLParam(r, "column"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody("column not found"))
		return
	}
	var body ColumnRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	if err := s.list.SetColumnVisible(col, *body.Visible); err != nil {
		writeServiceError(w, r, err, "column not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFont handles PUT /divelist/font. An empty font restores the default.
func (s *Server) SetFont(w http.ResponseWriter, r *http.Request) {
	var body FontRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.list.SetFont(body.Font)
	w.WriteHeader(http.StatusNoContent)
}

// GetChanged handles GET /divelist/changed.
func (s *Server) GetChanged(w http.ResponseWriter, _ *http.Request) {
	changed := s.list.HasUnsavedChanges()
	writeJSON(w, http.StatusOK, ChangedState{Changed: &changed})
}

// SetChanged handles PUT /divelist/changed.
func (s *Server) SetChanged(w http.ResponseWriter, r *http.Request) {
	var body ChangedState
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.list.MarkChanged(*body.Changed)
	changed := s.list.HasUnsavedChanges()
	writeJSON(w, http.StatusOK, ChangedState{Changed: &changed})
}

// ---- mapping helpers ---------------------------------------------------------

func viewToResponse(v service.ListView) DiveListViewResponse {
	resp := DiveListViewResponse{
		Projection: v.Projection.String(),
		Active:     v.Active.String(),
		Sort:       SortState{Column: v.SortColumn.String(), Order: v.SortOrder.String()},
		Units:      v.Units.Name(),
		Font:       v.Font,
		Autogroup:  v.Autogroup,
		Current:    v.Current,
		Selected:   v.Selected,
		EditLabel:  v.EditLabel,
		Unsaved:    v.Unsaved,
		Columns:    make([]ColumnResponse, 0, len(v.Columns)),
		Rows:       make([]RowResponse, 0, len(v.Rows)),
	}

	var visible []divelist.Column
	for _, c := range v.Columns {
		resp.Columns = append(resp.Columns, ColumnResponse{Name: c.Column.String(), Title: c.Title, Visible: c.Visible})
		if c.Visible {
			visible = append(visible, c.Column)
		}
	}

	for _, row := range v.Rows {
		out := RowResponse{
			Kind:     row.Ref.Kind.String(),
			ID:       row.Ref.ID,
			Depth:    row.Depth,
			Selected: row.Selected,
			Expanded: row.Expanded,
			Children: row.Children,
			Cells:    make(map[string]string, len(visible)),
		}
		if row.Parent >= 0 {
			trip := row.Parent
			out.Trip = &trip
		}
		for _, c := range visible {
			if text := row.Fields.Text(c); text != "" {
				out.Cells[c.String()] = text
			}
		}
		resp.Rows = append(resp.Rows, out)
	}
	return resp
}

func diffToResponse(d divelist.Diff) DiffResponse {
	resp := DiffResponse{
		Changes:  make([]RowChange, 0, len(d.Changes)),
		Expanded: d.Expanded,
		Current:  d.Current,
		Selected: d.Selected,
	}
	if resp.Expanded == nil {
		resp.Expanded = []int{}
	}
	for _, c := range d.Changes {
		resp.Changes = append(resp.Changes, RowChange{Kind: c.Row.Kind.String(), ID: c.Row.ID, Selected: c.Selected})
	}
	return resp
}
