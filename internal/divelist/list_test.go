package divelist_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dive-logbook/internal/divelist"
	"github.com/pkordes/dive-logbook/internal/divestore"
	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/units"
)

// ---- fixtures ----------------------------------------------------------------

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.Add(time.Duration(n) * 24 * time.Hour) }

type recShell struct {
	refreshes []int
	fonts     []string
	columns   map[divelist.Column]bool
	edits     []int
}

func (s *recShell) Refresh(current int) { s.refreshes = append(s.refreshes, current) }
func (s *recShell) SetFont(font string) { s.fonts = append(s.fonts, font) }
func (s *recShell) SetColumnVisible(c divelist.Column, v bool) {
	if s.columns == nil {
		s.columns = make(map[divelist.Column]bool)
	}
	s.columns[c] = v
}
func (s *recShell) EditDive(index int) { s.edits = append(s.edits, index) }

var _ divelist.Shell = (*recShell)(nil)

// standardDives yields, with autogrouping on:
//
//	dive 4 (day 20, NoTrip)       top level
//	trip 0: dive 3 (day 10)
//	trip 1: dives 2, 1, 0 (days 2, 1, 0)
func standardDives() []domain.Dive {
	return []domain.Dive{
		{Number: 1, When: day(0), MaxDepthMM: 10000, Location: "Blue Hole"},
		{Number: 2, When: day(1), MaxDepthMM: 30000},
		{Number: 3, When: day(2), MaxDepthMM: 20000},
		{Number: 4, When: day(10), MaxDepthMM: 15000, Location: "Wreck"},
		{Number: 5, When: day(20), MaxDepthMM: 5000, TripFlag: domain.TripFlagNoTrip},
	}
}

func newList(t *testing.T, dives []domain.Dive) (*divelist.List, *divestore.Table, *recShell) {
	t.Helper()
	tbl := divestore.New(dives, nil)
	shell := &recShell{}
	ctx := divelist.NewContext()
	ctx.Autogroup = true
	l := divelist.New(tbl, ctx, divelist.WithShell(shell))
	l.RebuildAll()
	return l, tbl, shell
}

func selected(t *testing.T, tbl *divestore.Table, index int) bool {
	t.Helper()
	d, ok := tbl.GetDive(index)
	require.True(t, ok)
	return d.Selected
}

func assertCountInvariant(t *testing.T, l *divelist.List) {
	t.Helper()
	assert.Equal(t, len(l.SelectedDives()), l.SelectedCount())
}

// ---- rebuild -----------------------------------------------------------------

func TestRebuildAll_BothProjectionsHoldSameDives(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	grouped := l.Projection(divelist.Grouped)
	flat := l.Projection(divelist.Flat)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, grouped.DiveIDs())
	assert.Equal(t, grouped.DiveIDs(), flat.DiveIDs())
	for _, i := range flat.DiveIDs() {
		g, ok := grouped.Row(divelist.DiveRef(i))
		require.True(t, ok)
		f, ok := flat.Row(divelist.DiveRef(i))
		require.True(t, ok)
		assert.Equal(t, g.Fields, f.Fields, "dive %d", i)
	}
}

func TestRebuildAll_GroupsTrips(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	require.Equal(t, 2, l.TripCount())
	trip, members, ok := l.Trip(1)
	require.True(t, ok)
	assert.Equal(t, []int{2, 1, 0}, members)
	assert.Equal(t, 3, trip.Count)
	assert.Equal(t, "Blue Hole", trip.Location)

	grouped := l.Projection(divelist.Grouped)
	assert.Equal(t, []divelist.RowRef{
		divelist.DiveRef(4), divelist.TripRef(0), divelist.TripRef(1),
	}, grouped.Roots())
	assert.Equal(t, []divelist.RowRef{
		divelist.DiveRef(2), divelist.DiveRef(1), divelist.DiveRef(0),
	}, grouped.Children(1))

	row, _ := grouped.Row(divelist.TripRef(1))
	assert.Equal(t, "Trip Sun, Jun 1, 2025 (3 dives)", row.Fields.Text(divelist.ColDate))

	parent, ok := grouped.Parent(1)
	require.True(t, ok)
	assert.Equal(t, 1, parent)
	_, ok = grouped.Parent(4)
	assert.False(t, ok)
}

func TestRebuildAll_SelectsMostRecentDive(t *testing.T) {
	l, tbl, shell := newList(t, standardDives())

	assert.Equal(t, 4, l.Current())
	assert.Equal(t, 1, l.SelectedCount())
	assert.True(t, selected(t, tbl, 4))
	assert.Equal(t, []int{4}, shell.refreshes)
}

func TestRebuildAll_DefaultSelectionExpandsItsTrip(t *testing.T) {
	l, tbl, _ := newList(t, []domain.Dive{{When: day(0)}, {When: day(1)}})

	require.Equal(t, 1, l.TripCount())
	row, ok := l.Projection(divelist.Grouped).Row(divelist.TripRef(0))
	require.True(t, ok)
	assert.True(t, row.Expanded)
	assert.Equal(t, 1, l.Current())
	assert.True(t, selected(t, tbl, 1))
}

func TestRebuildAll_KeepsStoredSelection(t *testing.T) {
	dives := standardDives()
	dives[1].Selected = true
	dives[3].Selected = true

	l, tbl, _ := newList(t, dives)

	assert.Equal(t, 2, l.SelectedCount())
	assert.False(t, selected(t, tbl, 4), "no default selection when dives are already selected")
	assert.Equal(t, 3, l.Current(), "first selected dive in display order")
	row, _ := l.Projection(divelist.Grouped).Row(divelist.TripRef(1))
	assert.True(t, row.Expanded)
	assert.True(t, row.Selected)
}

func TestRebuildAll_FlatDefaultFollowsSortOrder(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	_, err := l.SortBy(divelist.ColDepth, divelist.Descending)
	require.NoError(t, err)
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.DiveRef(4), Selected: false}})
	require.Zero(t, l.SelectedCount())

	l.RebuildAll()

	assert.Equal(t, 1, l.Current(), "deepest dive comes first")
	assert.Equal(t, []int{1}, l.SelectedDives())
	assert.True(t, selected(t, tbl, 1))
	row, _ := l.Projection(divelist.Grouped).Row(divelist.DiveRef(1))
	assert.True(t, row.Selected, "inactive grouped view follows the stored flag")
	trip, _ := l.Projection(divelist.Grouped).Row(divelist.TripRef(1))
	assert.True(t, trip.Selected)
}

func TestRebuildAll_EmptyTable(t *testing.T) {
	l, _, shell := newList(t, nil)

	assert.Equal(t, -1, l.Current())
	assert.Zero(t, l.SelectedCount())
	assert.Zero(t, l.Active().Len())
	assert.Equal(t, []int{-1}, shell.refreshes)
}

func TestRebuildAll_AutogroupOff(t *testing.T) {
	tbl := divestore.New(standardDives(), nil)
	l := divelist.New(tbl, nil)

	l.RebuildAll()

	assert.Zero(t, l.TripCount())
	assert.Len(t, l.Projection(divelist.Grouped).Roots(), 5)

	l.SetAutogroup(true)
	assert.Equal(t, 2, l.TripCount())
}

// ---- per-dive refresh ----------------------------------------------------------

func TestFlushOne_UpdatesBothProjections(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	d, _ := tbl.GetDive(2)
	d.MaxDepthMM = 42000
	d.Weights = []domain.WeightSystem{{Grams: 4000}}

	l.FlushOne(2)

	for _, kind := range []divelist.ProjectionKind{divelist.Grouped, divelist.Flat} {
		row, ok := l.Projection(kind).Row(divelist.DiveRef(2))
		require.True(t, ok)
		assert.Equal(t, 42000, row.Fields.DepthMM, kind.String())
		assert.Equal(t, 4000, row.Fields.WeightGrams, kind.String())
		assert.Equal(t, "42", row.Fields.Text(divelist.ColDepth))
	}
}

func TestUpdateOne_TouchesOnlyOneProjection(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	d, _ := tbl.GetDive(0)
	d.MaxDepthMM = 12000

	require.True(t, l.UpdateOne(divelist.Flat, 0))

	flat, _ := l.Projection(divelist.Flat).Row(divelist.DiveRef(0))
	grouped, _ := l.Projection(divelist.Grouped).Row(divelist.DiveRef(0))
	assert.Equal(t, 12000, flat.Fields.DepthMM)
	assert.Equal(t, 10000, grouped.Fields.DepthMM)
	assert.False(t, l.UpdateOne(divelist.Flat, 99))
}

func TestUpdateUnits_RerendersEveryRow(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	l.UpdateUnits(units.Imperial)

	assert.Equal(t, "ft", l.ColumnTitle(divelist.ColDepth))
	for _, kind := range []divelist.ProjectionKind{divelist.Grouped, divelist.Flat} {
		row, _ := l.Projection(kind).Row(divelist.DiveRef(1))
		assert.Equal(t, "98", row.Fields.Text(divelist.ColDepth), kind.String())
	}
}

// ---- selection -----------------------------------------------------------------

func TestApplySelection_TripSelectsEveryMember(t *testing.T) {
	l, tbl, shell := newList(t, standardDives())
	before := l.SelectedCount()

	diff := l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: true}})

	assert.Equal(t, before+3, l.SelectedCount())
	assert.Equal(t, 0, l.Current(), "the last member processed becomes current")
	assert.Len(t, diff.Changes, 3)
	for _, i := range []int{0, 1, 2} {
		assert.True(t, selected(t, tbl, i))
	}
	assert.Equal(t, 0, shell.refreshes[len(shell.refreshes)-1])
	assertCountInvariant(t, l)
}

func TestApplySelection_TripNoOpWhenAMemberAlreadyMatches(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.DiveRef(1), Selected: true}})
	before := l.SelectedCount()

	diff := l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: true}})

	assert.Empty(t, diff.Changes)
	assert.Equal(t, before, l.SelectedCount())
	assert.False(t, selected(t, tbl, 0))
	assertCountInvariant(t, l)
}

func TestApplySelection_TripUnselect(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: true}})

	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: false}})

	assert.Equal(t, 1, l.SelectedCount())
	assert.False(t, selected(t, tbl, 1))
	assertCountInvariant(t, l)
}

func TestApplySelection_DivesBeforeTrips(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	l.ApplySelection([]divelist.SelectionChange{
		{Row: divelist.TripRef(0), Selected: true},
		{Row: divelist.DiveRef(1), Selected: true},
	})

	assert.Equal(t, 3, l.Current(), "the trip is processed after the dive")
	assert.Equal(t, 3, l.SelectedCount())
	assertCountInvariant(t, l)
}

func TestApplySelection_DiveUnselectKeepsCount(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())

	diff := l.ApplySelection([]divelist.SelectionChange{
		{Row: divelist.DiveRef(4), Selected: false},
		{Row: divelist.DiveRef(4), Selected: false},
	})

	assert.Zero(t, diff.Selected)
	assert.False(t, selected(t, tbl, 4))
	assertCountInvariant(t, l)
}

func TestApplySelection_IgnoresUnknownRows(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	l.ApplySelection([]divelist.SelectionChange{
		{Row: divelist.DiveRef(42), Selected: true},
		{Row: divelist.TripRef(9), Selected: true},
	})

	assert.Equal(t, 1, l.SelectedCount())
}

func TestToggle(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())

	l.Toggle(divelist.DiveRef(2))
	assert.True(t, selected(t, tbl, 2))
	assert.Equal(t, 2, l.Current())

	l.Toggle(divelist.DiveRef(2))
	assert.False(t, selected(t, tbl, 2))
	assertCountInvariant(t, l)
}

func TestCollapse_MarksTripSelectedWhenAMemberIs(t *testing.T) {
	l, _, _ := newList(t, standardDives())
	l.Expand(1)
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.DiveRef(1), Selected: true}})

	diff := l.Collapse(1)

	assert.Contains(t, diff.Changes, divelist.SelectionChange{Row: divelist.TripRef(1), Selected: true})
	row, _ := l.Projection(divelist.Grouped).Row(divelist.TripRef(1))
	assert.False(t, row.Expanded)
	assert.True(t, row.Selected)

	diff = l.Collapse(0)
	assert.Empty(t, diff.Changes)
}

func TestExpand_PushesStoredSelection(t *testing.T) {
	dives := standardDives()
	dives[0].Selected = true
	l, _, _ := newList(t, dives)
	l.CollapseAll()

	diff := l.Expand(1)

	assert.Equal(t, []int{1}, diff.Expanded)
	assert.Equal(t, []divelist.SelectionChange{{Row: divelist.DiveRef(0), Selected: true}}, diff.Changes)
}

func TestExpand_ClearsMemberUnselectedInFlatView(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: true}})
	_, err := l.SortBy(divelist.ColDepth, divelist.Descending)
	require.NoError(t, err)
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.DiveRef(2), Selected: false}})

	diff := l.Expand(1)

	assert.False(t, selected(t, tbl, 2))
	assert.Equal(t, []divelist.SelectionChange{
		{Row: divelist.DiveRef(1), Selected: true},
		{Row: divelist.DiveRef(0), Selected: true},
	}, diff.Changes)
	row, _ := l.Projection(divelist.Grouped).Row(divelist.DiveRef(2))
	assert.False(t, row.Selected)
	assertCountInvariant(t, l)
}

func TestExpand_ReportsStaleSelectedRow(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: true}})
	// The stored flag is cleared without going through the list.
	d, ok := tbl.GetDive(2)
	require.True(t, ok)
	d.Selected = false

	diff := l.Expand(1)

	assert.Equal(t, []divelist.SelectionChange{
		{Row: divelist.DiveRef(2), Selected: false},
		{Row: divelist.DiveRef(1), Selected: true},
		{Row: divelist.DiveRef(0), Selected: true},
	}, diff.Changes)
	row, _ := l.Projection(divelist.Grouped).Row(divelist.DiveRef(2))
	assert.False(t, row.Selected)
}

func TestExpandAll(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	diff := l.ExpandAll()

	assert.ElementsMatch(t, []int{0, 1}, diff.Expanded)
}

func TestActivate(t *testing.T) {
	l, _, shell := newList(t, standardDives())

	l.Activate(divelist.DiveRef(3))
	assert.Equal(t, []int{3}, shell.edits)

	l.Activate(divelist.TripRef(0))
	row, _ := l.Projection(divelist.Grouped).Row(divelist.TripRef(0))
	assert.True(t, row.Expanded)

	l.Activate(divelist.TripRef(0))
	row, _ = l.Projection(divelist.Grouped).Row(divelist.TripRef(0))
	assert.False(t, row.Expanded)
}

func TestFlatProjectionIgnoresTripRows(t *testing.T) {
	l, _, _ := newList(t, standardDives())
	_, err := l.SortBy(divelist.ColDepth, divelist.Descending)
	require.NoError(t, err)

	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.TripRef(1), Selected: true}})

	assert.Equal(t, 1, l.SelectedCount())
}

func TestApplySelection_MirrorsIntoInactiveProjection(t *testing.T) {
	l, tbl, _ := newList(t, standardDives())
	_, err := l.SortBy(divelist.ColDepth, divelist.Descending)
	require.NoError(t, err)

	l.ApplySelection([]divelist.SelectionChange{
		{Row: divelist.DiveRef(4), Selected: false},
		{Row: divelist.DiveRef(1), Selected: true},
	})

	grouped := l.Projection(divelist.Grouped)
	flat := l.Projection(divelist.Flat)
	for _, i := range grouped.DiveIDs() {
		g, _ := grouped.Row(divelist.DiveRef(i))
		f, _ := flat.Row(divelist.DiveRef(i))
		assert.Equal(t, selected(t, tbl, i), g.Selected, "grouped dive %d", i)
		assert.Equal(t, selected(t, tbl, i), f.Selected, "flat dive %d", i)
	}
	trip, _ := grouped.Row(divelist.TripRef(1))
	assert.True(t, trip.Selected, "trip 1 holds dive 1")
	trip, _ = grouped.Row(divelist.TripRef(0))
	assert.False(t, trip.Selected)
	assertCountInvariant(t, l)
}

// ---- sorting -------------------------------------------------------------------

func TestSortBy_SwitchesProjectionAndKeepsSelection(t *testing.T) {
	l, _, _ := newList(t, standardDives())
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.DiveRef(1), Selected: true}})

	diff, err := l.SortBy(divelist.ColDepth, divelist.Descending)
	require.NoError(t, err)

	assert.Equal(t, divelist.Flat, l.Context().Active)
	assert.Equal(t, divelist.ColDepth, l.Context().LastColumn)
	assert.ElementsMatch(t, []divelist.SelectionChange{
		{Row: divelist.DiveRef(1), Selected: true},
		{Row: divelist.DiveRef(4), Selected: true},
	}, diff.Changes)
	flat := l.Projection(divelist.Flat)
	assert.Equal(t, []divelist.RowRef{
		divelist.DiveRef(1), divelist.DiveRef(2), divelist.DiveRef(3), divelist.DiveRef(0), divelist.DiveRef(4),
	}, flat.Roots())
	row, _ := flat.Row(divelist.DiveRef(1))
	assert.True(t, row.Selected)

	_, err = l.SortBy(divelist.ColDate, divelist.Descending)
	require.NoError(t, err)

	assert.Equal(t, divelist.Grouped, l.Context().Active)
	trip, _ := l.Projection(divelist.Grouped).Row(divelist.TripRef(1))
	assert.True(t, trip.Expanded, "the trip holding a selected dive is expanded")
	dive, _ := l.Projection(divelist.Grouped).Row(divelist.DiveRef(1))
	assert.True(t, dive.Selected)
	assert.Equal(t, divelist.DiveRef(4), l.Projection(divelist.Grouped).Roots()[0])
	assertCountInvariant(t, l)
}

func TestSortBy_RemembersDirectionPerColumn(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	// First pick of a column applies its remembered direction.
	_, err := l.SortBy(divelist.ColDepth, divelist.Ascending)
	require.NoError(t, err)
	col, order := l.Projection(divelist.Flat).Sort()
	assert.Equal(t, divelist.ColDepth, col)
	assert.Equal(t, divelist.Descending, order)

	// Picking it again flips and stores the direction.
	_, err = l.SortBy(divelist.ColDepth, divelist.Ascending)
	require.NoError(t, err)
	_, order = l.Projection(divelist.Flat).Sort()
	assert.Equal(t, divelist.Ascending, order)
	assert.Equal(t, divelist.Ascending, l.Context().Order[divelist.ColDepth])
	assert.Equal(t, divelist.DiveRef(4), l.Projection(divelist.Flat).Roots()[0])

	// Another flat column does not switch projections.
	_, err = l.SortBy(divelist.ColSAC, divelist.Descending)
	require.NoError(t, err)
	assert.Equal(t, divelist.Flat, l.Context().Active)
	assert.Equal(t, divelist.ColSAC, l.Context().LastColumn)
}

func TestSortBy_Nitrox(t *testing.T) {
	dives := []domain.Dive{
		{When: day(0), Cylinders: []domain.Cylinder{{SizeML: 12000, Mix: domain.GasMix{O2: 320}}}},
		{When: day(10), Cylinders: []domain.Cylinder{{SizeML: 12000}}},
		{When: day(20), Cylinders: []domain.Cylinder{{SizeML: 12000, Mix: domain.GasMix{O2: 180, He: 450}}}},
	}
	l, _, _ := newList(t, dives)

	_, err := l.SortBy(divelist.ColNitrox, divelist.Descending)
	require.NoError(t, err)

	assert.Equal(t, []divelist.RowRef{
		divelist.DiveRef(2), divelist.DiveRef(0), divelist.DiveRef(1),
	}, l.Projection(divelist.Flat).Roots())
	row, _ := l.Projection(divelist.Flat).Row(divelist.DiveRef(1))
	assert.Equal(t, "air", row.Fields.Text(divelist.ColNitrox))
}

func TestSortBy_RejectsNumberColumn(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	_, err := l.SortBy(divelist.ColNr, divelist.Ascending)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, divelist.Grouped, l.Context().Active)
}

// ---- display preferences ---------------------------------------------------------

func TestDisplayPreferences(t *testing.T) {
	l, _, shell := newList(t, standardDives())

	l.SetDisplayFont("Mono 10")
	l.SetDisplayFont("")
	assert.Equal(t, []string{"Mono 10", divelist.DefaultFont}, shell.fonts)

	assert.True(t, l.SetColumnVisible(divelist.ColSAC, false))
	assert.False(t, l.SetColumnVisible(divelist.ColDate, false))
	assert.Equal(t, map[divelist.Column]bool{divelist.ColSAC: false}, shell.columns)
	assert.False(t, l.Context().Visible[divelist.ColSAC])
}

func TestUnsavedChangesAndEditLabel(t *testing.T) {
	l, _, _ := newList(t, standardDives())

	assert.False(t, l.HasUnsavedChanges())
	l.MarkChanged(true)
	assert.True(t, l.HasUnsavedChanges())

	assert.Equal(t, "Edit dive", l.EditLabel())
	l.ApplySelection([]divelist.SelectionChange{{Row: divelist.DiveRef(0), Selected: true}})
	assert.Equal(t, "Edit dives", l.EditLabel())
	l.ApplySelection([]divelist.SelectionChange{
		{Row: divelist.DiveRef(0), Selected: false},
		{Row: divelist.DiveRef(4), Selected: false},
	})
	assert.Empty(t, l.EditLabel())
}
