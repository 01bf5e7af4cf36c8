// Package divelist keeps two projections of the dive table in sync: a grouped
// view with trip aggregate rows, shown while sorting by date, and a flat view
// used for every other sort column. It reconciles selection reported by the
// interaction layer with the selection flags stored on dives.
//
// A List is not safe for concurrent use.
package divelist

import (
	"slices"

	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/grouping"
	"github.com/pkordes/dive-logbook/internal/stats"
	"github.com/pkordes/dive-logbook/internal/units"
)

// Store is the dive table. Indexes run from 0 to DiveCount()-1 in ascending
// time order; GetDive returns a pointer the list may update in place.
type Store interface {
	DiveCount() int
	GetDive(index int) (*domain.Dive, bool)
	RecordDive(d *domain.Dive)
}

// TripHintSource is implemented by stores that carry persisted trips.
type TripHintSource interface {
	TripHints() []domain.TripHint
}

type tripNode struct {
	trip    domain.Trip
	members []int
}

// List is the dive list core.
type List struct {
	store   Store
	ctx     *Context
	shell   Shell
	grouped *Projection
	flat    *Projection
	trips   []tripNode

	selected int
	current  int

	sortDiff *Diff
}

// Option configures a List.
type Option func(*List)

// WithShell sets the shell notified of refreshes and display changes.
func WithShell(s Shell) Option {
	return func(l *List) {
		if s != nil {
			l.shell = s
		}
	}
}

// New returns an empty list over store. Call RebuildAll to populate it.
func New(store Store, ctx *Context, opts ...Option) *List {
	if ctx == nil {
		ctx = NewContext()
	}
	l := &List{
		store:   store,
		ctx:     ctx,
		shell:   NopShell{},
		grouped: newProjection(Grouped),
		flat:    newProjection(Flat),
		current: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.grouped.order = ctx.Order[ColDate]
	l.flat.order = ctx.Order[ColDate]
	l.grouped.onSort = l.sortColumnChanged
	l.flat.onSort = l.sortColumnChanged
	return l
}

func (l *List) Context() *Context { return l.ctx }

// Projection returns the projection of the given kind.
func (l *List) Projection(kind ProjectionKind) *Projection {
	if kind == Flat {
		return l.flat
	}
	return l.grouped
}

// Active returns the projection currently shown.
func (l *List) Active() *Projection { return l.Projection(l.ctx.Active) }

// SelectedCount is the number of dives whose stored flag is set.
func (l *List) SelectedCount() int { return l.selected }

// Current is the dive most recently selected, or -1.
func (l *List) Current() int { return l.current }

// TripCount is the number of trips produced by the last rebuild.
func (l *List) TripCount() int { return len(l.trips) }

// Trip returns trip i of the last rebuild and its members, latest first.
func (l *List) Trip(i int) (domain.Trip, []int, bool) {
	if i < 0 || i >= len(l.trips) {
		return domain.Trip{}, nil, false
	}
	return l.trips[i].trip, slices.Clone(l.trips[i].members), true
}

// SelectedDives returns the indexes of every selected dive, ascending.
func (l *List) SelectedDives() []int {
	var out []int
	for i := range l.store.DiveCount() {
		if d, ok := l.store.GetDive(i); ok && d.Selected {
			out = append(out, i)
		}
	}
	return out
}

// RebuildAll recomputes statistics and trips and repopulates both
// projections from the store. Stored selection flags are carried over.
//
// A default dive is selected only when no dive is selected yet, so a rebuild
// never drops the user's selection. The default is the first dive row of the
// active projection: the most recent dive in the grouped view, or the first
// dive in the current sort order in the flat view.
func (l *List) RebuildAll() {
	n := l.store.DiveCount()
	dives := make([]*domain.Dive, 0, n)
	for i := n - 1; i >= 0; i-- {
		d, ok := l.store.GetDive(i)
		if !ok {
			continue
		}
		d.Index = i
		stats.Annotate(d)
		dives = append(dives, d)
	}

	var hints []domain.TripHint
	if src, ok := l.store.(TripHintSource); ok {
		hints = src.TripHints()
	}
	part := grouping.Run(dives, grouping.Options{
		Autogroup: l.ctx.Autogroup,
		Window:    l.ctx.Window,
		Hints:     hints,
	})
	l.populate(dives, part)

	l.selected = 0
	for _, d := range dives {
		if d.Selected {
			l.selected++
		}
	}
	l.current = -1

	active := l.Active()
	l.reapply(active)
	l.mirrorAll()
	if l.selected > 0 {
		active.walk(func(r *Row, _ int) {
			if l.current < 0 && r.Ref.Kind == KindDive && r.Selected {
				l.current = r.Ref.ID
			}
		})
		l.shell.Refresh(l.current)
		return
	}
	l.selectDefault(active)
}

func (l *List) populate(dives []*domain.Dive, part *grouping.Partition) {
	l.grouped.reset()
	l.flat.reset()

	u := l.ctx.Units
	fields := make(map[int]Fields, len(dives))
	for _, d := range dives {
		f := diveFields(d, u)
		fields[d.Index] = f
		l.flat.addRoot(DiveRef(d.Index), f)
	}

	l.trips = make([]tripNode, len(part.Groups))
	for i, g := range part.Groups {
		l.trips[i] = tripNode{trip: g.Trip, members: slices.Clone(g.Members)}
	}
	for _, r := range part.Roots {
		if !r.IsGroup() {
			l.grouped.addRoot(DiveRef(r.Dive), fields[r.Dive])
			continue
		}
		node := l.trips[r.Group]
		l.grouped.addRoot(TripRef(r.Group), tripFields(node.trip, u))
		for _, m := range node.members {
			l.grouped.addChild(r.Group, DiveRef(m), fields[m])
		}
	}

	l.grouped.sortRows()
	l.flat.sortRows()
}

// selectDefault selects the first dive of p, expanding its trip.
func (l *List) selectDefault(p *Projection) {
	dive, trip, ok := p.firstLeaf()
	if !ok {
		l.shell.Refresh(l.current)
		return
	}
	if trip >= 0 {
		l.expand(p, trip, &Diff{})
	}
	l.ApplySelection([]SelectionChange{{Row: DiveRef(dive), Selected: true}})
}

// UpdateOne recomputes the statistics of one dive and rewrites its row in
// one projection. It reports false when the dive or its row is gone.
func (l *List) UpdateOne(kind ProjectionKind, index int) bool {
	d, ok := l.store.GetDive(index)
	if !ok {
		return false
	}
	stats.Annotate(d)
	return l.Projection(kind).update(DiveRef(index), diveFields(d, l.ctx.Units))
}

// FlushOne rewrites one dive's row in both projections.
func (l *List) FlushOne(index int) {
	l.UpdateOne(Grouped, index)
	l.UpdateOne(Flat, index)
}

// UpdateUnits re-renders every row in both projections for new display units.
func (l *List) UpdateUnits(u units.Units) {
	l.ctx.Units = u
	for _, p := range []*Projection{l.grouped, l.flat} {
		for _, r := range p.rows {
			r.Fields.render(u)
		}
	}
}

// ColumnTitle is the heading of c in the current units.
func (l *List) ColumnTitle(c Column) string { return c.Title(l.ctx.Units) }

// SetDisplayFont records the list font and passes it to the shell.
func (l *List) SetDisplayFont(font string) {
	if font == "" {
		font = DefaultFont
	}
	l.ctx.Font = font
	l.shell.SetFont(font)
}

// SetColumnVisible shows or hides an optional column.
func (l *List) SetColumnVisible(c Column, visible bool) bool {
	if !c.Toggleable() {
		return false
	}
	l.ctx.Visible[c] = visible
	l.shell.SetColumnVisible(c, visible)
	return true
}

// SetAutogroup toggles autogrouping and rebuilds.
func (l *List) SetAutogroup(on bool) {
	l.ctx.Autogroup = on
	l.RebuildAll()
}

// MarkChanged sets or clears the unsaved-changes flag.
func (l *List) MarkChanged(changed bool) { l.ctx.changed = changed }

func (l *List) HasUnsavedChanges() bool { return l.ctx.changed }

// EditLabel is the label of the edit action for the current selection.
func (l *List) EditLabel() string {
	switch l.selected {
	case 0:
		return ""
	case 1:
		return "Edit dive"
	}
	return "Edit dives"
}
