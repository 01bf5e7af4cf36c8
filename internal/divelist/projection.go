package divelist

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// ProjectionKind selects one of the two simultaneous views of the dive table.
type ProjectionKind int

const (
	// Grouped shows trips as expandable aggregate rows. It is used while the
	// list is sorted by date.
	Grouped ProjectionKind = iota
	// Flat shows one row per dive and is used for every other sort column.
	Flat
)

func (k ProjectionKind) String() string {
	if k == Flat {
		return "flat"
	}
	return "grouped"
}

// ParseProjectionKind accepts "grouped" or "flat".
func ParseProjectionKind(s string) (ProjectionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grouped", "tree":
		return Grouped, nil
	case "flat", "list":
		return Flat, nil
	}
	return 0, fmt.Errorf("%w: unknown view %q", domain.ErrValidation, s)
}

// RowKind tells dive rows from trip aggregate rows.
type RowKind int

const (
	KindDive RowKind = iota
	KindTrip
)

func (k RowKind) String() string {
	if k == KindTrip {
		return "trip"
	}
	return "dive"
}

// ParseRowKind accepts "dive" or "trip".
func ParseRowKind(s string) (RowKind, error) {
	switch s {
	case "dive":
		return KindDive, nil
	case "trip":
		return KindTrip, nil
	}
	return 0, fmt.Errorf("%w: unknown row kind %q", domain.ErrValidation, s)
}

// RowRef identifies a row: a dive by its table index or a trip by its
// position in the last grouping pass.
type RowRef struct {
	Kind RowKind
	ID   int
}

func DiveRef(index int) RowRef { return RowRef{Kind: KindDive, ID: index} }

func TripRef(trip int) RowRef { return RowRef{Kind: KindTrip, ID: trip} }

func (r RowRef) String() string { return r.Kind.String() + "/" + strconv.Itoa(r.ID) }

// Row is one projection row. Selected and Expanded are view state mirrored
// from the interaction layer; they are not the stored selection.
type Row struct {
	Ref      RowRef
	Fields   Fields
	Selected bool
	Expanded bool
	Children []RowRef
}

// Projection is one ordered view over the dive table.
type Projection struct {
	kind    ProjectionKind
	rows    map[RowRef]*Row
	roots   []RowRef
	parent  map[int]int
	rank    map[RowRef]int
	sortCol Column
	order   SortOrder
	onSort  func(Column, SortOrder)
}

func newProjection(kind ProjectionKind) *Projection {
	p := &Projection{kind: kind, sortCol: ColDate, order: Descending}
	p.reset()
	return p
}

func (p *Projection) reset() {
	p.rows = make(map[RowRef]*Row)
	p.roots = nil
	p.parent = make(map[int]int)
	p.rank = make(map[RowRef]int)
}

func (p *Projection) Kind() ProjectionKind { return p.kind }

// Sort returns the current sort column and direction.
func (p *Projection) Sort() (Column, SortOrder) { return p.sortCol, p.order }

// Len returns the number of rows, trip rows included.
func (p *Projection) Len() int { return len(p.rows) }

func (p *Projection) add(ref RowRef, f Fields) *Row {
	r := &Row{Ref: ref, Fields: f}
	p.rows[ref] = r
	p.rank[ref] = len(p.rank)
	return r
}

func (p *Projection) addRoot(ref RowRef, f Fields) {
	p.add(ref, f)
	p.roots = append(p.roots, ref)
}

func (p *Projection) addChild(trip int, ref RowRef, f Fields) {
	parent := p.rows[TripRef(trip)]
	if parent == nil {
		return
	}
	p.add(ref, f)
	parent.Children = append(parent.Children, ref)
	p.parent[ref.ID] = trip
}

func (p *Projection) row(ref RowRef) *Row { return p.rows[ref] }

// Row returns a copy of the row for ref.
func (p *Projection) Row(ref RowRef) (Row, bool) {
	r, ok := p.rows[ref]
	if !ok {
		return Row{}, false
	}
	out := *r
	out.Children = slices.Clone(r.Children)
	return out, true
}

// Roots returns the top-level rows in display order.
func (p *Projection) Roots() []RowRef { return slices.Clone(p.roots) }

// Children returns the member rows of a trip in display order.
func (p *Projection) Children(trip int) []RowRef {
	r := p.rows[TripRef(trip)]
	if r == nil {
		return nil
	}
	return slices.Clone(r.Children)
}

// Parent returns the trip a dive row sits under, if any.
func (p *Projection) Parent(dive int) (int, bool) {
	t, ok := p.parent[dive]
	return t, ok
}

// DiveIDs returns the indexes of every dive row, ascending.
func (p *Projection) DiveIDs() []int {
	out := make([]int, 0, len(p.rows))
	for ref := range p.rows {
		if ref.Kind == KindDive {
			out = append(out, ref.ID)
		}
	}
	slices.Sort(out)
	return out
}

// Walk visits every row in display order, children right after their trip.
func (p *Projection) Walk(fn func(r Row, depth int)) {
	p.walk(func(r *Row, depth int) {
		out := *r
		out.Children = slices.Clone(r.Children)
		fn(out, depth)
	})
}

func (p *Projection) walk(fn func(r *Row, depth int)) {
	for _, ref := range p.roots {
		r := p.rows[ref]
		fn(r, 0)
		for _, c := range r.Children {
			fn(p.rows[c], 1)
		}
	}
}

// firstLeaf returns the first dive row in display order and its parent trip,
// or -1 as the trip for a top-level dive.
func (p *Projection) firstLeaf() (dive, trip int, ok bool) {
	for _, ref := range p.roots {
		if ref.Kind == KindDive {
			return ref.ID, -1, true
		}
		if c := p.rows[ref].Children; len(c) > 0 {
			return c[0].ID, ref.ID, true
		}
	}
	return 0, -1, false
}

// SetSort reorders the projection and reports the change to the sort callback.
func (p *Projection) SetSort(col Column, order SortOrder) {
	p.sortCol, p.order = col, order
	p.sortRows()
	if p.onSort != nil {
		p.onSort(col, order)
	}
}

func (p *Projection) sortRows() {
	slices.SortStableFunc(p.roots, p.compare)
	for _, ref := range p.roots {
		if r := p.rows[ref]; len(r.Children) > 0 {
			slices.SortStableFunc(r.Children, p.compare)
		}
	}
}

func (p *Projection) compare(a, b RowRef) int {
	c := compareFields(p.rows[a].Fields, p.rows[b].Fields, p.sortCol)
	if p.order == Descending {
		c = -c
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(p.rank[a], p.rank[b])
}

// update replaces the derived fields of an existing row.
func (p *Projection) update(ref RowRef, f Fields) bool {
	r := p.rows[ref]
	if r == nil {
		return false
	}
	r.Fields = f
	return true
}
