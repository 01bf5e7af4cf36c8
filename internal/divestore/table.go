// Package divestore holds the in-memory dive table the dive list works on.
package divestore

import (
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// Table is the dive table, kept in ascending time order. A dive's Index is
// its position and is rewritten whenever the table changes shape.
type Table struct {
	dives []*domain.Dive
	hints []domain.TripHint
}

// New builds a table from loaded dives and trip hints. Dives are copied.
func New(dives []domain.Dive, hints []domain.TripHint) *Table {
	t := &Table{
		dives: make([]*domain.Dive, len(dives)),
		hints: slices.Clone(hints),
	}
	for i := range dives {
		d := dives[i]
		t.dives[i] = &d
	}
	slices.SortStableFunc(t.dives, func(a, b *domain.Dive) int {
		return a.When.Compare(b.When)
	})
	t.reindex(0)
	return t
}

func (t *Table) DiveCount() int { return len(t.dives) }

func (t *Table) GetDive(index int) (*domain.Dive, bool) {
	if index < 0 || index >= len(t.dives) {
		return nil, false
	}
	return t.dives[index], true
}

// RecordDive inserts d after every dive at or before its time. The table
// keeps the pointer.
func (t *Table) RecordDive(d *domain.Dive) {
	if d == nil {
		return
	}
	i := len(t.dives)
	for i > 0 && t.dives[i-1].When.After(d.When) {
		i--
	}
	t.dives = slices.Insert(t.dives, i, d)
	t.reindex(i)
}

// Remove deletes the dive at index.
func (t *Table) Remove(index int) (*domain.Dive, bool) {
	d, ok := t.GetDive(index)
	if !ok {
		return nil, false
	}
	t.dives = slices.Delete(t.dives, index, index+1)
	t.reindex(index)
	return d, true
}

// Replace swaps the dive at index for d, moving it if its time changed.
// The stored selection flag carries over.
func (t *Table) Replace(index int, d *domain.Dive) bool {
	old, ok := t.Remove(index)
	if !ok || d == nil {
		if ok {
			t.RecordDive(old)
		}
		return false
	}
	d.Selected = old.Selected
	t.RecordDive(d)
	return true
}

// ByID finds a dive by its persistent id.
func (t *Table) ByID(id uuid.UUID) (*domain.Dive, bool) {
	for _, d := range t.dives {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// TripHints returns the persisted trips loaded with the table.
func (t *Table) TripHints() []domain.TripHint { return slices.Clone(t.hints) }

// SetTripHints replaces the persisted trips.
func (t *Table) SetTripHints(hints []domain.TripHint) { t.hints = slices.Clone(hints) }

// Dives returns copies of every dive in table order.
func (t *Table) Dives() []domain.Dive {
	out := make([]domain.Dive, len(t.dives))
	for i, d := range t.dives {
		out[i] = *d
	}
	return out
}

func (t *Table) reindex(from int) {
	for i := from; i < len(t.dives); i++ {
		t.dives[i].Index = i
	}
}
