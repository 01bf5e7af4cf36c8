package divelist

import (
	"fmt"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// SortBy sorts the active projection by col. Sorting by date shows the
// grouped projection, any other column the flat one; switching carries the
// stored selection over.
//
// A column picked for the first time since the last switch uses its
// remembered direction rather than order.
func (l *List) SortBy(col Column, order SortOrder) (Diff, error) {
	if !col.Sortable() {
		return Diff{}, fmt.Errorf("%w: column %s is not sortable", domain.ErrValidation, col)
	}
	l.sortDiff = nil
	l.Active().SetSort(col, order)
	d := Diff{}
	if l.sortDiff != nil {
		d = *l.sortDiff
		l.sortDiff = nil
		l.shell.Refresh(l.current)
	}
	return l.finish(d), nil
}

// sortColumnChanged is the sort callback of both projections.
func (l *List) sortColumnChanged(col Column, order SortOrder) {
	if l.ctx.swapping {
		return
	}
	if col == l.ctx.LastColumn {
		l.ctx.Order[col] = order
		return
	}
	l.ctx.LastColumn = col

	target := Flat
	if col == ColDate {
		target = Grouped
	}
	if target != l.ctx.Active {
		l.ctx.Active = target
		l.resort(col)
		d := l.reapply(l.Active())
		l.sortDiff = &d
		return
	}
	if order != l.ctx.Order[col] {
		l.resort(col)
	}
}

// resort applies the remembered direction of col to the active projection
// with the sort callback suppressed.
func (l *List) resort(col Column) {
	l.ctx.swapping = true
	defer func() { l.ctx.swapping = false }()
	l.Active().SetSort(col, l.ctx.Order[col])
}
