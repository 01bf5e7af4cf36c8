package divelist

// SelectionChange is one row whose selection the interaction layer reports
// as changed, or the list pushes back to it.
type SelectionChange struct {
	Row      RowRef
	Selected bool
}

// Diff is what the interaction layer must apply after a list operation.
type Diff struct {
	Changes  []SelectionChange
	Expanded []int
	Current  int
	Selected int
}

// ApplySelection reconciles reported row changes with the stored dive flags.
//
// Dive changes are handled before trip changes: dives are queued at the
// front in reverse arrival order, trips at the back in arrival order. A dive
// change adjusts the selected count and makes the dive current when it is now
// selected. A trip change forces every member to the trip's state, unless at
// least one member already matches it. Rows unknown to the active projection
// are ignored. Every stored flag that changes is mirrored into the inactive
// projection. The shell is refreshed once the queue is drained.
func (l *List) ApplySelection(changes []SelectionChange) Diff {
	queue := make([]SelectionChange, 0, len(changes))
	var trips []SelectionChange
	for _, c := range changes {
		if c.Row.Kind == KindTrip {
			trips = append(trips, c)
			continue
		}
		queue = append(queue, c)
	}
	for i, j := 0, len(queue)-1; i < j; i, j = i+1, j-1 {
		queue[i], queue[j] = queue[j], queue[i]
	}
	queue = append(queue, trips...)

	p := l.Active()
	var d Diff
	for _, c := range queue {
		r := p.row(c.Row)
		if r == nil {
			continue
		}
		r.Selected = c.Selected
		switch c.Row.Kind {
		case KindDive:
			l.selectDive(c.Row.ID, c.Selected)
		case KindTrip:
			l.selectTrip(p, c.Row.ID, c.Selected, &d)
		}
	}
	l.shell.Refresh(l.current)
	return l.finish(d)
}

// Toggle flips the reported selection of one row of the active projection.
func (l *List) Toggle(ref RowRef) Diff {
	r := l.Active().row(ref)
	if r == nil {
		return l.finish(Diff{})
	}
	return l.ApplySelection([]SelectionChange{{Row: ref, Selected: !r.Selected}})
}

func (l *List) selectDive(index int, selected bool) bool {
	d, ok := l.store.GetDive(index)
	if !ok {
		return false
	}
	if d.Selected != selected {
		d.Selected = selected
		if selected {
			l.selected++
		} else {
			l.selected--
		}
	}
	if selected {
		l.current = index
	}
	l.mirror(index)
	return true
}

// mirror copies the stored flag of a dive into the inactive projection. A
// grouped trip row there is recomputed from its members.
func (l *List) mirror(index int) {
	p := l.inactive()
	if r := p.row(DiveRef(index)); r != nil {
		r.Selected = l.diveSelected(index)
	}
	if trip, ok := p.Parent(index); ok {
		if r := p.row(TripRef(trip)); r != nil {
			r.Selected = l.anyMemberSelected(trip)
		}
	}
}

func (l *List) selectTrip(p *Projection, trip int, selected bool, d *Diff) {
	if trip < 0 || trip >= len(l.trips) {
		return
	}
	if l.anyMemberSelected(trip) == selected {
		return
	}
	for _, m := range l.trips[trip].members {
		if !l.selectDive(m, selected) {
			continue
		}
		if r := p.row(DiveRef(m)); r != nil {
			r.Selected = selected
		}
		d.Changes = append(d.Changes, SelectionChange{Row: DiveRef(m), Selected: selected})
	}
}

// mirrorAll copies every stored flag into the inactive projection without
// touching its expansion state.
func (l *List) mirrorAll() {
	l.inactive().walk(func(r *Row, _ int) {
		switch r.Ref.Kind {
		case KindDive:
			r.Selected = l.diveSelected(r.Ref.ID)
		case KindTrip:
			r.Selected = l.anyMemberSelected(r.Ref.ID)
		}
	})
}

func (l *List) inactive() *Projection {
	if l.ctx.Active == Grouped {
		return l.flat
	}
	return l.grouped
}

func (l *List) anyMemberSelected(trip int) bool {
	for _, m := range l.trips[trip].members {
		if d, ok := l.store.GetDive(m); ok && d.Selected {
			return true
		}
	}
	return false
}

func (l *List) diveSelected(index int) bool {
	d, ok := l.store.GetDive(index)
	return ok && d.Selected
}

// Expand opens a trip row of the grouped projection and pushes the stored
// selection of its members. Selected members are always reported; a member
// row still shown selected after its dive was unselected is cleared.
func (l *List) Expand(trip int) Diff {
	var d Diff
	l.expand(l.grouped, trip, &d)
	return l.finish(d)
}

func (l *List) expand(p *Projection, trip int, d *Diff) {
	r := p.row(TripRef(trip))
	if r == nil {
		return
	}
	if !r.Expanded {
		r.Expanded = true
		d.Expanded = append(d.Expanded, trip)
	}
	for _, c := range r.Children {
		row := p.row(c)
		sel := l.diveSelected(c.ID)
		if !sel && !row.Selected {
			continue
		}
		row.Selected = sel
		d.Changes = append(d.Changes, SelectionChange{Row: c, Selected: sel})
	}
}

// Collapse closes a trip row. A collapsed trip with any selected member is
// shown selected.
func (l *List) Collapse(trip int) Diff {
	var d Diff
	l.collapse(l.grouped, trip, &d)
	return l.finish(d)
}

func (l *List) collapse(p *Projection, trip int, d *Diff) {
	r := p.row(TripRef(trip))
	if r == nil {
		return
	}
	r.Expanded = false
	if l.anyMemberSelected(trip) {
		r.Selected = true
		d.Changes = append(d.Changes, SelectionChange{Row: r.Ref, Selected: true})
	}
}

func (l *List) ExpandAll() Diff {
	var d Diff
	for _, ref := range l.grouped.roots {
		if ref.Kind == KindTrip {
			l.expand(l.grouped, ref.ID, &d)
		}
	}
	return l.finish(d)
}

func (l *List) CollapseAll() Diff {
	var d Diff
	for _, ref := range l.grouped.roots {
		if ref.Kind == KindTrip {
			l.collapse(l.grouped, ref.ID, &d)
		}
	}
	return l.finish(d)
}

// Activate handles a double click: trips toggle their expansion, dives are
// handed to the shell for editing.
func (l *List) Activate(ref RowRef) Diff {
	if ref.Kind == KindTrip {
		r := l.grouped.row(ref)
		if r != nil && r.Expanded {
			return l.Collapse(ref.ID)
		}
		return l.Expand(ref.ID)
	}
	if _, ok := l.store.GetDive(ref.ID); ok {
		l.shell.EditDive(ref.ID)
	}
	return l.finish(Diff{})
}

// reapply pushes the stored selection into p after it becomes active.
// Trips holding a selected dive are expanded and shown selected.
func (l *List) reapply(p *Projection) Diff {
	var d Diff
	p.walk(func(r *Row, _ int) {
		switch r.Ref.Kind {
		case KindDive:
			r.Selected = l.diveSelected(r.Ref.ID)
			if r.Selected {
				d.Changes = append(d.Changes, SelectionChange{Row: r.Ref, Selected: true})
			}
		case KindTrip:
			r.Selected = l.anyMemberSelected(r.Ref.ID)
			if r.Selected {
				if !r.Expanded {
					r.Expanded = true
					d.Expanded = append(d.Expanded, r.Ref.ID)
				}
				d.Changes = append(d.Changes, SelectionChange{Row: r.Ref, Selected: true})
			}
		}
	})
	return d
}

func (l *List) finish(d Diff) Diff {
	d.Current = l.current
	d.Selected = l.selected
	return d
}
