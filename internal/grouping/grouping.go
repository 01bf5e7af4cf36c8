// Package grouping partitions a time-ordered dive sequence into trips.
//
// A pass walks dives latest first. Dives flagged NoTrip stay at the top level,
// dives flagged InTrip join the nearest existing trip whose window admits
// them, and with autogrouping enabled every other dive joins the trip being
// built or starts a new one. A pass never mutates its input: trips loaded from
// hints are copied, and dive flags are only read.
package grouping

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// tripNamespace seeds the ids of trips created by autogrouping, so repeated
// passes over the same dives produce the same ids.
var tripNamespace = uuid.MustParse("6f1c2d4e-8a3b-4c5d-9e7f-0a1b2c3d4e5f")

// Options configures a grouping pass.
type Options struct {
	Autogroup bool
	// Window decides whether a dive fits a trip. Nil means Threshold(DefaultWindow).
	Window WindowPolicy
	// Hints are the persisted trips available to InTrip dives.
	Hints []domain.TripHint
}

// Group is one trip with its members, latest first.
type Group struct {
	Trip    domain.Trip
	Members []int
}

// Root is one top-level entry: either a group (Group >= 0) or a lone dive.
type Root struct {
	Group int
	Dive  int
}

// IsGroup reports whether r refers to a trip aggregate.
func (r Root) IsGroup() bool { return r.Group >= 0 }

// Partition is the result of a grouping pass. Dives are identified by their
// table index throughout.
type Partition struct {
	Groups []Group
	Roots  []Root
	tripOf map[int]int
}

// GroupOf returns the group a dive was attached to.
func (p *Partition) GroupOf(dive int) (int, bool) {
	g, ok := p.tripOf[dive]
	return g, ok
}

// Grouped reports how many dives ended up inside a trip.
func (p *Partition) Grouped() int { return len(p.tripOf) }

// pass carries the state of one Run.
type pass struct {
	opts   Options
	window WindowPolicy
	seq    *TripList
	out    *Partition

	current      *domain.Trip // trip being built by autogrouping
	cursor       *domain.Trip // where the search for InTrip dives starts
	lastAttached *domain.Trip
	groupOf      map[*domain.Trip]int
}

// Run groups dives, which must be ordered latest first. Nil entries are skipped.
func Run(dives []*domain.Dive, opts Options) *Partition {
	p := &pass{
		opts:    opts,
		window:  opts.Window,
		seq:     NewTripList(opts.Hints),
		out:     &Partition{tripOf: make(map[int]int, len(dives))},
		groupOf: make(map[*domain.Trip]int),
	}
	if p.window == nil {
		p.window = Threshold(DefaultWindow)
	}
	p.cursor = p.seq.At(p.seq.Latest())

	for _, d := range dives {
		if d == nil {
			continue
		}
		p.visit(d)
	}
	for t, gi := range p.groupOf {
		p.out.Groups[gi].Trip = *t
	}
	return p.out
}

func (p *pass) visit(d *domain.Dive) {
	var trip *domain.Trip
	switch {
	case d.TripFlag == domain.TripFlagNoTrip:
		p.current = nil
	case p.opts.Autogroup && d.TripFlag != domain.TripFlagInTrip:
		trip = p.current
		if trip == nil || !p.window(d.When, trip.When) {
			trip = p.newTrip(d.When)
		}
	default:
		trip = p.search(d.When)
		if trip == nil && p.opts.Autogroup {
			trip = p.newTrip(d.When)
		}
	}

	if trip == nil {
		p.out.Roots = append(p.out.Roots, Root{Group: -1, Dive: d.Index})
		return
	}
	p.attach(trip, d)
}

// search walks from the cursor toward earlier trips and returns the first
// one whose window admits when.
func (p *pass) search(when time.Time) *domain.Trip {
	i := p.seq.Latest()
	if p.cursor != nil {
		if at := p.seq.Find(p.cursor); at >= 0 {
			i = at
		}
	}
	for ; i >= 0; i = p.seq.Earlier(i) {
		if t := p.seq.At(i); p.window(when, t.When) {
			return t
		}
	}
	return nil
}

func (p *pass) newTrip(when time.Time) *domain.Trip {
	t := &domain.Trip{
		ID:   uuid.NewSHA1(tripNamespace, []byte(when.UTC().Format(time.RFC3339Nano))),
		When: when,
	}
	p.seq.Insert(t)
	return t
}

func (p *pass) attach(trip *domain.Trip, d *domain.Dive) {
	trip.Count++
	trip.When = d.When
	if trip.Location == "" {
		trip.Location = d.Location
	}

	gi, ok := p.groupOf[trip]
	if !ok {
		gi = len(p.out.Groups)
		p.out.Groups = append(p.out.Groups, Group{})
		p.groupOf[trip] = gi
		p.out.Roots = append(p.out.Roots, Root{Group: gi, Dive: -1})
	}
	if trip != p.lastAttached {
		p.finalize(p.lastAttached)
		p.lastAttached = trip
	}
	p.out.Groups[gi].Members = append(p.out.Groups[gi].Members, d.Index)
	p.out.tripOf[d.Index] = gi

	p.current = trip
	p.cursor = trip
}

// finalize writes the running aggregate of t back into its group.
func (p *pass) finalize(t *domain.Trip) {
	if t == nil {
		return
	}
	p.out.Groups[p.groupOf[t]].Trip = *t
}
