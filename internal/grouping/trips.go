package grouping

import (
	"slices"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// TripList is the ordered trip sequence a grouping pass searches, latest
// trip first. It holds pointers so a pass can update trips in place.
type TripList struct {
	trips []*domain.Trip
}

// NewTripList builds a sequence from persisted hints. Each hint becomes a
// fresh trip with a zero member count.
func NewTripList(hints []domain.TripHint) *TripList {
	l := &TripList{trips: make([]*domain.Trip, 0, len(hints))}
	for _, h := range hints {
		t := h.Trip()
		l.Insert(&t)
	}
	return l
}

func (l *TripList) Len() int { return len(l.trips) }

// At returns the trip at position i, or nil when i is out of range.
func (l *TripList) At(i int) *domain.Trip {
	if i < 0 || i >= len(l.trips) {
		return nil
	}
	return l.trips[i]
}

// Insert places t by time, after any trips with the same timestamp, and
// returns its position.
func (l *TripList) Insert(t *domain.Trip) int {
	i := 0
	for i < len(l.trips) && !l.trips[i].When.Before(t.When) {
		i++
	}
	l.trips = slices.Insert(l.trips, i, t)
	return i
}

// Find returns the position of t, or -1.
func (l *TripList) Find(t *domain.Trip) int {
	return slices.Index(l.trips, t)
}

// Latest returns the position of the most recent trip, or -1 when empty.
func (l *TripList) Latest() int {
	if len(l.trips) == 0 {
		return -1
	}
	return 0
}

// Earlier returns the position of the trip preceding i in time, or -1.
func (l *TripList) Earlier(i int) int {
	if i < 0 || i+1 >= len(l.trips) {
		return -1
	}
	return i + 1
}
