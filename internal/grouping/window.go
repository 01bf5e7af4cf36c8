package grouping

import "time"

// DefaultWindow is how far before a trip's current start a dive may lie and
// still be pulled into that trip.
const DefaultWindow = 72 * time.Hour

// WindowPolicy reports whether a dive at time dive may join a trip whose
// current display timestamp is trip.
type WindowPolicy func(dive, trip time.Time) bool

// Threshold returns a policy admitting any dive no earlier than d before the
// trip. Dives later than the trip always fit.
func Threshold(d time.Duration) WindowPolicy {
	return func(dive, trip time.Time) bool {
		return !dive.Before(trip.Add(-d))
	}
}
