// Package domain contains the core data types for the dive logbook.
// It is imported by every other internal package (stats, grouping, divelist,
// repo, service, handler) and depends only on uuid.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is an aggregate of temporally close dives.
//
// When is the display timestamp: the time of the member most recently
// attached during a grouping pass, which ends up as the earliest member.
// Count is the running member count. Location is the first non-empty
// location contributed by a member and does not change afterwards.
// Count, When and Location are only final once the pass has visited every member.
type Trip struct {
	ID       uuid.UUID `json:"id"`
	When     time.Time `json:"when"`
	Count    int       `json:"count"`
	Location string    `json:"location,omitempty"`
}

// TripHint is a persisted trip used as pre-existing membership during grouping.
type TripHint struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Trip converts a hint into a fresh trip record for one grouping pass.
func (h TripHint) Trip() Trip {
	return Trip{ID: h.ID, When: h.StartedAt, Location: h.Location}
}
