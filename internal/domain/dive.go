package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fixed slot counts carried over from the logbook file format.
const (
	MaxCylinders     = 8
	MaxWeightSystems = 6
)

// AirPermille is the oxygen fraction of air (21%) in permille. A gas mix with
// no oxygen fraction recorded is treated as air.
const AirPermille = 210

// TripFlag controls how a dive takes part in trip grouping.
type TripFlag int

const (
	// TripFlagUnassigned means the dive has not been placed yet; autogrouping
	// may put it into a time-based trip.
	TripFlagUnassigned TripFlag = iota
	// TripFlagNoTrip forces the dive to the top level.
	TripFlagNoTrip
	// TripFlagInTrip means the dive belongs to a pre-existing trip.
	TripFlagInTrip
)

var tripFlagNames = [...]string{"unassigned", "no_trip", "in_trip"}

func (f TripFlag) String() string {
	if f < 0 || int(f) >= len(tripFlagNames) {
		return tripFlagNames[TripFlagUnassigned]
	}
	return tripFlagNames[f]
}

func (f TripFlag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *TripFlag) UnmarshalText(b []byte) error {
	v, err := ParseTripFlag(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseTripFlag converts a stored flag name back into a TripFlag.
// An empty string is read as TripFlagUnassigned.
func ParseTripFlag(s string) (TripFlag, error) {
	if s == "" {
		return TripFlagUnassigned, nil
	}
	for i, name := range tripFlagNames {
		if name == s {
			return TripFlag(i), nil
		}
	}
	return TripFlagUnassigned, fmt.Errorf("%w: unknown trip flag %q", ErrValidation, s)
}

// GasMix holds gas fractions in permille. A zero O2 fraction means air.
type GasMix struct {
	O2 int `json:"o2_permille"`
	He int `json:"he_permille"`
}

// Cylinder is one tank slot of a dive.
// Explicit start/end pressures win over the sample-derived ones when set.
type Cylinder struct {
	Description         string `json:"description,omitempty"`
	SizeML              int    `json:"size_ml"`
	WorkingPressureMbar int    `json:"working_pressure_mbar,omitempty"`
	Mix                 GasMix `json:"mix"`
	StartMbar           int    `json:"start_mbar,omitempty"`
	EndMbar             int    `json:"end_mbar,omitempty"`
	SampleStartMbar     int    `json:"sample_start_mbar,omitempty"`
	SampleEndMbar       int    `json:"sample_end_mbar,omitempty"`
}

// IsNone reports whether the slot is unused: no type, no mix and no pressures.
func (c Cylinder) IsNone() bool {
	return c == Cylinder{}
}

// WeightSystem is one ballast entry of a dive.
type WeightSystem struct {
	Description string `json:"description,omitempty"`
	Grams       int    `json:"grams"`
}

// Sample is a single profile point.
type Sample struct {
	TimeSec       int `json:"time_sec"`
	DepthMM       int `json:"depth_mm"`
	CylinderIndex int `json:"cylinder_index"`
}

// Dive is one logbook entry.
//
// Index is the in-memory identity: the dive's position in the dive table,
// which is kept in ascending time order. ID is the persistent identity.
// SAC, OTU and TotalWeightGrams are derived caches written by the stats package.
type Dive struct {
	ID          uuid.UUID `json:"id"`
	Index       int       `json:"index"`
	Number      int       `json:"number"`
	When        time.Time `json:"when"`
	DurationSec int       `json:"duration_sec"`
	MaxDepthMM  int       `json:"max_depth_mm"`
	MeanDepthMM int       `json:"mean_depth_mm"`
	Rating      int       `json:"rating"`
	Location    string    `json:"location,omitempty"`
	Suit        string    `json:"suit,omitempty"`
	WaterTempMK int       `json:"water_temp_mk,omitempty"`
	TripFlag    TripFlag  `json:"trip_flag"`

	Cylinders []Cylinder     `json:"cylinders"`
	Weights   []WeightSystem `json:"weights"`
	Samples   []Sample       `json:"samples"`

	Selected bool `json:"selected"`

	SAC              int `json:"sac_ml_min"`
	OTU              int `json:"otu"`
	TotalWeightGrams int `json:"total_weight_g"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cylinder returns the cylinder in slot i, or false when i is out of range.
func (d *Dive) Cylinder(i int) (Cylinder, bool) {
	if d == nil || i < 0 || i >= len(d.Cylinders) {
		return Cylinder{}, false
	}
	return d.Cylinders[i], true
}
