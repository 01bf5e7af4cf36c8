package domain

import "time"

// ExportRow is a single row in the logbook export: one row per dive, with
// the computed trip and statistics flattened in. Raw units throughout.
type ExportRow struct {
	Index  int
	Number int
	When   time.Time

	// Trip fields; zero when the dive is not in a trip.
	TripID    string
	TripWhen  *time.Time
	TripCount int

	DurationSec int
	MaxDepthMM  int
	MeanDepthMM int
	WaterTempMK int
	Rating      int
	Location    string
	Suit        string
	Cylinder    string

	// O2 and He are the dominant mix in permille; MinO2 is the leanest
	// nitrox fraction when the dive used several.
	O2    int
	He    int
	MinO2 int

	SAC         int
	OTU         int
	WeightGrams int
}
