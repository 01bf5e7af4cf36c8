package service

import (
	"github.com/pkordes/dive-logbook/internal/domain"
	"github.com/pkordes/dive-logbook/internal/stats"
)

// Export returns one ExportRow per dive in table order, with the trips of the
// last rebuild attached.
func (s *DiveListService) Export() []domain.ExportRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	tripOf := make(map[int]domain.Trip)
	for i := range s.list.TripCount() {
		trip, members, _ := s.list.Trip(i)
		for _, m := range members {
			tripOf[m] = trip
		}
	}

	rows := make([]domain.ExportRow, 0, s.table.DiveCount())
	for i := range s.table.DiveCount() {
		d, _ := s.table.GetDive(i)
		mix := stats.Classify(d)
		row := domain.ExportRow{
			Index:       d.Index,
			Number:      d.Number,
			When:        d.When,
			DurationSec: d.DurationSec,
			MaxDepthMM:  d.MaxDepthMM,
			MeanDepthMM: d.MeanDepthMM,
			WaterTempMK: d.WaterTempMK,
			Rating:      d.Rating,
			Location:    d.Location,
			Suit:        d.Suit,
			O2:          mix.O2,
			He:          mix.He,
			MinO2:       mix.MinO2,
			SAC:         d.SAC,
			OTU:         d.OTU,
			WeightGrams: d.TotalWeightGrams,
		}
		if cyl, ok := d.Cylinder(0); ok {
			row.Cylinder = cyl.Description
		}
		if trip, ok := tripOf[i]; ok {
			when := trip.When
			row.TripID = trip.ID.String()
			row.TripWhen = &when
			row.TripCount = trip.Count
		}
		rows = append(rows, row)
	}
	return rows
}

// Page returns the dives of one page in table order and the total count.
func (s *DiveListService) Page(p domain.PaginationParams) ([]domain.Dive, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.table.DiveCount()
	lo, hi := p.Bounds(n)
	out := make([]domain.Dive, 0, hi-lo)
	for i := lo; i < hi; i++ {
		d, _ := s.table.GetDive(i)
		out = append(out, *d)
	}
	return out, n
}
