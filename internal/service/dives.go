package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/dive-logbook/internal/domain"
)

// List returns every loaded dive in table order, statistics included.
func (s *DiveListService) List() []domain.Dive {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Dives()
}

// Get returns the dive at index.
func (s *DiveListService) Get(index int) (domain.Dive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.table.GetDive(index)
	if !ok {
		return domain.Dive{}, fmt.Errorf("service.DiveListService.Get: dive %d: %w", index, domain.ErrNotFound)
	}
	return *d, nil
}

// Create validates and persists a new dive, then records it in the table and
// rebuilds the list.
func (s *DiveListService) Create(ctx context.Context, dive domain.Dive) (domain.Dive, error) {
	if err := validateDive(dive); err != nil {
		return domain.Dive{}, fmt.Errorf("service.DiveListService.Create: %w", err)
	}

	created, err := s.dives.Create(ctx, dive)
	if err != nil {
		storeErrors.WithLabelValues("create_dive").Inc()
		return domain.Dive{}, fmt.Errorf("service.DiveListService.Create: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := created
	s.table.RecordDive(&d)
	s.rebuild()
	s.list.MarkChanged(true)
	return d, nil
}

// Update validates and persists new contents for the dive at index.
//
// Edits that leave the time, trip flag and location alone cannot change trip
// membership, so only the dive's rows are refreshed; any other edit rebuilds.
func (s *DiveListService) Update(ctx context.Context, index int, dive domain.Dive) (domain.Dive, error) {
	if err := validateDive(dive); err != nil {
		return domain.Dive{}, fmt.Errorf("service.DiveListService.Update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.table.GetDive(index)
	if !ok {
		return domain.Dive{}, fmt.Errorf("service.DiveListService.Update: dive %d: %w", index, domain.ErrNotFound)
	}
	dive.ID = old.ID

	updated, err := s.dives.Update(ctx, dive)
	if err != nil {
		storeErrors.WithLabelValues("update_dive").Inc()
		return domain.Dive{}, fmt.Errorf("service.DiveListService.Update: %w", err)
	}
	s.list.MarkChanged(true)

	if updated.When.Equal(old.When) && updated.TripFlag == old.TripFlag && updated.Location == old.Location {
		updated.Index, updated.Selected = old.Index, old.Selected
		*old = updated
		s.list.FlushOne(index)
		return *old, nil
	}

	d := updated
	s.table.Replace(index, &d)
	s.rebuild()
	return d, nil
}

// Delete removes the dive at index from the store and the table.
func (s *DiveListService) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.table.GetDive(index)
	if !ok {
		return fmt.Errorf("service.DiveListService.Delete: dive %d: %w", index, domain.ErrNotFound)
	}
	if err := s.dives.Delete(ctx, old.ID); err != nil {
		storeErrors.WithLabelValues("delete_dive").Inc()
		return fmt.Errorf("service.DiveListService.Delete: %w", err)
	}
	s.table.Remove(index)
	s.rebuild()
	s.list.MarkChanged(true)
	return nil
}

// CreateTripHint persists a trip that in_trip dives can join, and rebuilds.
func (s *DiveListService) CreateTripHint(ctx context.Context, hint domain.TripHint) (domain.TripHint, error) {
	if hint.StartedAt.IsZero() {
		return domain.TripHint{}, fmt.Errorf("service.DiveListService.CreateTripHint: %w: started_at is required",
			domain.ErrValidation)
	}
	created, err := s.trips.Create(ctx, hint)
	if err != nil {
		storeErrors.WithLabelValues("create_trip").Inc()
		return domain.TripHint{}, fmt.Errorf("service.DiveListService.CreateTripHint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.SetTripHints(append(s.table.TripHints(), created))
	s.rebuild()
	return created, nil
}

// DeleteTripHint removes a persisted trip and rebuilds.
func (s *DiveListService) DeleteTripHint(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		storeErrors.WithLabelValues("delete_trip").Inc()
		return fmt.Errorf("service.DiveListService.DeleteTripHint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	hints := s.table.TripHints()
	kept := hints[:0]
	for _, h := range hints {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	s.table.SetTripHints(kept)
	s.rebuild()
	return nil
}

// validateDive enforces the invariants of a stored dive.
func validateDive(d domain.Dive) error {
	switch {
	case d.When.IsZero():
		return fmt.Errorf("%w: when is required", domain.ErrValidation)
	case d.DurationSec < 0:
		return fmt.Errorf("%w: duration must not be negative", domain.ErrValidation)
	case d.MaxDepthMM < 0 || d.MeanDepthMM < 0:
		return fmt.Errorf("%w: depths must not be negative", domain.ErrValidation)
	case d.MeanDepthMM > d.MaxDepthMM && d.MaxDepthMM > 0:
		return fmt.Errorf("%w: mean depth exceeds max depth", domain.ErrValidation)
	case d.Rating < 0 || d.Rating > 5:
		return fmt.Errorf("%w: rating must be between 0 and 5", domain.ErrValidation)
	case d.TripFlag < domain.TripFlagUnassigned || d.TripFlag > domain.TripFlagInTrip:
		return fmt.Errorf("%w: unknown trip flag %d", domain.ErrValidation, int(d.TripFlag))
	case len(d.Cylinders) > domain.MaxCylinders:
		return fmt.Errorf("%w: at most %d cylinders", domain.ErrValidation, domain.MaxCylinders)
	case len(d.Weights) > domain.MaxWeightSystems:
		return fmt.Errorf("%w: at most %d weight systems", domain.ErrValidation, domain.MaxWeightSystems)
	}
	for i, c := range d.Cylinders {
		m := c.Mix
		if m.O2 < 0 || m.He < 0 || m.O2+m.He > 1000 {
			return fmt.Errorf("%w: cylinder %d: invalid gas mix", domain.ErrValidation, i)
		}
	}
	for i, w := range d.Weights {
		if w.Grams < 0 {
			return fmt.Errorf("%w: weight %d must not be negative", domain.ErrValidation, i)
		}
	}
	return nil
}
