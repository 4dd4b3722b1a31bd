package booking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings []*Booking

	// failCreate forces Create to fail, for testing the
	// no-partial-commit confirm contract.
	failCreate error
}

// NewInMemoryRepository creates a new in-memory booking repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// FailCreates makes every subsequent Create return err. Pass nil to
// restore normal behaviour.
func (r *InMemoryRepository) FailCreates(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreate = err
}

// Create persists a new booking.
func (r *InMemoryRepository) Create(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		return r.failCreate
	}

	cpy := *booking
	r.bookings = append(r.bookings, &cpy)
	return nil
}

// ConfirmedForVehicle returns every confirmed booking for a vehicle,
// ascending by slot start.
func (r *InMemoryRepository) ConfirmedForVehicle(_ context.Context, vehicleID string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Booking
	for _, b := range r.bookings {
		if b.VehicleID == vehicleID && b.Status == StatusConfirmed {
			cpy := *b
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotStart.Before(out[j].SlotStart) })
	return out, nil
}

// Upcoming returns confirmed future bookings across the fleet, ascending
// by slot start.
func (r *InMemoryRepository) Upcoming(_ context.Context, after time.Time, limit int) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	var out []*Booking
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed && !b.SlotStart.Before(after) {
			cpy := *b
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotStart.Before(out[j].SlotStart) })

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ForVehicle returns a vehicle's bookings, newest slot first.
func (r *InMemoryRepository) ForVehicle(_ context.Context, vehicleID string, limit int) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	var out []*Booking
	for _, b := range r.bookings {
		if b.VehicleID == vehicleID {
			cpy := *b
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotStart.After(out[j].SlotStart) })

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
