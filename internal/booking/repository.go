package booking

import (
	"context"
	"time"
)

// DefaultListLimit is the booking list page size when the caller supplies
// none.
const DefaultListLimit = 50

// Repository defines the interface for booking persistence.
type Repository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *Booking) error

	// ConfirmedForVehicle returns every confirmed booking for a
	// vehicle, ascending by slot start.
	ConfirmedForVehicle(ctx context.Context, vehicleID string) ([]*Booking, error)

	// Upcoming returns confirmed bookings starting at or after the
	// given time, across all vehicles, ascending by slot start, up to
	// limit. A non-positive limit uses DefaultListLimit.
	Upcoming(ctx context.Context, after time.Time, limit int) ([]*Booking, error)

	// ForVehicle returns a vehicle's bookings, descending by slot
	// start, up to limit. A non-positive limit uses DefaultListLimit.
	ForVehicle(ctx context.Context, vehicleID string, limit int) ([]*Booking, error)
}
