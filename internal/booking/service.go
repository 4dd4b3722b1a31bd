package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service provides booking lifecycle operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// ServiceConfig holds dependencies for the booking service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Now overrides the clock, for testing.
	Now func() time.Time
}

// NewService creates a new booking service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: cfg.Repository, logger: cfg.Logger, now: now}
}

// ConfirmRequest is the input to Confirm.
type ConfirmRequest struct {
	VehicleID string    `json:"vehicle_id"`
	SlotStart time.Time `json:"slot_start"`
	SlotEnd   time.Time `json:"slot_end"`
	CenterID  string    `json:"center_id,omitempty"`
}

// Confirm persists a confirmed booking for the requested interval.
// The interval is re-checked against the vehicle's existing confirmed
// bookings as a backstop behind proposal-time filtering; an overlap
// returns ErrSlotConflict.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*Booking, error) {
	if req.VehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrInvalidInterval)
	}
	if !req.SlotStart.Before(req.SlotEnd) {
		return nil, fmt.Errorf("%w: slot start must precede slot end", ErrInvalidInterval)
	}

	confirmed, err := s.repo.ConfirmedForVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("checking confirmed bookings: %w", err)
	}
	for _, existing := range confirmed {
		if existing.Overlaps(req.SlotStart, req.SlotEnd) {
			return nil, ErrSlotConflict
		}
	}

	now := s.now().UTC()
	confirmedAt := now
	booking := &Booking{
		ID:          "bkg_" + uuid.New().String()[:22],
		VehicleID:   req.VehicleID,
		SlotStart:   req.SlotStart,
		SlotEnd:     req.SlotEnd,
		CenterID:    req.CenterID,
		Status:      StatusConfirmed,
		CreatedAt:   now,
		ConfirmedAt: &confirmedAt,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("storing booking: %w", err)
	}

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("vehicle_id", booking.VehicleID).
		Time("slot_start", booking.SlotStart).
		Msg("booking confirmed")

	return booking, nil
}

// Upcoming returns confirmed future bookings across the fleet, ascending
// by slot start.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]*Booking, error) {
	return s.repo.Upcoming(ctx, s.now().UTC(), limit)
}

// ForVehicle returns a vehicle's booking history, newest slot first.
func (s *Service) ForVehicle(ctx context.Context, vehicleID string, limit int) ([]*Booking, error) {
	return s.repo.ForVehicle(ctx, vehicleID, limit)
}

// ConfirmedForVehicle returns the vehicle's confirmed bookings for
// conflict filtering.
func (s *Service) ConfirmedForVehicle(ctx context.Context, vehicleID string) ([]*Booking, error) {
	return s.repo.ConfirmedForVehicle(ctx, vehicleID)
}
