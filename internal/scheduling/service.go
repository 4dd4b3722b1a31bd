package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/booking"
	"github.com/aurafleet/aurafleet/internal/health"
)

// Outcome classifies a proposal so callers can branch without parsing
// text. A vehicle without risk and a vehicle whose candidates are all
// booked are different situations.
type Outcome string

// Proposal outcomes.
const (
	OutcomeProposed  Outcome = "proposed"
	OutcomeNoRisk    Outcome = "no_risk"
	OutcomeAllBooked Outcome = "all_booked"
)

// Proposal reason codes for the empty outcomes.
const (
	ReasonNoRisk    = "low_risk_no_slots_offered"
	ReasonAllBooked = "all_suggested_slots_booked"
)

// decisionSource supplies the contact decision driving slot generation.
type decisionSource interface {
	ContactDecision(ctx context.Context, vehicleID string) (health.Decision, error)
}

// bookingSource supplies confirmed bookings for conflict filtering.
type bookingSource interface {
	ConfirmedForVehicle(ctx context.Context, vehicleID string) ([]*booking.Booking, error)
}

// Service generates and filters appointment slot proposals.
type Service struct {
	decisions decisionSource
	bookings  bookingSource
	logger    zerolog.Logger
	now       func() time.Time
}

// ServiceConfig holds dependencies for the scheduling service.
type ServiceConfig struct {
	Decisions decisionSource
	Bookings  bookingSource
	Logger    zerolog.Logger

	// Now overrides the clock, for testing.
	Now func() time.Time
}

// NewService creates a new scheduling service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		decisions: cfg.Decisions,
		bookings:  cfg.Bookings,
		logger:    cfg.Logger,
		now:       now,
	}
}

// Proposal is the result of a slot proposal for one vehicle.
type Proposal struct {
	VehicleID      string          `json:"vehicle_id"`
	Severity       health.Severity `json:"severity"`
	Outcome        Outcome         `json:"outcome"`
	Reason         string          `json:"reason,omitempty"`
	CanSchedule    bool            `json:"can_schedule"`
	Decision       health.Decision `json:"decision"`
	Slots          []Slot          `json:"options,omitempty"`
	TotalSuggested int             `json:"total_suggested"`
	Available      int             `json:"available"`
}

// ProposeSlots derives candidate slots from the vehicle's contact decision
// and filters out any that collide with its confirmed bookings.
func (s *Service) ProposeSlots(ctx context.Context, vehicleID string) (*Proposal, error) {
	decision, err := s.decisions.ContactDecision(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("resolving contact decision: %w", err)
	}

	proposal := &Proposal{
		VehicleID: vehicleID,
		Severity:  decision.Severity,
		Decision:  decision,
	}

	candidates := GenerateSlots(s.now(), decision.Severity)
	proposal.TotalSuggested = len(candidates)
	if len(candidates) == 0 {
		proposal.Outcome = OutcomeNoRisk
		proposal.Reason = ReasonNoRisk
		return proposal, nil
	}

	confirmed, err := s.bookings.ConfirmedForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("loading confirmed bookings: %w", err)
	}

	available := FilterConflicts(candidates, confirmed)
	proposal.Available = len(available)

	if len(available) == 0 {
		// Candidates existed but every one is already booked; callers
		// must be able to tell this apart from "no risk".
		proposal.Outcome = OutcomeAllBooked
		proposal.Reason = ReasonAllBooked
		return proposal, nil
	}

	proposal.Outcome = OutcomeProposed
	proposal.CanSchedule = true
	proposal.Slots = available

	s.logger.Debug().
		Str("vehicle_id", vehicleID).
		Str("severity", string(decision.Severity)).
		Int("suggested", proposal.TotalSuggested).
		Int("available", proposal.Available).
		Msg("slots proposed")

	return proposal, nil
}
