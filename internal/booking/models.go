// Package booking owns the service-appointment booking lifecycle.
package booking

import (
	"errors"
	"time"
)

// Booking errors.
var (
	ErrInvalidInterval = errors.New("invalid booking interval")
	ErrSlotConflict    = errors.New("slot conflicts with a confirmed booking")
)

// Status is the lifecycle state of a booking. Suggested bookings are
// implicit (proposal-time only, never persisted); confirmed bookings are
// durable; the completed transition is handled downstream.
type Status string

// Booking statuses.
const (
	StatusSuggested Status = "suggested"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
)

// Booking is a confirmed service appointment. The interval is half-open:
// [SlotStart, SlotEnd). Bookings are never deleted.
type Booking struct {
	ID          string     `json:"booking_id"`
	VehicleID   string     `json:"vehicle_id"`
	SlotStart   time.Time  `json:"slot_start"`
	SlotEnd     time.Time  `json:"slot_end"`
	CenterID    string     `json:"center_id,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Overlaps reports whether the half-open interval [start, end) intersects
// the booking's slot.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.SlotEnd) && end.After(b.SlotStart)
}
