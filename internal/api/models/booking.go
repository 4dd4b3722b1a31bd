package models

// ConfirmBookingRequest is the request body for confirming a service
// appointment slot.
type ConfirmBookingRequest struct {
	VehicleID string    `json:"vehicle_id"`
	SlotStart Timestamp `json:"slot_start"`
	SlotEnd   Timestamp `json:"slot_end"`
	CenterID  string    `json:"center_id,omitempty"`
}

// Validate validates the confirm booking request.
func (r *ConfirmBookingRequest) Validate() []FieldError {
	var errors []FieldError

	if r.VehicleID == "" {
		errors = append(errors, FieldError{
			Field:   "vehicle_id",
			Message: "vehicle id is required",
			Code:    "REQUIRED",
		})
	}
	if r.SlotStart.Time().IsZero() {
		errors = append(errors, FieldError{
			Field:   "slot_start",
			Message: "slot start is required",
			Code:    "REQUIRED",
		})
	}
	if r.SlotEnd.Time().IsZero() {
		errors = append(errors, FieldError{
			Field:   "slot_end",
			Message: "slot end is required",
			Code:    "REQUIRED",
		})
	}
	if !r.SlotStart.Time().IsZero() && !r.SlotEnd.Time().IsZero() &&
		!r.SlotEnd.Time().After(r.SlotStart.Time()) {
		errors = append(errors, FieldError{
			Field:   "slot_end",
			Message: "slot end must be after slot start",
			Code:    "INVALID",
		})
	}

	return errors
}
