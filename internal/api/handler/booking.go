package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurafleet/aurafleet/internal/api/middleware"
	"github.com/aurafleet/aurafleet/internal/api/models"
	"github.com/aurafleet/aurafleet/internal/api/response"
	"github.com/aurafleet/aurafleet/internal/auth"
	"github.com/aurafleet/aurafleet/internal/booking"
)

// BookingHandler handles booking lifecycle endpoints.
type BookingHandler struct {
	bookingService *booking.Service
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *booking.Service) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// Confirm handles POST /v1/bookings - confirm a service appointment.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	if !authorizeVehicle(w, r, auth.ResourceBookingConfirm, req.VehicleID) {
		return
	}

	b, err := h.bookingService.Confirm(r.Context(), booking.ConfirmRequest{
		VehicleID: req.VehicleID,
		SlotStart: req.SlotStart.Time(),
		SlotEnd:   req.SlotEnd.Time(),
		CenterID:  req.CenterID,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidInterval):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, booking.ErrSlotConflict):
			response.Conflict(w, r, "slot overlaps an existing confirmed booking")
		default:
			response.InternalError(w, r, "failed to confirm booking")
		}
		return
	}

	response.Created(w, r, "/v1/bookings/"+b.ID, b)
}

// Upcoming handles GET /v1/bookings/upcoming - global future confirmed
// bookings, ascending by start. Service-center only.
func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if err := auth.Authorize(claims, auth.ResourceBookingsUpcoming, ""); err != nil {
		response.Forbidden(w, r, "upcoming bookings access denied")
		return
	}

	limit := parseLimit(r, booking.DefaultListLimit)

	bookings, err := h.bookingService.Upcoming(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to list upcoming bookings")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ForVehicle handles GET /v1/vehicles/{vehicleId}/bookings - per-vehicle
// booking history, descending by start.
func (h *BookingHandler) ForVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")
	if !authorizeVehicle(w, r, auth.ResourceBookingHistory, vehicleID) {
		return
	}

	limit := parseLimit(r, booking.DefaultListLimit)

	bookings, err := h.bookingService.ForVehicle(r.Context(), vehicleID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list vehicle bookings")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"vehicle_id": vehicleID,
		"bookings":   bookings,
		"count":      len(bookings),
	})
}
