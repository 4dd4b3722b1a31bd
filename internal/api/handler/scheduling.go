package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurafleet/aurafleet/internal/api/response"
	"github.com/aurafleet/aurafleet/internal/auth"
	"github.com/aurafleet/aurafleet/internal/scheduling"
)

// SchedulingHandler handles slot proposal endpoints.
type SchedulingHandler struct {
	schedulingService *scheduling.Service
}

// NewSchedulingHandler creates a new SchedulingHandler.
func NewSchedulingHandler(schedulingService *scheduling.Service) *SchedulingHandler {
	return &SchedulingHandler{
		schedulingService: schedulingService,
	}
}

// ProposeSlots handles GET /v1/vehicles/{vehicleId}/slots - propose
// non-conflicting appointment slots driven by the vehicle's severity.
// Slot proposals feed booking confirmation, so they share its scope.
func (h *SchedulingHandler) ProposeSlots(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")
	if !authorizeVehicle(w, r, auth.ResourceBookingConfirm, vehicleID) {
		return
	}

	proposal, err := h.schedulingService.ProposeSlots(r.Context(), vehicleID)
	if err != nil {
		response.InternalError(w, r, "failed to propose slots")
		return
	}

	response.JSON(w, r, http.StatusOK, proposal)
}
