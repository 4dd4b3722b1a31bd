package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aurafleet/aurafleet/internal/anomaly"
	"github.com/aurafleet/aurafleet/internal/api/middleware"
	"github.com/aurafleet/aurafleet/internal/api/models"
	"github.com/aurafleet/aurafleet/internal/api/response"
	"github.com/aurafleet/aurafleet/internal/auth"
	"github.com/aurafleet/aurafleet/internal/health"
)

// HealthHandler handles telemetry ingestion and health reads.
type HealthHandler struct {
	healthService *health.Service
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(healthService *health.Service) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// Ingest handles POST /v1/ingest - run one sensor frame through the
// scoring pipeline. Trusted internal pipeline input, unauthenticated.
func (h *HealthHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	result, err := h.healthService.Ingest(r.Context(), anomaly.SensorFrame{
		VehicleID: req.VehicleID,
		Channels:  req.Sensors,
	})
	if err != nil {
		if errors.Is(err, health.ErrInvalidFrame) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "ingestion failed")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// GetVehicleHealth handles GET /v1/vehicles/{vehicleId}/health.
func (h *HealthHandler) GetVehicleHealth(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")
	if !authorizeVehicle(w, r, auth.ResourceVehicleHealth, vehicleID) {
		return
	}

	record, err := h.healthService.Latest(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, health.ErrNoHealthData) {
			response.NotFound(w, r, "no health data for vehicle")
			return
		}
		response.InternalError(w, r, "failed to load vehicle health")
		return
	}

	response.JSON(w, r, http.StatusOK, record)
}

// GetVehicleHistory handles GET /v1/vehicles/{vehicleId}/history.
func (h *HealthHandler) GetVehicleHistory(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")
	if !authorizeVehicle(w, r, auth.ResourceVehicleHealth, vehicleID) {
		return
	}

	limit := parseLimit(r, health.DefaultHistoryLimit)

	records, err := h.healthService.History(r.Context(), vehicleID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to load vehicle history")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"vehicle_id": vehicleID,
		"snapshots":  records,
		"count":      len(records),
	})
}

// GetContactDecision handles GET /v1/vehicles/{vehicleId}/contact-decision.
// A vehicle without health data gets the no-data default, not an error.
func (h *HealthHandler) GetContactDecision(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")
	if !authorizeVehicle(w, r, auth.ResourceVehicleHealth, vehicleID) {
		return
	}

	decision, err := h.healthService.ContactDecision(r.Context(), vehicleID)
	if err != nil {
		response.InternalError(w, r, "failed to derive contact decision")
		return
	}

	response.JSON(w, r, http.StatusOK, decision)
}

// ListVehicles handles GET /v1/fleet/vehicles - the fleet list. Owners
// see only their bound vehicle; service-center staff see the whole
// fleet, scores and statuses only.
func (h *HealthHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if err := auth.Authorize(claims, auth.ResourceFleetList, ""); err != nil {
		response.Forbidden(w, r, "fleet list access denied")
		return
	}

	statuses, err := h.healthService.ListVehicles(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to list vehicles")
		return
	}

	if auth.ScopeFor(claims.Role, auth.ResourceFleetList) == auth.ScopeOwnVehicle {
		own := make([]health.VehicleStatus, 0, 1)
		for _, status := range statuses {
			if status.VehicleID == claims.VehicleID {
				own = append(own, status)
			}
		}
		statuses = own
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"vehicles": statuses,
		"count":    len(statuses),
	})
}

// GetFleetSummary handles GET /v1/fleet/summary - aggregate tier counts.
// Manufacturing only; the payload carries no vehicle ids.
func (h *HealthHandler) GetFleetSummary(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if err := auth.Authorize(claims, auth.ResourceFleetSummary, ""); err != nil {
		response.Forbidden(w, r, "fleet summary access denied")
		return
	}

	summary, err := h.healthService.FleetSummary(r.Context())
	if err != nil {
		response.InternalError(w, r, "failed to build fleet summary")
		return
	}

	response.JSON(w, r, http.StatusOK, summary)
}

// authorizeVehicle enforces the authorization matrix for a
// vehicle-scoped resource and writes the 403 on denial.
func authorizeVehicle(w http.ResponseWriter, r *http.Request, resource auth.Resource, vehicleID string) bool {
	claims := middleware.GetClaims(r.Context())
	if err := auth.Authorize(claims, resource, vehicleID); err != nil {
		response.Forbidden(w, r, "access to this vehicle is denied")
		return false
	}
	return true
}

// parseLimit reads the limit query parameter, falling back to def for
// missing or unusable values.
func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
