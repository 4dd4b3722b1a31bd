package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurafleet/aurafleet/internal/api"
	"github.com/aurafleet/aurafleet/internal/api/models"
	"github.com/aurafleet/aurafleet/internal/auth"
	"github.com/aurafleet/aurafleet/internal/booking"
	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/scheduling"
)

const (
	testSigningKey = "test-secret-key-for-testing-only"
	testIssuer     = "https://api.aurafleet.io"
	testAudience   = "aurafleet-api"
)

// testAuthService creates an auth service backed by the demo credential
// table.
func testAuthService() *auth.Service {
	tokens := auth.NewTokenService(auth.TokenConfig{
		SigningKey: testSigningKey,
		Issuer:     testIssuer,
		Audience:   testAudience,
	})
	return auth.NewService(auth.ServiceConfig{Tokens: tokens})
}

func newTestRouter() http.Handler {
	logger := zerolog.New(io.Discard)

	healthService := health.NewService(health.ServiceConfig{
		Repository: health.NewInMemoryRepository(),
		Logger:     logger,
	})
	bookingService := booking.NewService(booking.ServiceConfig{
		Repository: booking.NewInMemoryRepository(),
		Logger:     logger,
	})
	schedulingService := scheduling.NewService(scheduling.ServiceConfig{
		Decisions: healthService,
		Bookings:  bookingService,
		Logger:    logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:           "test",
		BuildTime:         "2026-01-01T00:00:00Z",
		Logger:            logger,
		AuthService:       testAuthService(),
		HealthService:     healthService,
		BookingService:    bookingService,
		SchedulingService: schedulingService,
	})
}

// loginToken logs in through the router and returns the access token.
func loginToken(t *testing.T, router http.Handler, username, password, role string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// ingestFrame pushes one sensor frame through the router.
func ingestFrame(t *testing.T, router http.Handler, vehicleID string, sensors map[string]float64) {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"vehicle_id": vehicleID,
		"sensors":    sensors,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

// criticalSensors is a frame that lands well above the critical threshold
// even when the learned model artifact is absent.
func criticalSensors() map[string]float64 {
	return map[string]float64{
		"brake_disc_temp_c": 220,
		"coolant_temp_c":    135,
		"vibration_rms_g":   1.2,
		"battery_voltage_v": 10.0,
		"tire_pressure_psi": 20,
		"dtc_count":         6,
	}
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var h models.Health
	err := json.Unmarshal(w.Body.Bytes(), &h)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, h.Status)
	assert.NotEmpty(t, h.Time)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SystemStatus_RequiresAuth(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "service_center", "service123", "service_center")

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.NotEmpty(t, status.Subsystems)
}

func TestRouter_Login_BadCredentials(t *testing.T) {
	router := newTestRouter()

	body, _ := json.Marshal(map[string]string{
		"username": "owner_v001",
		"password": "wrong",
		"role":     "owner",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_ValidateToken(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "manufacturing", "mfg123", "manufacturing")

	body, _ := json.Marshal(map[string]string{"token": token})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result auth.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, auth.RoleManufacturing, result.Role)
}

func TestRouter_Ingest(t *testing.T) {
	router := newTestRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"vehicle_id": "V001",
		"sensors":    criticalSensors(),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result health.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "V001", result.VehicleID)
	assert.Equal(t, health.SeverityCritical, result.Severity)
}

func TestRouter_Ingest_MissingVehicleID(t *testing.T) {
	router := newTestRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"sensors": map[string]float64{"engine_temp": 90},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_GetVehicleHealth_OwnerOwnVehicle(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V001", criticalSensors())
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V001/health", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var record health.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "V001", record.VehicleID)
}

func TestRouter_GetVehicleHealth_OwnerOtherVehicle(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V002", criticalSensors())
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V002/health", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeForbidden, problem.Type)
}

func TestRouter_GetVehicleHealth_ServiceCenterDenied(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V002", criticalSensors())
	token := loginToken(t, router, "service_center", "service123", "service_center")

	// Single-vehicle health is owner-scoped; service-center staff read
	// the fleet list instead.
	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V002/health", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_GetVehicleHealth_NoData(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V001/health", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_GetVehicleHealth_ExpiredToken(t *testing.T) {
	router := newTestRouter()

	// Mint a token two hours in the past, so the 1h expiry has lapsed by
	// the time the router validates it.
	past := auth.NewTokenService(auth.TokenConfig{
		SigningKey: testSigningKey,
		Issuer:     testIssuer,
		Audience:   testAudience,
		Now:        func() time.Time { return time.Now().Add(-2 * time.Hour) },
	})
	token, _, err := past.Generate(&auth.Identity{
		Subject:   "owner_v001",
		Role:      auth.RoleOwner,
		VehicleID: "V001",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V001/health", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Contains(t, problem.Detail, "expired")
}

func TestRouter_GetContactDecision(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V001", criticalSensors())
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V001/contact-decision", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var decision health.Decision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decision))
	assert.True(t, decision.ShouldContact)
	assert.Equal(t, health.ReasonHighRisk, decision.Reason)
}

func TestRouter_ProposeSlots(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V001", criticalSensors())
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V001/slots", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var proposal scheduling.Proposal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proposal))
	assert.Equal(t, scheduling.OutcomeProposed, proposal.Outcome)
	assert.NotEmpty(t, proposal.Slots)
	assert.LessOrEqual(t, len(proposal.Slots), 6)
}

func TestRouter_FleetList_OwnerFiltered(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V001", criticalSensors())
	ingestFrame(t, router, "V002", criticalSensors())
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/fleet/vehicles", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Vehicles []health.VehicleStatus `json:"vehicles"`
		Count    int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Vehicles, 1)
	assert.Equal(t, "V001", resp.Vehicles[0].VehicleID)
}

func TestRouter_FleetList_ServiceCenterSeesAll(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V001", criticalSensors())
	ingestFrame(t, router, "V002", criticalSensors())
	token := loginToken(t, router, "service_center", "service123", "service_center")

	req := httptest.NewRequest(http.MethodGet, "/v1/fleet/vehicles", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Vehicles []health.VehicleStatus `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Vehicles, 2)
}

func TestRouter_FleetSummary_ManufacturingOnly(t *testing.T) {
	router := newTestRouter()
	ingestFrame(t, router, "V001", criticalSensors())

	mfgToken := loginToken(t, router, "manufacturing", "mfg123", "manufacturing")
	req := httptest.NewRequest(http.MethodGet, "/v1/fleet/summary", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+mfgToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summary health.FleetSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Critical)

	ownerToken := loginToken(t, router, "owner_v001", "owner123", "owner")
	req = httptest.NewRequest(http.MethodGet, "/v1/fleet/summary", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ConfirmBooking(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	body, _ := json.Marshal(map[string]interface{}{
		"vehicle_id": "V001",
		"slot_start": start.Format(time.RFC3339),
		"slot_end":   start.Add(time.Hour).Format(time.RFC3339),
		"center_id":  "SC-01",
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var b booking.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "V001", b.VehicleID)
	assert.Equal(t, booking.StatusConfirmed, b.Status)

	// Rebooking the same interval conflicts.
	req = httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_ConfirmBooking_NumericTimestamp(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	// A numeric slot_start must decode-fail into a 400, not panic the
	// request.
	body := []byte(`{"vehicle_id":"V001","slot_start":5,"slot_end":"2026-03-11T11:00:00Z"}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_ConfirmBooking_OwnerOtherVehicle(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	body, _ := json.Marshal(map[string]interface{}{
		"vehicle_id": "V002",
		"slot_start": start.Format(time.RFC3339),
		"slot_end":   start.Add(time.Hour).Format(time.RFC3339),
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_UpcomingBookings_ServiceCenterOnly(t *testing.T) {
	router := newTestRouter()

	scToken := loginToken(t, router, "service_center", "service123", "service_center")
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/upcoming", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+scToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	ownerToken := loginToken(t, router, "owner_v001", "owner123", "owner")
	req = httptest.NewRequest(http.MethodGet, "/v1/bookings/upcoming", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_VehicleBookings(t *testing.T) {
	router := newTestRouter()
	token := loginToken(t, router, "owner_v001", "owner123", "owner")

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/V001/bookings", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		VehicleID string            `json:"vehicle_id"`
		Bookings  []booking.Booking `json:"bookings"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "V001", resp.VehicleID)
	assert.Empty(t, resp.Bookings)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
