package models

// IngestRequest is the request body for telemetry ingestion. Channels
// absent from the sensor map fall back through synonym chains and
// defaults downstream.
type IngestRequest struct {
	VehicleID string             `json:"vehicle_id"`
	Sensors   map[string]float64 `json:"sensors"`
}

// Validate validates the ingest request.
func (r *IngestRequest) Validate() []FieldError {
	var errors []FieldError

	if r.VehicleID == "" {
		errors = append(errors, FieldError{
			Field:   "vehicle_id",
			Message: "vehicle id is required",
			Code:    "REQUIRED",
		})
	}

	return errors
}
