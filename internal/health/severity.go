package health

// Severity buckets an anomaly score into a service-urgency tier.
type Severity string

// Severity tiers. Unknown is reserved for vehicles with no health data yet.
const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// Classification thresholds. Scores above CriticalThreshold are critical,
// scores in (WarnThreshold, CriticalThreshold] are warnings.
const (
	WarnThreshold     = 0.18
	CriticalThreshold = 0.30
)

// Contact decision reason codes. Callers branch on these, never on text.
const (
	ReasonHighRisk     = "high_risk_failure_predicted"
	ReasonModerateRisk = "moderate_risk_recommend_scheduling"
	ReasonLowRisk      = "low_risk_no_immediate_action"
	ReasonNoData       = "no_recent_health_data"
)

// Decision is the derived contact decision for a vehicle. Never persisted.
type Decision struct {
	VehicleID     string   `json:"vehicle_id"`
	Score         float64  `json:"anomaly_score"`
	Severity      Severity `json:"severity"`
	ShouldContact bool     `json:"should_contact"`
	Reason        string   `json:"reason"`
}

// Classify maps a fused anomaly score to a severity tier. The tiers
// partition [0,1]: every score lands in exactly one.
func Classify(score float64) Severity {
	switch {
	case score > CriticalThreshold:
		return SeverityCritical
	case score > WarnThreshold:
		return SeverityWarning
	default:
		return SeverityOK
	}
}

// Decide derives the contact decision from a vehicle's latest score.
func Decide(vehicleID string, score float64) Decision {
	severity := Classify(score)

	decision := Decision{
		VehicleID: vehicleID,
		Score:     score,
		Severity:  severity,
	}

	switch severity {
	case SeverityCritical:
		decision.ShouldContact = true
		decision.Reason = ReasonHighRisk
	case SeverityWarning:
		decision.ShouldContact = true
		decision.Reason = ReasonModerateRisk
	default:
		decision.ShouldContact = false
		decision.Reason = ReasonLowRisk
	}

	return decision
}

// NoDataDecision is the terminal default when a vehicle has no health
// record yet. Not an error.
func NoDataDecision(vehicleID string) Decision {
	return Decision{
		VehicleID:     vehicleID,
		Severity:      SeverityUnknown,
		ShouldContact: false,
		Reason:        ReasonNoData,
	}
}
