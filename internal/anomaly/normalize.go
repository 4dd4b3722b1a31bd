package anomaly

import "math"

// Known sensor channels. A frame may carry any subset; a missing channel
// falls back through its synonym chain, then to its default.
const (
	ChannelVehicleSpeed     = "vehicle_speed_kmh"
	ChannelEngineRPM        = "engine_rpm"
	ChannelCoolantTemp      = "coolant_temp_c"
	ChannelOilTemp          = "oil_temp_c"
	ChannelBatteryVoltage   = "battery_voltage_v"
	ChannelBrakeDiscTemp    = "brake_disc_temp_c"
	ChannelBrakeSpikes      = "brake_pressure_spikes"
	ChannelHardBrakeEvents  = "hard_brake_events"
	ChannelVibrationRMS     = "vibration_rms_g"
	ChannelSuspensionTravel = "suspension_travel_mm"
	ChannelTirePressure     = "tire_pressure_psi"
	ChannelDTCCount         = "dtc_count"
	ChannelMisfireCount     = "misfire_count"
	ChannelAlternatorOutput = "alternator_output_v"
)

// channelSpec defines the fallback behaviour for one channel: synonyms are
// tried in order before the default applies.
type channelSpec struct {
	synonyms []string
	fallback float64
}

// channelSpecs documents the synonym chain and default for every channel.
var channelSpecs = map[string]channelSpec{
	ChannelVehicleSpeed:     {synonyms: []string{"speed_kmh"}, fallback: 60},
	ChannelEngineRPM:        {synonyms: []string{"rpm"}, fallback: 2200},
	ChannelCoolantTemp:      {synonyms: []string{"engine_temp"}, fallback: 90},
	ChannelOilTemp:          {fallback: 95},
	ChannelBatteryVoltage:   {synonyms: []string{"battery_v"}, fallback: 12.6},
	ChannelBrakeDiscTemp:    {synonyms: []string{"brake_temp"}, fallback: 60},
	ChannelBrakeSpikes:      {fallback: 0},
	ChannelHardBrakeEvents:  {fallback: 0},
	ChannelVibrationRMS:     {synonyms: []string{"vibration"}, fallback: 0.2},
	ChannelSuspensionTravel: {fallback: 40},
	ChannelTirePressure:     {synonyms: []string{"tire_psi"}, fallback: 33},
	ChannelDTCCount:         {fallback: 0},
	ChannelMisfireCount:     {fallback: 0},
	ChannelAlternatorOutput: {fallback: 14.0},
}

// Rule score weights per subsystem. Convex: sums to 1.0.
const (
	weightBrakes     = 0.30
	weightSuspension = 0.20
	weightEngine     = 0.20
	weightElectrical = 0.10
	weightTires      = 0.10
	weightEvents     = 0.10
)

// channel resolves a channel value from a frame, walking the synonym chain
// before falling back to the documented default.
func channel(frame SensorFrame, name string) float64 {
	if v, ok := frame.Channels[name]; ok {
		return v
	}
	spec := channelSpecs[name]
	for _, syn := range spec.synonyms {
		if v, ok := frame.Channels[syn]; ok {
			return v
		}
	}
	return spec.fallback
}

// ramp is a normalized linear ramp clipped to [0,1]:
// 0 at or below threshold, 1 at or above threshold+span.
func ramp(value, threshold, span float64) float64 {
	return clip((value - threshold) / span)
}

// clip bounds a value to [0,1].
func clip(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Normalize maps a raw sensor frame into bounded per-subsystem component
// scores. Within a subsystem, competing signals are combined by max. Pure:
// identical frames always produce identical components.
func Normalize(frame SensorFrame) Components {
	brakes := math.Max(
		ramp(channel(frame, ChannelBrakeDiscTemp), 100, 80),
		math.Max(
			ramp(channel(frame, ChannelBrakeSpikes), 3, 7),
			ramp(channel(frame, ChannelHardBrakeEvents), 4, 8),
		),
	)

	suspension := math.Max(
		ramp(channel(frame, ChannelVibrationRMS), 0.35, 0.55),
		ramp(channel(frame, ChannelSuspensionTravel), 60, 60),
	)

	engine := math.Max(
		math.Max(
			ramp(channel(frame, ChannelCoolantTemp), 105, 25),
			ramp(channel(frame, ChannelOilTemp), 115, 25),
		),
		math.Max(
			ramp(channel(frame, ChannelEngineRPM), 5500, 2500),
			ramp(channel(frame, ChannelMisfireCount), 1, 9),
		),
	)

	// Electrical is bidirectional: under-voltage at the battery or
	// over-voltage from the alternator.
	electrical := math.Max(
		ramp(12.0-channel(frame, ChannelBatteryVoltage), 0, 1.8),
		ramp(channel(frame, ChannelAlternatorOutput), 14.8, 1.2),
	)

	// Tires are bidirectional: too-low or too-high pressure.
	tires := math.Max(
		ramp(28-channel(frame, ChannelTirePressure), 0, 6),
		ramp(channel(frame, ChannelTirePressure), 38, 6),
	)

	events := math.Max(
		ramp(channel(frame, ChannelDTCCount), 0, 5),
		ramp(channel(frame, ChannelHardBrakeEvents), 2, 10),
	)

	return Components{
		Brakes:     brakes,
		Suspension: suspension,
		Engine:     engine,
		Electrical: electrical,
		Tires:      tires,
		Events:     events,
	}
}

// RuleScore combines subsystem components into the scalar rule-based
// anomaly score via the fixed convex weight vector, clipped to [0,1] and
// rounded to two decimals.
func RuleScore(c Components) float64 {
	score := weightBrakes*c.Brakes +
		weightSuspension*c.Suspension +
		weightEngine*c.Engine +
		weightElectrical*c.Electrical +
		weightTires*c.Tires +
		weightEvents*c.Events
	return round2(clip(score))
}
