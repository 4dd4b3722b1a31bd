package scheduling_test

import (
	"testing"
	"time"

	"github.com/aurafleet/aurafleet/internal/booking"
	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/scheduling"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestGenerateSlots_Critical(t *testing.T) {
	slots := scheduling.GenerateSlots(testNow, health.SeverityCritical)

	if len(slots) != 6 {
		t.Fatalf("expected 6 candidates, got %d", len(slots))
	}

	// Critical covers day offsets 0 and 1 only.
	first := slots[0]
	if first.Start.Day() != 10 || first.Start.Hour() != 10 {
		t.Errorf("expected first slot today at 10:00, got %v", first.Start)
	}
	last := slots[len(slots)-1]
	if last.Start.Day() != 11 || last.Start.Hour() != 17 {
		t.Errorf("expected last slot tomorrow at 17:00, got %v", last.Start)
	}

	for _, slot := range slots {
		if slot.End.Sub(slot.Start) != time.Hour {
			t.Errorf("expected 1h slot, got %v", slot.End.Sub(slot.Start))
		}
	}
}

func TestGenerateSlots_Warning(t *testing.T) {
	slots := scheduling.GenerateSlots(testNow, health.SeverityWarning)

	if len(slots) != 6 {
		t.Fatalf("expected candidates capped at 6, got %d", len(slots))
	}

	// Warning starts tomorrow, never today.
	for _, slot := range slots {
		if slot.Start.Day() == testNow.Day() {
			t.Errorf("warning slot must not land today: %v", slot.Start)
		}
	}
}

func TestGenerateSlots_NoRiskNoSlots(t *testing.T) {
	for _, severity := range []health.Severity{health.SeverityOK, health.SeverityUnknown} {
		if slots := scheduling.GenerateSlots(testNow, severity); len(slots) != 0 {
			t.Errorf("expected no slots for %q, got %d", severity, len(slots))
		}
	}
}

func TestFilterConflicts(t *testing.T) {
	candidates := scheduling.GenerateSlots(testNow, health.SeverityCritical)

	// Confirmed booking exactly matching the day-0 10:00 candidate.
	confirmed := []*booking.Booking{{
		VehicleID: "V001",
		SlotStart: candidates[0].Start,
		SlotEnd:   candidates[0].End,
		Status:    booking.StatusConfirmed,
	}}

	available := scheduling.FilterConflicts(candidates, confirmed)
	if len(available) != len(candidates)-1 {
		t.Fatalf("expected exactly one candidate dropped, got %d of %d", len(available), len(candidates))
	}
	for _, slot := range available {
		if slot.Start.Equal(candidates[0].Start) {
			t.Error("exact-match candidate must always be excluded")
		}
	}

	// The 14:00 and 17:00 candidates on the same day survive.
	if !available[0].Start.Equal(candidates[1].Start) || available[0].Start.Hour() != 14 {
		t.Errorf("expected 14:00 candidate retained, got %v", available[0].Start)
	}
}

func TestFilterConflicts_PartialOverlap(t *testing.T) {
	candidates := scheduling.GenerateSlots(testNow, health.SeverityCritical)

	// A booking straddling the 10:00 candidate's second half.
	confirmed := []*booking.Booking{{
		SlotStart: candidates[0].Start.Add(30 * time.Minute),
		SlotEnd:   candidates[0].End.Add(30 * time.Minute),
		Status:    booking.StatusConfirmed,
	}}

	available := scheduling.FilterConflicts(candidates, confirmed)
	if len(available) != len(candidates)-1 {
		t.Errorf("partial overlap must drop the candidate: %d of %d left", len(available), len(candidates))
	}
}

func TestFilterConflicts_NonOverlappingRetained(t *testing.T) {
	candidates := scheduling.GenerateSlots(testNow, health.SeverityCritical)

	// A booking ending exactly when the candidate starts does not
	// overlap under the half-open test.
	confirmed := []*booking.Booking{{
		SlotStart: candidates[0].Start.Add(-time.Hour),
		SlotEnd:   candidates[0].Start,
		Status:    booking.StatusConfirmed,
	}}

	available := scheduling.FilterConflicts(candidates, confirmed)
	if len(available) != len(candidates) {
		t.Errorf("adjacent booking must not drop candidates: %d of %d left", len(available), len(candidates))
	}
}
