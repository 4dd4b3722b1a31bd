// Package scheduling proposes non-conflicting service appointment slots
// driven by vehicle severity.
package scheduling

import (
	"fmt"
	"time"

	"github.com/aurafleet/aurafleet/internal/booking"
	"github.com/aurafleet/aurafleet/internal/health"
)

// Slot generation parameters. Three fixed daily slots, one hour each,
// never more than six candidates in total.
const (
	SlotDuration  = time.Hour
	MaxCandidates = 6
)

// slotHours are the daily slot start hours, local time.
var slotHours = []int{10, 14, 17}

// Slot is one proposed appointment window, half-open [Start, End).
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// GenerateSlots produces candidate windows for a severity tier:
// critical vehicles get the next two days starting today, warnings get
// days one through four out, and ok vehicles get nothing — scheduling is
// never offered absent risk.
func GenerateSlots(now time.Time, severity health.Severity) []Slot {
	var firstDay, lastDay int
	switch severity {
	case health.SeverityCritical:
		firstDay, lastDay = 0, 1
	case health.SeverityWarning:
		firstDay, lastDay = 1, 4
	default:
		return nil
	}

	var slots []Slot
	for offset := firstDay; offset <= lastDay; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, hour := range slotHours {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, now.Location())
			end := start.Add(SlotDuration)
			slots = append(slots, Slot{
				Start: start,
				End:   end,
				Label: fmt.Sprintf("%s %02d:00-%02d:00", start.Format("Mon 02 Jan"), hour, hour+1),
			})
			if len(slots) == MaxCandidates {
				return slots
			}
		}
	}
	return slots
}

// FilterConflicts removes candidates that overlap any of the vehicle's
// confirmed bookings, using the half-open interval test.
func FilterConflicts(candidates []Slot, confirmed []*booking.Booking) []Slot {
	if len(confirmed) == 0 {
		return candidates
	}

	available := make([]Slot, 0, len(candidates))
	for _, slot := range candidates {
		conflict := false
		for _, booked := range confirmed {
			if booked.Overlaps(slot.Start, slot.End) {
				conflict = true
				break
			}
		}
		if !conflict {
			available = append(available, slot)
		}
	}
	return available
}
