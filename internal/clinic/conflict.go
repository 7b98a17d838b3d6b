package clinic

import (
	"time"

	"github.com/google/uuid"
)

// HasConflict reports whether any existing appointment's occupied window
// intersects the candidate's window [candidateStart, candidateStart+SlotDuration).
// Two half-open windows of equal length intersect exactly when their starts
// are less than SlotDuration apart, so an appointment starting exactly 59
// minutes before or after the candidate does not conflict.
//
// excludeID skips one appointment from the check; updates pass the id of the
// appointment being moved so it never conflicts with itself. Pass uuid.Nil
// when booking.
func HasConflict(existing []Appointment, candidateStart time.Time, excludeID uuid.UUID) bool {
	for _, a := range existing {
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		d := a.StartTime.Sub(candidateStart)
		if d < 0 {
			d = -d
		}
		if d < SlotDuration {
			return true
		}
	}
	return false
}
