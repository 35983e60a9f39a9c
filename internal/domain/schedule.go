package domain

import (
	"time"

	"github.com/pawly/PGS-BookingService/pkg/types"
)

// ScheduleTemplate represents the weekly opening window for one weekday.
// Weekday follows time.Weekday numbering (0 = Sunday).
type ScheduleTemplate struct {
	ID                  int64
	Weekday             time.Weekday
	OpenTime            types.TimeString
	CloseTime           types.TimeString
	SlotIntervalMinutes int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsValid returns true if the template can produce slots.
// A malformed template (open >= close, non-positive interval) yields no slots
// rather than an error.
func (t *ScheduleTemplate) IsValid() bool {
	if t.SlotIntervalMinutes <= 0 {
		return false
	}
	if t.OpenTime.IsZero() || t.CloseTime.IsZero() {
		return false
	}
	return t.OpenTime.IsBefore(t.CloseTime)
}

// Blackout represents an ad-hoc closed interval on one specific calendar date,
// independent of the weekly template. Multiple blackouts on the same date are
// unioned by the availability calculator.
type Blackout struct {
	ID        int64
	Date      time.Time
	StartTime types.TimeString
	EndTime   types.TimeString
	Reason    *string
	CreatedAt time.Time
}

// Blocks returns true if the slot starting at t falls inside the blackout
// window. The window is half-open: start <= t < end.
func (b *Blackout) Blocks(t types.TimeString) bool {
	return !t.IsBefore(b.StartTime) && t.IsBefore(b.EndTime)
}
