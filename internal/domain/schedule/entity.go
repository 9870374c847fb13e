package schedule

import (
	"strings"
	"time"
)

// Shift is a recurring working window in organization-local time of day.
// A shift wraps past midnight when EndTime is at or before StartTime.
type Shift struct {
	ID             string
	OrganizationID string
	StartTime      time.Time // only the time-of-day component is meaningful
	EndTime        time.Time
	DaysOfWeek     []string // lowercase weekday names
	BreakMinutes   int
	Active         bool
}

// StartMinutes returns the shift start as minutes since local midnight.
func (s Shift) StartMinutes() int {
	return s.StartTime.Hour()*60 + s.StartTime.Minute()
}

// EndMinutes returns the shift end as minutes since local midnight.
func (s Shift) EndMinutes() int {
	return s.EndTime.Hour()*60 + s.EndTime.Minute()
}

// Overnight reports whether the shift wraps past midnight.
func (s Shift) Overnight() bool {
	return s.EndMinutes() <= s.StartMinutes()
}

// CoversWeekday reports whether the shift runs on the given weekday.
func (s Shift) CoversWeekday(day time.Weekday) bool {
	name := strings.ToLower(day.String())
	for _, d := range s.DaysOfWeek {
		if strings.ToLower(d) == name {
			return true
		}
	}
	return false
}

// Assignment binds a worker to a shift for an effective period.
// EffectiveUntil nil means open-ended.
type Assignment struct {
	UserID         string
	ShiftID        string
	OrganizationID string
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time
}

// ActiveAt reports whether the assignment covers the given instant.
func (a Assignment) ActiveAt(at time.Time) bool {
	if at.Before(a.EffectiveFrom) {
		return false
	}
	return a.EffectiveUntil == nil || !a.EffectiveUntil.Before(at)
}

// ResolvedShift pairs an assignment with its shift, the unit the
// attendance engine works with.
type ResolvedShift struct {
	Assignment Assignment
	Shift      Shift
}
