package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/schedule"
)

type ResolverImpl struct {
	schedules schedule.Repository
}

func NewResolver(schedules schedule.Repository) schedule.Resolver {
	return &ResolverImpl{schedules: schedules}
}

// ActiveShift implements schedule.Resolver. The repository filters on
// effectiveness and shift activity; the weekday filter happens here
// because it depends on the organization's local calendar day.
//
// The filter matches the weekday of the instant itself, so an overnight
// shift must list both weekdays it touches: a Monday-only 22:00-06:00
// shift is not resolvable at Tuesday 01:00.
func (r *ResolverImpl) ActiveShift(ctx context.Context, userID, organizationID string, at time.Time, loc *time.Location) (*schedule.ResolvedShift, error) {
	resolved, err := r.schedules.GetAssignmentsForUser(ctx, userID, organizationID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schedule assignments: %w", err)
	}

	weekday := at.In(loc).Weekday()
	for _, rs := range resolved {
		if rs.Shift.CoversWeekday(weekday) {
			// Overlapping assignments are a data problem we tolerate by
			// taking the first row of the stable repository ordering.
			return &rs, nil
		}
	}
	return nil, nil
}

// ActiveShiftsForOrganization implements schedule.Resolver.
func (r *ResolverImpl) ActiveShiftsForOrganization(ctx context.Context, organizationID string, at time.Time, loc *time.Location) ([]schedule.ResolvedShift, error) {
	resolved, err := r.schedules.GetAssignmentsForOrganization(ctx, organizationID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organization schedule assignments: %w", err)
	}

	weekday := at.In(loc).Weekday()
	covering := make([]schedule.ResolvedShift, 0, len(resolved))
	seen := make(map[string]bool)
	for _, rs := range resolved {
		if !rs.Shift.CoversWeekday(weekday) {
			continue
		}
		// One covering schedule per worker, first match wins.
		if seen[rs.Assignment.UserID] {
			continue
		}
		seen[rs.Assignment.UserID] = true
		covering = append(covering, rs)
	}
	return covering, nil
}

// Classify grades a check-in instant against a shift in the
// organization's local time. Overnight shifts wrap past midnight: an
// arrival in the early-morning tail belongs to the span that started the
// previous evening, so its minute value is shifted by a day before
// comparison. Arrivals inside the span count as on time; non-arrival is
// the absence sweep's job, not the classifier's.
func Classify(at time.Time, shift schedule.Shift, loc *time.Location, graceMinutes int) (attendance.Status, int) {
	local := at.In(loc)
	checkMin := local.Hour()*60 + local.Minute()
	startMin := shift.StartMinutes()
	endMin := shift.EndMinutes()

	if shift.Overnight() {
		endMin += 1440
		if checkMin <= shift.EndMinutes() {
			checkMin += 1440
		}
	}

	delta := checkMin - startMin
	switch {
	case delta < -graceMinutes:
		return attendance.StatusEarly, delta
	case delta <= graceMinutes:
		return attendance.StatusOnTime, delta
	case checkMin <= endMin:
		return attendance.StatusOnTime, delta
	default:
		return attendance.StatusLate, delta
	}
}

// ShiftStartOn anchors the shift's start time to a calendar day in the
// organization's timezone. Used by the absence sweep to find the moment
// a worker became expected.
func ShiftStartOn(day time.Time, shift schedule.Shift, loc *time.Location) time.Time {
	local := day.In(loc)
	return time.Date(
		local.Year(), local.Month(), local.Day(),
		shift.StartTime.Hour(), shift.StartTime.Minute(), 0, 0,
		loc,
	)
}
