package schedule

import (
	"context"
	"time"
)

// Resolver finds the schedule covering a worker, or an organization's
// workers, at an instant. The location is the organization's timezone;
// weekday boundaries follow it, not UTC.
type Resolver interface {
	// ActiveShift returns the one schedule covering the worker at the
	// instant, or nil when no assigned shift runs that day. Overlapping
	// assignments are tolerated; the first matching row wins.
	ActiveShift(ctx context.Context, userID, organizationID string, at time.Time, loc *time.Location) (*ResolvedShift, error)

	// ActiveShiftsForOrganization returns every worker's covering schedule
	// at the instant, one entry per assignment whose shift runs that day.
	ActiveShiftsForOrganization(ctx context.Context, organizationID string, at time.Time, loc *time.Location) ([]ResolvedShift, error)
}
