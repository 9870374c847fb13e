package schedule

import (
	"context"
	"time"
)

// Repository defines data access for shifts and schedule assignments.
// Both lookups join assignments to active shifts only; effectiveness
// filtering against the instant happens in SQL, weekday filtering in the
// resolver because it depends on the organization's timezone.
type Repository interface {
	// GetAssignmentsForUser returns the worker's assignments effective at
	// the instant, each joined to its active shift, ordered by
	// effective_from DESC then shift id so overlap resolution is stable.
	GetAssignmentsForUser(ctx context.Context, userID, organizationID string, at time.Time) ([]ResolvedShift, error)

	// GetAssignmentsForOrganization is the organization-wide variant used
	// by the absence sweep.
	GetAssignmentsForOrganization(ctx context.Context, organizationID string, at time.Time) ([]ResolvedShift, error)
}
