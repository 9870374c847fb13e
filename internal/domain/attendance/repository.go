package attendance

import (
	"context"
)

// EventRepository defines data access for attendance events. All methods
// take organizationID to prevent cross-organization access; day values
// are organization-local calendar days formatted 2006-01-02.
type EventRepository interface {
	// Create inserts a new event. A concurrent open event for the same
	// (user, organization, day) must surface as ErrDuplicateCheckIn; the
	// backing store enforces this with a partial unique index over open
	// events rather than trusting the caller's pre-check.
	Create(ctx context.Context, event Event) (Event, error)

	// GetByID retrieves an event with organization isolation.
	GetByID(ctx context.Context, id string, organizationID string) (Event, error)

	// FindOpenEvent returns the open (checkOut IS NULL) event for a worker
	// on a given day, or nil if none exists.
	FindOpenEvent(ctx context.Context, userID, organizationID, day string) (*Event, error)

	// HasEventForDay reports whether any event, open or closed, covers the
	// worker for the day. Used by the absence sweep for idempotence.
	HasEventForDay(ctx context.Context, userID, organizationID, day string) (bool, error)

	// UpdateCheckout closes an open event.
	UpdateCheckout(ctx context.Context, event Event) (Event, error)

	// UpdateStatus applies an admin status override, leaving check-in and
	// check-out untouched.
	UpdateStatus(ctx context.Context, id, organizationID string, status Status, notes string) (Event, error)

	// List retrieves events with filters and pagination.
	List(ctx context.Context, filter EventFilter, organizationID string) ([]Event, int64, error)
}
