package attendance

import (
	"context"
	"time"
)

// Service defines the attendance state machine. A verification failure
// at any stage is terminal for the request; no partial event is ever
// persisted.
type Service interface {
	// CheckIn processes a self-service presence claim (qr_face source,
	// claimed-identity verification).
	CheckIn(ctx context.Context, req CheckInRequest) (EventResponse, error)

	// WatchCheckIn processes a supervised presence claim (watch_mode
	// source, open identification of the worker).
	WatchCheckIn(ctx context.Context, req WatchCheckInRequest) (WatchCheckInResponse, error)

	// CheckOut closes today's open event and returns the elapsed worked
	// minutes on the response.
	CheckOut(ctx context.Context, req CheckOutRequest) (EventResponse, error)

	// OverrideStatus replaces an event's status and notes (admin only).
	OverrideStatus(ctx context.Context, req OverrideStatusRequest) (EventResponse, error)

	// SweepAbsences synthesizes absent events for workers whose shift
	// started more than the grace period before now with no check-in.
	// Per-worker failures are logged and skipped.
	SweepAbsences(ctx context.Context, organizationID string, now time.Time) ([]EventResponse, error)

	// GetEvent retrieves a single event.
	GetEvent(ctx context.Context, id, organizationID string) (EventResponse, error)

	// ListEvents retrieves events with filters (admin).
	ListEvents(ctx context.Context, filter EventFilter, organizationID string) (ListEventsResponse, error)
}
