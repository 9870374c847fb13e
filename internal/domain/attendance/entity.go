package attendance

import (
	"fmt"
	"time"
)

// Status classifies a check-in against the worker's schedule. The set is
// closed: adding a status means updating ParseStatus and every
// exhaustive switch over the type.
type Status string

const (
	StatusOnTime      Status = "on_time"
	StatusEarly       Status = "early"
	StatusLate        Status = "late"
	StatusAbsent      Status = "absent"
	StatusOutOfBounds Status = "out_of_bounds"
)

// ParseStatus validates an externally supplied status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOnTime, StatusEarly, StatusLate, StatusAbsent, StatusOutOfBounds:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Source records which entry path produced the event.
type Source string

const (
	SourceQRFace    Source = "qr_face"
	SourceWatchMode Source = "watch_mode"
	SourceManual    Source = "manual"
	SourceSystem    Source = "system"
)

// Event is the authoritative record of one presence decision. Status is
// set once at creation and changes only through an explicit admin
// override; rows are never physically deleted.
type Event struct {
	ID             string
	UserID         string
	OrganizationID string
	LocationID     *string
	ShiftID        *string

	// Day is the organization-local calendar day the event belongs to,
	// formatted 2006-01-02. The one-open-event invariant is scoped by it.
	Day      string
	CheckIn  time.Time
	CheckOut *time.Time

	Status           Status
	IsWithinGeofence bool
	IsVerified       bool
	DistanceToFence  *int
	Latitude         *float64
	Longitude        *float64
	FaceConfidence   *float64
	LivenessScore    *float64
	SpoofFlag        bool
	Source           Source
	Notes            *string

	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	WorkedMinutes     *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the event still awaits a check-out.
func (e Event) Open() bool {
	return e.CheckOut == nil
}
