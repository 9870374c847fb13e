package attendance

import (
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// CheckInRequest is a self-service presence claim: a scanned location
// token, the reported GPS position, and the face capture. UserID and
// OrganizationID come from the authenticated caller, never the body.
type CheckInRequest struct {
	UserID         string `json:"-"`
	OrganizationID string `json:"-"`
	LocationToken  string `json:"location_token"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
	Image          []byte `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LocationToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_token",
			Message: "location_token is required",
		})
	}

	if validator.IsEmpty(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	}

	if validator.IsEmpty(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	}

	if len(r.Image) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "face capture photo is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Coordinates parses the reported position. Unparsable or out-of-range
// values reject the whole request.
func (r *CheckInRequest) Coordinates() (float64, float64, error) {
	lat, ok := validator.ParseLatitude(r.Latitude)
	if !ok {
		return 0, 0, ErrInvalidCoordinates
	}
	lon, ok := validator.ParseLongitude(r.Longitude)
	if !ok {
		return 0, 0, ErrInvalidCoordinates
	}
	return lat, lon, nil
}

// WatchCheckInRequest is a supervised presence claim: the worker is
// discovered from the capture rather than claimed by the caller.
type WatchCheckInRequest struct {
	OrganizationID string `json:"-"`
	LocationToken  string `json:"location_token"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
	Image          []byte `json:"-"`
}

func (r *WatchCheckInRequest) Validate() error {
	checkIn := CheckInRequest{
		OrganizationID: r.OrganizationID,
		LocationToken:  r.LocationToken,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Image:          r.Image,
	}
	return checkIn.Validate()
}

func (r *WatchCheckInRequest) Coordinates() (float64, float64, error) {
	checkIn := CheckInRequest{Latitude: r.Latitude, Longitude: r.Longitude}
	return checkIn.Coordinates()
}

type CheckOutRequest struct {
	UserID         string `json:"-"`
	OrganizationID string `json:"-"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	}

	if validator.IsEmpty(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (r *CheckOutRequest) Coordinates() (float64, float64, error) {
	checkIn := CheckInRequest{Latitude: r.Latitude, Longitude: r.Longitude}
	return checkIn.Coordinates()
}

// OverrideStatusRequest replaces an event's status and notes without
// touching its check-in/check-out times. Admin only.
type OverrideStatusRequest struct {
	ID             string `json:"-"`
	OrganizationID string `json:"-"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
}

func (r *OverrideStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "event id is required",
		})
	}

	if _, err := ParseStatus(r.Status); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of on_time, early, late, absent, out_of_bounds",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// EventFilter narrows admin listing of events.
type EventFilter struct {
	UserID string
	Day    string
	Page   int
	Limit  int
}

func (f *EventFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ========================================
// RESPONSES
// ========================================

type EventResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	OrganizationID   string   `json:"organization_id"`
	LocationID       *string  `json:"location_id,omitempty"`
	ShiftID          *string  `json:"shift_id,omitempty"`
	Day              string   `json:"day"`
	CheckIn          string   `json:"check_in"`
	CheckOut         *string  `json:"check_out,omitempty"`
	Status           string   `json:"status"`
	IsWithinGeofence bool     `json:"is_within_geofence"`
	IsVerified       bool     `json:"is_verified"`
	DistanceToFence  *int     `json:"distance_to_geofence_meters,omitempty"`
	FaceConfidence   *float64 `json:"face_confidence,omitempty"`
	LivenessScore    *float64 `json:"liveness_score,omitempty"`
	SpoofFlag        bool     `json:"spoof_flag"`
	Source           string   `json:"source"`
	Notes            *string  `json:"notes,omitempty"`
	WorkedMinutes    *int     `json:"worked_minutes,omitempty"`
}

type WatchCheckInResponse struct {
	Event            EventResponse `json:"event"`
	DiscoveredWorker string        `json:"discovered_worker"`
}

type ListEventsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Events     []EventResponse `json:"events"`
}

// NewEventResponse maps an event entity to its response shape.
func NewEventResponse(e Event) EventResponse {
	resp := EventResponse{
		ID:               e.ID,
		UserID:           e.UserID,
		OrganizationID:   e.OrganizationID,
		LocationID:       e.LocationID,
		ShiftID:          e.ShiftID,
		Day:              e.Day,
		CheckIn:          e.CheckIn.UTC().Format(time.RFC3339),
		Status:           string(e.Status),
		IsWithinGeofence: e.IsWithinGeofence,
		IsVerified:       e.IsVerified,
		DistanceToFence:  e.DistanceToFence,
		FaceConfidence:   e.FaceConfidence,
		LivenessScore:    e.LivenessScore,
		SpoofFlag:        e.SpoofFlag,
		Source:           string(e.Source),
		Notes:            e.Notes,
		WorkedMinutes:    e.WorkedMinutes,
	}
	if e.CheckOut != nil {
		out := e.CheckOut.UTC().Format(time.RFC3339)
		resp.CheckOut = &out
	}
	return resp
}
