package attendance

import "errors"

// Attendance domain errors. Every check-in rejection carries a specific
// reason so the self-service flow can tell the worker what to fix.
var (
	// Check-in errors
	ErrTokenInvalid          = errors.New("location token is invalid or has been tampered with")
	ErrLocationNotAllowed    = errors.New("location is not registered for this organization")
	ErrGeofenceMisconfigured = errors.New("location geofence is misconfigured")
	ErrInvalidCoordinates    = errors.New("reported coordinates are invalid")
	ErrDuplicateCheckIn      = errors.New("an open check-in already exists for today, check out first")
	ErrIdentityMismatch      = errors.New("face does not match the claimed identity")
	ErrBelowThreshold        = errors.New("face similarity is below the verification threshold")
	ErrNoMatchingIdentity    = errors.New("no enrolled identity matches the capture")
	ErrNotMember             = errors.New("worker is not a member of this organization")
	ErrVerificationFailed    = errors.New("identity verification is temporarily unavailable")

	// Check-out errors
	ErrNotCheckedIn = errors.New("no open check-in found for today")

	// General errors
	ErrEventNotFound = errors.New("attendance event not found")
	ErrInvalidStatus = errors.New("invalid attendance status")
)
