package response

import (
	"errors"
	"net/http"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/organization"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Check-in pipeline errors
	case errors.Is(err, attendance.ErrTokenInvalid):
		Unauthorized(w, "Location token is invalid or has been tampered with")
	case errors.Is(err, attendance.ErrLocationNotAllowed):
		Forbidden(w, "Location is not registered for this organization")
	case errors.Is(err, attendance.ErrGeofenceMisconfigured):
		InternalServerError(w, "Location geofence is misconfigured")
	case errors.Is(err, attendance.ErrInvalidCoordinates):
		BadRequest(w, "Coordinates are missing or out of range", nil)
	case errors.Is(err, attendance.ErrDuplicateCheckIn):
		Conflict(w, "An open attendance event already exists for today")
	case errors.Is(err, attendance.ErrNotMember):
		Forbidden(w, "Worker is not a member of this organization")

	// Identity verification errors
	case errors.Is(err, attendance.ErrIdentityMismatch):
		Unauthorized(w, "Face does not match the claimed identity")
	case errors.Is(err, attendance.ErrBelowThreshold):
		Unauthorized(w, "Face match confidence is below the acceptance threshold")
	case errors.Is(err, attendance.ErrNoMatchingIdentity):
		NotFound(w, "No enrolled worker matches the capture")
	case errors.Is(err, attendance.ErrVerificationFailed):
		InternalServerError(w, "Identity verification is unavailable, try again")

	// Event lifecycle errors
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "No open attendance event to check out of")
	case errors.Is(err, attendance.ErrEventNotFound):
		NotFound(w, "Attendance event not found")
	case errors.Is(err, attendance.ErrInvalidStatus):
		BadRequest(w, "Unknown attendance status", nil)

	// Organization errors
	case errors.Is(err, organization.ErrMembershipNotFound):
		Forbidden(w, "Worker is not a member of this organization")
	case errors.Is(err, organization.ErrGeofenceNotFound):
		NotFound(w, "Location not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
