package organization

import "errors"

// Organization domain errors
var (
	ErrGeofenceNotFound   = errors.New("geofence not found")
	ErrMembershipNotFound = errors.New("membership not found")
)
