package organization

import "context"

// GeofenceRepository reads registered check-in boundaries. The engine
// never writes them; they are administered elsewhere.
type GeofenceRepository interface {
	// GetByID returns the geofence only if it belongs to the organization.
	GetByID(ctx context.Context, id, organizationID string) (Geofence, error)
}

// SettingsRepository reads per-organization attendance policy.
type SettingsRepository interface {
	// Get returns the organization's settings, creating a default row on
	// first access.
	Get(ctx context.Context, organizationID string) (Settings, error)
}

// MembershipRepository resolves whether a user belongs to an organization.
type MembershipRepository interface {
	// Find returns the active membership, or ErrMembershipNotFound.
	Find(ctx context.Context, userID, organizationID string) (Membership, error)
}
