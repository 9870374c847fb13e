package organization

import "time"

// Geofence is a registered circular check-in boundary. Only active
// geofences belonging to the claimed organization are usable.
type Geofence struct {
	ID              string
	OrganizationID  string
	Name            string
	CenterLatitude  *float64
	CenterLongitude *float64
	RadiusMeters    *float64
	Active          bool
}

// Misconfigured reports whether the geofence is missing its center or
// radius. This is a server-side data error, not a caller mistake.
func (g Geofence) Misconfigured() bool {
	return g.CenterLatitude == nil || g.CenterLongitude == nil || g.RadiusMeters == nil || *g.RadiusMeters < 0
}

// Settings holds per-organization attendance policy. A row is created
// lazily with defaults on first access.
type Settings struct {
	OrganizationID     string
	GracePeriodMinutes int // 0-60
	Timezone           string
	ExtraHourCost      float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const (
	DefaultGracePeriodMinutes = 15
	DefaultTimezone           = "UTC"
)

// Location resolves the settings timezone, falling back to the supplied
// default and finally UTC when the stored zone name is invalid.
func (s Settings) Location(fallback string) *time.Location {
	for _, name := range []string{s.Timezone, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

// Role of a member within an organization.
type Role string

const (
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// Membership ties a user to an organization.
type Membership struct {
	UserID         string
	OrganizationID string
	Role           Role
	Active         bool
}
