package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/organization"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type geofenceRepository struct {
	db *database.DB
}

func NewGeofenceRepository(db *database.DB) organization.GeofenceRepository {
	return &geofenceRepository{db: db}
}

// GetByID implements organization.GeofenceRepository.
func (r *geofenceRepository) GetByID(ctx context.Context, id, organizationID string) (organization.Geofence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, name, center_latitude, center_longitude, radius_meters, active
		FROM geofences
		WHERE id = $1 AND organization_id = $2
	`

	var g organization.Geofence
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&g.ID, &g.OrganizationID, &g.Name,
		&g.CenterLatitude, &g.CenterLongitude, &g.RadiusMeters, &g.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Geofence{}, organization.ErrGeofenceNotFound
		}
		return organization.Geofence{}, fmt.Errorf("failed to get geofence: %w", err)
	}
	return g, nil
}
