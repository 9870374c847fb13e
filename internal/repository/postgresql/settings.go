package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/organization"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepository struct {
	db              *database.DB
	defaultTimezone string
}

func NewSettingsRepository(db *database.DB, defaultTimezone string) organization.SettingsRepository {
	if defaultTimezone == "" {
		defaultTimezone = organization.DefaultTimezone
	}
	return &settingsRepository{db: db, defaultTimezone: defaultTimezone}
}

// Get implements organization.SettingsRepository. Settings rows are
// created lazily with defaults; the insert races benignly with other
// first readers via ON CONFLICT DO NOTHING.
func (r *settingsRepository) Get(ctx context.Context, organizationID string) (organization.Settings, error) {
	q := GetQuerier(ctx, r.db)

	selectQuery := `
		SELECT organization_id, grace_period_minutes, timezone, extra_hour_cost, created_at, updated_at
		FROM organization_settings
		WHERE organization_id = $1
	`

	var s organization.Settings
	err := q.QueryRow(ctx, selectQuery, organizationID).Scan(
		&s.OrganizationID, &s.GracePeriodMinutes, &s.Timezone, &s.ExtraHourCost,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return organization.Settings{}, fmt.Errorf("failed to get organization settings: %w", err)
	}

	insertQuery := `
		INSERT INTO organization_settings (organization_id, grace_period_minutes, timezone, extra_hour_cost)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (organization_id) DO NOTHING
	`

	err = WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertQuery, organizationID, organization.DefaultGracePeriodMinutes, r.defaultTimezone); err != nil {
			return fmt.Errorf("failed to create default organization settings: %w", err)
		}
		return tx.QueryRow(ctx, selectQuery, organizationID).Scan(
			&s.OrganizationID, &s.GracePeriodMinutes, &s.Timezone, &s.ExtraHourCost,
			&s.CreatedAt, &s.UpdatedAt,
		)
	})
	if err != nil {
		return organization.Settings{}, fmt.Errorf("failed to read organization settings after create: %w", err)
	}
	return s, nil
}
