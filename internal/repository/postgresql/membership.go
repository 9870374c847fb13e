package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/organization"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type membershipRepository struct {
	db *database.DB
}

func NewMembershipRepository(db *database.DB) organization.MembershipRepository {
	return &membershipRepository{db: db}
}

// Find implements organization.MembershipRepository.
func (r *membershipRepository) Find(ctx context.Context, userID, organizationID string) (organization.Membership, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, organization_id, role, active
		FROM memberships
		WHERE user_id = $1 AND organization_id = $2 AND active
	`

	var m organization.Membership
	var role string
	err := q.QueryRow(ctx, query, userID, organizationID).Scan(
		&m.UserID, &m.OrganizationID, &role, &m.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Membership{}, organization.ErrMembershipNotFound
		}
		return organization.Membership{}, fmt.Errorf("failed to find membership: %w", err)
	}
	m.Role = organization.Role(role)
	return m, nil
}
