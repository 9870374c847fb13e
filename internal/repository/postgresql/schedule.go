package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/schedule"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.Repository {
	return &scheduleRepository{db: db}
}

const resolvedShiftQuery = `
	SELECT sa.user_id, sa.shift_id, sa.organization_id, sa.effective_from, sa.effective_until,
		   s.id, s.organization_id, s.start_time, s.end_time, s.days_of_week, s.break_minutes, s.active
	FROM schedule_assignments sa
	JOIN shifts s ON s.id = sa.shift_id AND s.active
	WHERE sa.organization_id = $1
	  AND sa.effective_from <= $2
	  AND (sa.effective_until IS NULL OR sa.effective_until >= $2)
`

func collectResolvedShifts(rows pgx.Rows) ([]schedule.ResolvedShift, error) {
	defer rows.Close()

	var resolved []schedule.ResolvedShift
	for rows.Next() {
		var rs schedule.ResolvedShift
		err := rows.Scan(
			&rs.Assignment.UserID, &rs.Assignment.ShiftID, &rs.Assignment.OrganizationID,
			&rs.Assignment.EffectiveFrom, &rs.Assignment.EffectiveUntil,
			&rs.Shift.ID, &rs.Shift.OrganizationID, &rs.Shift.StartTime, &rs.Shift.EndTime,
			&rs.Shift.DaysOfWeek, &rs.Shift.BreakMinutes, &rs.Shift.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule assignment: %w", err)
		}
		resolved = append(resolved, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule assignments: %w", err)
	}
	return resolved, nil
}

// GetAssignmentsForUser implements schedule.Repository.
func (r *scheduleRepository) GetAssignmentsForUser(ctx context.Context, userID, organizationID string, at time.Time) ([]schedule.ResolvedShift, error) {
	q := GetQuerier(ctx, r.db)

	query := resolvedShiftQuery + `
	  AND sa.user_id = $3
	ORDER BY sa.effective_from DESC, s.id
	`

	rows, err := q.Query(ctx, query, organizationID, at, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule assignments: %w", err)
	}
	return collectResolvedShifts(rows)
}

// GetAssignmentsForOrganization implements schedule.Repository.
func (r *scheduleRepository) GetAssignmentsForOrganization(ctx context.Context, organizationID string, at time.Time) ([]schedule.ResolvedShift, error) {
	q := GetQuerier(ctx, r.db)

	query := resolvedShiftQuery + `
	ORDER BY sa.user_id, sa.effective_from DESC, s.id
	`

	rows, err := q.Query(ctx, query, organizationID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization schedule assignments: %w", err)
	}
	return collectResolvedShifts(rows)
}
