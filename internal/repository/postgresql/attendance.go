package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.EventRepository {
	return &attendanceRepository{db: db}
}

const eventColumns = `
	id, user_id, organization_id, location_id, shift_id, day,
	check_in, check_out, status,
	is_within_geofence, is_verified, distance_to_geofence_meters,
	latitude, longitude, face_confidence, liveness_score, spoof_flag,
	source, notes, check_out_latitude, check_out_longitude, worked_minutes,
	created_at, updated_at
`

func scanEvent(row pgx.Row) (attendance.Event, error) {
	var e attendance.Event
	var status, source string
	err := row.Scan(
		&e.ID, &e.UserID, &e.OrganizationID, &e.LocationID, &e.ShiftID, &e.Day,
		&e.CheckIn, &e.CheckOut, &status,
		&e.IsWithinGeofence, &e.IsVerified, &e.DistanceToFence,
		&e.Latitude, &e.Longitude, &e.FaceConfidence, &e.LivenessScore, &e.SpoofFlag,
		&source, &e.Notes, &e.CheckOutLatitude, &e.CheckOutLongitude, &e.WorkedMinutes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return attendance.Event{}, err
	}
	e.Status = attendance.Status(status)
	e.Source = attendance.Source(source)
	return e, nil
}

// Create implements attendance.EventRepository. The partial unique index
// uq_attendance_open_event on (user_id, organization_id, day) WHERE
// check_out IS NULL backs the one-open-event invariant; a violation maps
// to ErrDuplicateCheckIn so concurrent check-ins cannot both land.
func (a *attendanceRepository) Create(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	// UUIDv7 keeps event IDs time-ordered.
	uid, err := uuid.NewV7()
	if err != nil {
		return attendance.Event{}, fmt.Errorf("failed to generate event id: %w", err)
	}
	event.ID = uid.String()

	query := `
		INSERT INTO attendance_events (
			id, user_id, organization_id, location_id, shift_id, day,
			check_in, check_out, status,
			is_within_geofence, is_verified, distance_to_geofence_meters,
			latitude, longitude, face_confidence, liveness_score, spoof_flag,
			source, notes, worked_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		event.ID,
		event.UserID,
		event.OrganizationID,
		event.LocationID,
		event.ShiftID,
		event.Day,
		event.CheckIn,
		event.CheckOut,
		string(event.Status),
		event.IsWithinGeofence,
		event.IsVerified,
		event.DistanceToFence,
		event.Latitude,
		event.Longitude,
		event.FaceConfidence,
		event.LivenessScore,
		event.SpoofFlag,
		string(event.Source),
		event.Notes,
		event.WorkedMinutes,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Event{}, attendance.ErrDuplicateCheckIn
		}
		return attendance.Event{}, fmt.Errorf("failed to create attendance event: %w", err)
	}

	return event, nil
}

// GetByID implements attendance.EventRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, organizationID string) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE id = $1 AND organization_id = $2
	`

	event, err := scanEvent(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Event{}, attendance.ErrEventNotFound
		}
		return attendance.Event{}, fmt.Errorf("failed to get attendance event: %w", err)
	}
	return event, nil
}

// FindOpenEvent implements attendance.EventRepository.
func (a *attendanceRepository) FindOpenEvent(ctx context.Context, userID, organizationID, day string) (*attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE user_id = $1
		  AND organization_id = $2
		  AND day = $3
		  AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`

	event, err := scanEvent(q.QueryRow(ctx, query, userID, organizationID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open attendance event: %w", err)
	}
	return &event, nil
}

// HasEventForDay implements attendance.EventRepository.
func (a *attendanceRepository) HasEventForDay(ctx context.Context, userID, organizationID, day string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance_events
			WHERE user_id = $1 AND organization_id = $2 AND day = $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, organizationID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance events for day: %w", err)
	}
	return exists, nil
}

// UpdateCheckout implements attendance.EventRepository.
func (a *attendanceRepository) UpdateCheckout(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_events
		SET check_out = $1,
			check_out_latitude = $2,
			check_out_longitude = $3,
			worked_minutes = $4,
			is_within_geofence = $5,
			updated_at = NOW()
		WHERE id = $6 AND organization_id = $7 AND check_out IS NULL
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		event.CheckOut,
		event.CheckOutLatitude,
		event.CheckOutLongitude,
		event.WorkedMinutes,
		event.IsWithinGeofence,
		event.ID,
		event.OrganizationID,
	).Scan(&event.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Event{}, attendance.ErrNotCheckedIn
		}
		return attendance.Event{}, fmt.Errorf("failed to close attendance event: %w", err)
	}
	return event, nil
}

// UpdateStatus implements attendance.EventRepository.
func (a *attendanceRepository) UpdateStatus(ctx context.Context, id, organizationID string, status attendance.Status, notes string) (attendance.Event, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_events
		SET status = $1, notes = $2, updated_at = NOW()
		WHERE id = $3 AND organization_id = $4
		RETURNING ` + eventColumns + `
	`

	event, err := scanEvent(q.QueryRow(ctx, query, string(status), notes, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Event{}, attendance.ErrEventNotFound
		}
		return attendance.Event{}, fmt.Errorf("failed to override attendance status: %w", err)
	}
	return event, nil
}

// List implements attendance.EventRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.EventFilter, organizationID string) ([]attendance.Event, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"organization_id = $1"}
	args := []interface{}{organizationID}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Day != "" {
		args = append(args, filter.Day)
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendance_events WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance events: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_events
		WHERE %s
		ORDER BY check_in DESC
		LIMIT $%d OFFSET $%d
	`, eventColumns, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	var events []attendance.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance events: %w", err)
	}

	return events, total, nil
}
