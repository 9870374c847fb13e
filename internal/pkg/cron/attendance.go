package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/database"
)

type AttendanceJobs struct {
	attendanceSvc attendance.Service
	db            *database.DB
}

func NewAttendanceJobs(attendanceSvc attendance.Service, db *database.DB) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		db:            db,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sweep_absences", 1*time.Hour, j.SweepAbsences)
}

// SweepAbsences marks workers absent across every organization with
// active members. The per-organization sweep is idempotent, so the
// hourly cadence only tightens how soon a no-show is recorded.
func (j *AttendanceJobs) SweepAbsences(ctx context.Context) error {
	slog.Info("Cron: Starting absence sweep")

	rows, err := j.db.Pool.Query(ctx, `
		SELECT DISTINCT organization_id FROM memberships
		WHERE active = TRUE
	`)
	if err != nil {
		return fmt.Errorf("failed to get organizations: %w", err)
	}
	defer rows.Close()

	var organizationIDs []string
	for rows.Next() {
		var organizationID string
		if err := rows.Scan(&organizationID); err != nil {
			continue
		}
		organizationIDs = append(organizationIDs, organizationID)
	}

	now := time.Now()
	totalAbsent := 0

	for _, organizationID := range organizationIDs {
		created, err := j.attendanceSvc.SweepAbsences(ctx, organizationID, now)
		if err != nil {
			slog.Error("Cron: Absence sweep failed for organization",
				"organization_id", organizationID, "error", err)
			continue
		}
		totalAbsent += len(created)
	}

	slog.Info("Cron: Absence sweep finished",
		"organizations", len(organizationIDs), "marked_absent", totalAbsent)
	return nil
}
