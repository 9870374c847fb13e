package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/organization"
	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/schedule"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/face"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/geo"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/token"
	scheduleService "github.com/Yamilyscapa/skyhr-sub000/internal/service/schedule"
)

// Identifier is the slice of the face verifier the state machine needs.
type Identifier interface {
	VerifyClaimed(ctx context.Context, image []byte, claimedID, galleryID string) (face.Verification, error)
	Identify(ctx context.Context, image []byte, galleryID string) (face.Verification, error)
}

type ServiceImpl struct {
	events          attendance.EventRepository
	memberships     organization.MembershipRepository
	geofences       organization.GeofenceRepository
	settings        organization.SettingsRepository
	resolver        schedule.Resolver
	codec           *token.Codec
	verifier        Identifier
	defaultTimezone string

	nowFn func() time.Time
}

func NewAttendanceService(
	events attendance.EventRepository,
	memberships organization.MembershipRepository,
	geofences organization.GeofenceRepository,
	settings organization.SettingsRepository,
	resolver schedule.Resolver,
	codec *token.Codec,
	verifier Identifier,
	defaultTimezone string,
) attendance.Service {
	return &ServiceImpl{
		events:          events,
		memberships:     memberships,
		geofences:       geofences,
		settings:        settings,
		resolver:        resolver,
		codec:           codec,
		verifier:        verifier,
		defaultTimezone: defaultTimezone,
		nowFn:           time.Now,
	}
}

// CheckIn implements attendance.Service. The pipeline is strictly
// ordered: token, geofence, duplicate guard, identity, then
// classification. A failure at any stage is terminal and persists
// nothing.
func (s *ServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}
	lat, lon, err := req.Coordinates()
	if err != nil {
		return attendance.EventResponse{}, err
	}
	nowUTC := s.nowFn().UTC()

	if err := s.requireMembership(ctx, req.UserID, req.OrganizationID); err != nil {
		return attendance.EventResponse{}, err
	}

	fence, err := s.resolveLocation(ctx, req.LocationToken, req.OrganizationID)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	settings, loc, err := s.organizationClock(ctx, req.OrganizationID)
	if err != nil {
		return attendance.EventResponse{}, err
	}
	day := nowUTC.In(loc).Format("2006-01-02")

	open, err := s.events.FindOpenEvent(ctx, req.UserID, req.OrganizationID, day)
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("failed to check for open event: %w", err)
	}
	if open != nil {
		return attendance.EventResponse{}, attendance.ErrDuplicateCheckIn
	}

	// Claimed-identity mode: only the caller's own gallery candidate
	// counts, however strong other candidates are.
	verification, err := s.verifier.VerifyClaimed(ctx, req.Image, req.UserID, req.OrganizationID)
	if err != nil {
		slog.Error("Face verification failed", "user_id", req.UserID, "error", err)
		return attendance.EventResponse{}, attendance.ErrVerificationFailed
	}
	switch verification.Decision {
	case face.DecisionMatched:
		// proceed
	case face.DecisionBelowThreshold:
		return attendance.EventResponse{}, attendance.ErrBelowThreshold
	case face.DecisionNoMatch:
		return attendance.EventResponse{}, attendance.ErrIdentityMismatch
	default:
		return attendance.EventResponse{}, attendance.ErrVerificationFailed
	}

	event, err := s.createEvent(ctx, createEventParams{
		userID:       req.UserID,
		orgID:        req.OrganizationID,
		fence:        fence,
		lat:          lat,
		lon:          lon,
		verification: verification,
		source:       attendance.SourceQRFace,
		now:          nowUTC,
		day:          day,
		loc:          loc,
		grace:        settings.GracePeriodMinutes,
	})
	if err != nil {
		return attendance.EventResponse{}, err
	}

	return attendance.NewEventResponse(event), nil
}

// WatchCheckIn implements attendance.Service. The worker is discovered
// from the capture; their membership in the claimed organization is then
// re-validated before anything persists.
func (s *ServiceImpl) WatchCheckIn(ctx context.Context, req attendance.WatchCheckInRequest) (attendance.WatchCheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WatchCheckInResponse{}, err
	}
	lat, lon, err := req.Coordinates()
	if err != nil {
		return attendance.WatchCheckInResponse{}, err
	}
	nowUTC := s.nowFn().UTC()

	fence, err := s.resolveLocation(ctx, req.LocationToken, req.OrganizationID)
	if err != nil {
		return attendance.WatchCheckInResponse{}, err
	}

	verification, err := s.verifier.Identify(ctx, req.Image, req.OrganizationID)
	if err != nil {
		slog.Error("Watch-mode identification failed", "organization_id", req.OrganizationID, "error", err)
		return attendance.WatchCheckInResponse{}, attendance.ErrVerificationFailed
	}
	if verification.Decision != face.DecisionMatched {
		return attendance.WatchCheckInResponse{}, attendance.ErrNoMatchingIdentity
	}
	workerID := verification.DiscoveredID

	if err := s.requireMembership(ctx, workerID, req.OrganizationID); err != nil {
		return attendance.WatchCheckInResponse{}, err
	}

	settings, loc, err := s.organizationClock(ctx, req.OrganizationID)
	if err != nil {
		return attendance.WatchCheckInResponse{}, err
	}
	day := nowUTC.In(loc).Format("2006-01-02")

	open, err := s.events.FindOpenEvent(ctx, workerID, req.OrganizationID, day)
	if err != nil {
		return attendance.WatchCheckInResponse{}, fmt.Errorf("failed to check for open event: %w", err)
	}
	if open != nil {
		return attendance.WatchCheckInResponse{}, attendance.ErrDuplicateCheckIn
	}

	event, err := s.createEvent(ctx, createEventParams{
		userID:       workerID,
		orgID:        req.OrganizationID,
		fence:        fence,
		lat:          lat,
		lon:          lon,
		verification: verification,
		source:       attendance.SourceWatchMode,
		now:          nowUTC,
		day:          day,
		loc:          loc,
		grace:        settings.GracePeriodMinutes,
	})
	if err != nil {
		return attendance.WatchCheckInResponse{}, err
	}

	return attendance.WatchCheckInResponse{
		Event:            attendance.NewEventResponse(event),
		DiscoveredWorker: workerID,
	}, nil
}

// CheckOut implements attendance.Service.
func (s *ServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}
	lat, lon, err := req.Coordinates()
	if err != nil {
		return attendance.EventResponse{}, err
	}
	nowUTC := s.nowFn().UTC()

	_, loc, err := s.organizationClock(ctx, req.OrganizationID)
	if err != nil {
		return attendance.EventResponse{}, err
	}
	day := nowUTC.In(loc).Format("2006-01-02")

	open, err := s.events.FindOpenEvent(ctx, req.UserID, req.OrganizationID, day)
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("failed to find open event: %w", err)
	}
	if open == nil {
		return attendance.EventResponse{}, attendance.ErrNotCheckedIn
	}

	checkOut := nowUTC
	if checkOut.Before(open.CheckIn) {
		checkOut = open.CheckIn
	}
	worked := int(checkOut.Sub(open.CheckIn).Minutes())

	open.CheckOut = &checkOut
	open.CheckOutLatitude = &lat
	open.CheckOutLongitude = &lon
	open.WorkedMinutes = &worked
	// The open event does not retain its geofence binding, so check-out
	// has no radius to measure against and records within-bounds.
	open.IsWithinGeofence = true

	closed, err := s.events.UpdateCheckout(ctx, *open)
	if err != nil {
		return attendance.EventResponse{}, fmt.Errorf("failed to close attendance event: %w", err)
	}

	return attendance.NewEventResponse(closed), nil
}

// OverrideStatus implements attendance.Service. It replaces status and
// notes only; check-in and check-out timestamps are untouched.
func (s *ServiceImpl) OverrideStatus(ctx context.Context, req attendance.OverrideStatusRequest) (attendance.EventResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EventResponse{}, err
	}
	status, err := attendance.ParseStatus(req.Status)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	event, err := s.events.UpdateStatus(ctx, req.ID, req.OrganizationID, status, req.Notes)
	if err != nil {
		if errors.Is(err, attendance.ErrEventNotFound) {
			return attendance.EventResponse{}, attendance.ErrEventNotFound
		}
		return attendance.EventResponse{}, fmt.Errorf("failed to override event status: %w", err)
	}

	return attendance.NewEventResponse(event), nil
}

// SweepAbsences implements attendance.Service. One worker's failure
// never stops the rest of the sweep; repeated sweeps are idempotent
// because existing events for the day are respected.
func (s *ServiceImpl) SweepAbsences(ctx context.Context, organizationID string, now time.Time) ([]attendance.EventResponse, error) {
	settings, loc, err := s.organizationClock(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	day := now.In(loc).Format("2006-01-02")

	resolved, err := s.resolver.ActiveShiftsForOrganization(ctx, organizationID, now, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organization schedules: %w", err)
	}

	var created []attendance.EventResponse
	for _, rs := range resolved {
		start := scheduleService.ShiftStartOn(now, rs.Shift, loc)
		deadline := start.Add(time.Duration(settings.GracePeriodMinutes) * time.Minute)
		if !now.After(deadline) {
			continue
		}

		has, err := s.events.HasEventForDay(ctx, rs.Assignment.UserID, organizationID, day)
		if err != nil {
			slog.Error("Sweep: failed to check existing events",
				"user_id", rs.Assignment.UserID, "organization_id", organizationID, "error", err)
			continue
		}
		if has {
			continue
		}

		startUTC := start.UTC()
		shiftID := rs.Shift.ID
		note := fmt.Sprintf("marked absent: no check-in by %s for shift starting %s (grace %d min)",
			deadline.Format("15:04"), start.Format("15:04"), settings.GracePeriodMinutes)
		worked := 0

		// Absent is terminal: the synthesized event is created already
		// closed so it can never satisfy an open-event lookup.
		event := attendance.Event{
			UserID:           rs.Assignment.UserID,
			OrganizationID:   organizationID,
			ShiftID:          &shiftID,
			Day:              day,
			CheckIn:          startUTC,
			CheckOut:         &startUTC,
			Status:           attendance.StatusAbsent,
			IsWithinGeofence: false,
			IsVerified:       false,
			Source:           attendance.SourceSystem,
			Notes:            &note,
			WorkedMinutes:    &worked,
		}

		persisted, err := s.events.Create(ctx, event)
		if err != nil {
			slog.Error("Sweep: failed to create absent event",
				"user_id", rs.Assignment.UserID, "organization_id", organizationID, "error", err)
			continue
		}
		created = append(created, attendance.NewEventResponse(persisted))
	}

	slog.Info("Absence sweep completed",
		"organization_id", organizationID, "day", day, "marked_absent", len(created))
	return created, nil
}

// GetEvent implements attendance.Service.
func (s *ServiceImpl) GetEvent(ctx context.Context, id, organizationID string) (attendance.EventResponse, error) {
	event, err := s.events.GetByID(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, attendance.ErrEventNotFound) {
			return attendance.EventResponse{}, attendance.ErrEventNotFound
		}
		return attendance.EventResponse{}, fmt.Errorf("failed to get attendance event: %w", err)
	}
	return attendance.NewEventResponse(event), nil
}

// ListEvents implements attendance.Service.
func (s *ServiceImpl) ListEvents(ctx context.Context, filter attendance.EventFilter, organizationID string) (attendance.ListEventsResponse, error) {
	filter.Normalize()

	events, total, err := s.events.List(ctx, filter, organizationID)
	if err != nil {
		return attendance.ListEventsResponse{}, fmt.Errorf("failed to list attendance events: %w", err)
	}

	responses := make([]attendance.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, attendance.NewEventResponse(event))
	}

	return attendance.ListEventsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Events:     responses,
	}, nil
}

func (s *ServiceImpl) requireMembership(ctx context.Context, userID, organizationID string) error {
	_, err := s.memberships.Find(ctx, userID, organizationID)
	if err != nil {
		if errors.Is(err, organization.ErrMembershipNotFound) {
			return attendance.ErrNotMember
		}
		return fmt.Errorf("failed to resolve membership: %w", err)
	}
	return nil
}

// resolveLocation verifies the scanned token and loads the geofence it
// binds. The payload is only trusted after the signature checks out.
func (s *ServiceImpl) resolveLocation(ctx context.Context, locationToken, organizationID string) (organization.Geofence, error) {
	payload, err := s.codec.VerifyLocation(locationToken)
	if err != nil {
		return organization.Geofence{}, attendance.ErrTokenInvalid
	}
	if payload.OrganizationID != organizationID {
		return organization.Geofence{}, attendance.ErrLocationNotAllowed
	}

	fence, err := s.geofences.GetByID(ctx, payload.LocationID, organizationID)
	if err != nil {
		if errors.Is(err, organization.ErrGeofenceNotFound) {
			return organization.Geofence{}, attendance.ErrLocationNotAllowed
		}
		return organization.Geofence{}, fmt.Errorf("failed to load geofence: %w", err)
	}
	if !fence.Active {
		return organization.Geofence{}, attendance.ErrLocationNotAllowed
	}
	if fence.Misconfigured() {
		return organization.Geofence{}, attendance.ErrGeofenceMisconfigured
	}
	return fence, nil
}

func (s *ServiceImpl) organizationClock(ctx context.Context, organizationID string) (organization.Settings, *time.Location, error) {
	settings, err := s.settings.Get(ctx, organizationID)
	if err != nil {
		return organization.Settings{}, nil, fmt.Errorf("failed to load organization settings: %w", err)
	}
	return settings, settings.Location(s.defaultTimezone), nil
}

type createEventParams struct {
	userID       string
	orgID        string
	fence        organization.Geofence
	lat          float64
	lon          float64
	verification face.Verification
	source       attendance.Source
	now          time.Time
	day          string
	loc          *time.Location
	grace        int
}

// createEvent runs the geofence check and shift classification, applies
// the out-of-bounds override, and persists the event. Liveness is
// recorded, never gating.
func (s *ServiceImpl) createEvent(ctx context.Context, p createEventParams) (attendance.Event, error) {
	boundary := geo.Circle{
		Latitude:     *p.fence.CenterLatitude,
		Longitude:    *p.fence.CenterLongitude,
		RadiusMeters: *p.fence.RadiusMeters,
	}
	within, distance := geo.IsWithin(p.lat, p.lon, boundary)

	var notes []string
	var shiftID *string
	var status attendance.Status

	resolved, err := s.resolver.ActiveShift(ctx, p.userID, p.orgID, p.now, p.loc)
	if err != nil {
		return attendance.Event{}, fmt.Errorf("failed to resolve active shift: %w", err)
	}
	if resolved == nil {
		status = attendance.StatusOnTime
		notes = append(notes, "no shift scheduled for this day; accepted without schedule comparison")
	} else {
		status, _ = scheduleService.Classify(p.now, resolved.Shift, p.loc, p.grace)
		id := resolved.Shift.ID
		shiftID = &id
	}

	if !within {
		// Distance overrides whatever the clock said.
		status = attendance.StatusOutOfBounds
		notes = append(notes, fmt.Sprintf("position is %d m from location center (radius %.0f m)", distance, boundary.RadiusMeters))
	}

	liveness := p.verification.Liveness
	if !liveness.IsLive {
		slog.Warn("Liveness check failed, recording for review",
			"user_id", p.userID, "organization_id", p.orgID,
			"liveness_score", liveness.Score, "reasons", strings.Join(liveness.Reasons, "; "))
	}

	var notesPtr *string
	if len(notes) > 0 {
		joined := strings.Join(notes, "; ")
		notesPtr = &joined
	}

	locationID := p.fence.ID
	event := attendance.Event{
		UserID:           p.userID,
		OrganizationID:   p.orgID,
		LocationID:       &locationID,
		ShiftID:          shiftID,
		Day:              p.day,
		CheckIn:          p.now,
		Status:           status,
		IsWithinGeofence: within,
		IsVerified:       true,
		DistanceToFence:  &distance,
		Latitude:         &p.lat,
		Longitude:        &p.lon,
		FaceConfidence:   &p.verification.FaceConfidence,
		LivenessScore:    &liveness.Score,
		SpoofFlag:        liveness.SpoofFlag,
		Source:           p.source,
		Notes:            notesPtr,
	}

	persisted, err := s.events.Create(ctx, event)
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateCheckIn) {
			return attendance.Event{}, attendance.ErrDuplicateCheckIn
		}
		return attendance.Event{}, fmt.Errorf("failed to persist attendance event: %w", err)
	}
	return persisted, nil
}
