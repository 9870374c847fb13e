package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/organization"
	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/schedule"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/face"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// FAKES
// ========================================

type fakeEventRepo struct {
	events    []attendance.Event
	nextID    int
	createErr error
}

func (f *fakeEventRepo) Create(_ context.Context, event attendance.Event) (attendance.Event, error) {
	if f.createErr != nil {
		return attendance.Event{}, f.createErr
	}
	// Mirrors the partial unique index over open events.
	if event.CheckOut == nil {
		for _, e := range f.events {
			if e.UserID == event.UserID && e.OrganizationID == event.OrganizationID && e.Day == event.Day && e.CheckOut == nil {
				return attendance.Event{}, attendance.ErrDuplicateCheckIn
			}
		}
	}
	f.nextID++
	event.ID = fmt.Sprintf("evt-%d", f.nextID)
	event.CreatedAt = event.CheckIn
	event.UpdatedAt = event.CheckIn
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id, organizationID string) (attendance.Event, error) {
	for _, e := range f.events {
		if e.ID == id && e.OrganizationID == organizationID {
			return e, nil
		}
	}
	return attendance.Event{}, attendance.ErrEventNotFound
}

func (f *fakeEventRepo) FindOpenEvent(_ context.Context, userID, organizationID, day string) (*attendance.Event, error) {
	for i := range f.events {
		e := f.events[i]
		if e.UserID == userID && e.OrganizationID == organizationID && e.Day == day && e.CheckOut == nil {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeEventRepo) HasEventForDay(_ context.Context, userID, organizationID, day string) (bool, error) {
	for _, e := range f.events {
		if e.UserID == userID && e.OrganizationID == organizationID && e.Day == day {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) UpdateCheckout(_ context.Context, event attendance.Event) (attendance.Event, error) {
	for i := range f.events {
		if f.events[i].ID == event.ID && f.events[i].OrganizationID == event.OrganizationID {
			if f.events[i].CheckOut != nil {
				return attendance.Event{}, attendance.ErrNotCheckedIn
			}
			f.events[i] = event
			return event, nil
		}
	}
	return attendance.Event{}, attendance.ErrEventNotFound
}

func (f *fakeEventRepo) UpdateStatus(_ context.Context, id, organizationID string, status attendance.Status, notes string) (attendance.Event, error) {
	for i := range f.events {
		if f.events[i].ID == id && f.events[i].OrganizationID == organizationID {
			f.events[i].Status = status
			if notes != "" {
				f.events[i].Notes = &notes
			}
			return f.events[i], nil
		}
	}
	return attendance.Event{}, attendance.ErrEventNotFound
}

func (f *fakeEventRepo) List(_ context.Context, filter attendance.EventFilter, organizationID string) ([]attendance.Event, int64, error) {
	var matched []attendance.Event
	for _, e := range f.events {
		if e.OrganizationID != organizationID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Day != "" && e.Day != filter.Day {
			continue
		}
		matched = append(matched, e)
	}
	return matched, int64(len(matched)), nil
}

type fakeMembershipRepo struct {
	members map[string]organization.Membership
}

func membershipKey(userID, organizationID string) string {
	return userID + "|" + organizationID
}

func (f *fakeMembershipRepo) Find(_ context.Context, userID, organizationID string) (organization.Membership, error) {
	m, ok := f.members[membershipKey(userID, organizationID)]
	if !ok {
		return organization.Membership{}, organization.ErrMembershipNotFound
	}
	return m, nil
}

type fakeGeofenceRepo struct {
	fences map[string]organization.Geofence
}

func (f *fakeGeofenceRepo) GetByID(_ context.Context, id, organizationID string) (organization.Geofence, error) {
	fence, ok := f.fences[id]
	if !ok || fence.OrganizationID != organizationID {
		return organization.Geofence{}, organization.ErrGeofenceNotFound
	}
	return fence, nil
}

type fakeSettingsRepo struct {
	settings organization.Settings
}

func (f *fakeSettingsRepo) Get(_ context.Context, organizationID string) (organization.Settings, error) {
	s := f.settings
	s.OrganizationID = organizationID
	return s, nil
}

type fakeResolver struct {
	byUser map[string]*schedule.ResolvedShift
	byOrg  []schedule.ResolvedShift
}

func (f *fakeResolver) ActiveShift(_ context.Context, userID, _ string, _ time.Time, _ *time.Location) (*schedule.ResolvedShift, error) {
	return f.byUser[userID], nil
}

func (f *fakeResolver) ActiveShiftsForOrganization(_ context.Context, _ string, _ time.Time, _ *time.Location) ([]schedule.ResolvedShift, error) {
	return f.byOrg, nil
}

type stubVerifier struct {
	claimed    face.Verification
	claimedErr error
	identified face.Verification
	identErr   error
}

func (s *stubVerifier) VerifyClaimed(_ context.Context, _ []byte, _, _ string) (face.Verification, error) {
	return s.claimed, s.claimedErr
}

func (s *stubVerifier) Identify(_ context.Context, _ []byte, _ string) (face.Verification, error) {
	return s.identified, s.identErr
}

// ========================================
// HARNESS
// ========================================

const (
	testOrg      = "org-1"
	testUser     = "user-1"
	testLocation = "loc-1"
	testSecret   = "attendance-test-secret"
)

type harness struct {
	service  *ServiceImpl
	events   *fakeEventRepo
	members  *fakeMembershipRepo
	fences   *fakeGeofenceRepo
	settings *fakeSettingsRepo
	resolver *fakeResolver
	verifier *stubVerifier
	codec    *token.Codec
	token    string
}

func ptr(f float64) *float64 { return &f }

func liveCapture() face.LivenessResult {
	return face.LivenessResult{IsLive: true, Score: 100}
}

func matchedVerification(id string) face.Verification {
	return face.Verification{
		Decision:       face.DecisionMatched,
		DiscoveredID:   id,
		Similarity:     99.1,
		FaceConfidence: 99.8,
		Liveness:       liveCapture(),
	}
}

// newHarness wires the service against fakes: a geofence centered on the
// origin with a 100 m radius, a Monday-Friday 09:00-17:00 shift for the
// default worker, grace of 5 minutes, UTC clock.
func newHarness(t *testing.T) *harness {
	t.Helper()

	codec, err := token.NewCodec(testSecret)
	require.NoError(t, err)
	locationToken, err := codec.SignLocation(token.LocationPayload{
		OrganizationID: testOrg,
		LocationID:     testLocation,
	})
	require.NoError(t, err)

	shift := schedule.Shift{
		ID:         "shift-day",
		StartTime:  time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2000, 1, 1, 17, 0, 0, 0, time.UTC),
		DaysOfWeek: []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Active:     true,
	}
	resolvedDay := schedule.ResolvedShift{
		Assignment: schedule.Assignment{UserID: testUser, ShiftID: shift.ID, OrganizationID: testOrg},
		Shift:      shift,
	}

	h := &harness{
		events: &fakeEventRepo{},
		members: &fakeMembershipRepo{members: map[string]organization.Membership{
			membershipKey(testUser, testOrg): {UserID: testUser, OrganizationID: testOrg, Role: organization.RoleWorker, Active: true},
		}},
		fences: &fakeGeofenceRepo{fences: map[string]organization.Geofence{
			testLocation: {
				ID:              testLocation,
				OrganizationID:  testOrg,
				Name:            "HQ",
				CenterLatitude:  ptr(0),
				CenterLongitude: ptr(0),
				RadiusMeters:    ptr(100),
				Active:          true,
			},
		}},
		settings: &fakeSettingsRepo{settings: organization.Settings{
			GracePeriodMinutes: 5,
			Timezone:           "UTC",
		}},
		resolver: &fakeResolver{byUser: map[string]*schedule.ResolvedShift{
			testUser: &resolvedDay,
		}},
		verifier: &stubVerifier{
			claimed:    matchedVerification(testUser),
			identified: matchedVerification(testUser),
		},
		codec: codec,
		token: locationToken,
	}

	svc := NewAttendanceService(h.events, h.members, h.fences, h.settings, h.resolver, h.codec, h.verifier, "UTC")
	h.service = svc.(*ServiceImpl)
	// 2025-06-02 is a Monday.
	h.setNow(time.Date(2025, 6, 2, 9, 7, 0, 0, time.UTC))
	return h
}

func (h *harness) setNow(at time.Time) {
	h.service.nowFn = func() time.Time { return at }
}

func (h *harness) checkInRequest() attendance.CheckInRequest {
	return attendance.CheckInRequest{
		UserID:         testUser,
		OrganizationID: testOrg,
		LocationToken:  h.token,
		Latitude:       "0.0001",
		Longitude:      "0.0001",
		Image:          []byte("jpeg-bytes"),
	}
}

// ========================================
// CHECK-IN
// ========================================

func TestCheckInWithinGraceAndFence(t *testing.T) {
	h := newHarness(t)

	resp, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	// 09:07 against a 09:00 start with 5 min grace counts as on time,
	// not late: the worker is inside the shift span.
	assert.Equal(t, string(attendance.StatusOnTime), resp.Status)
	assert.True(t, resp.IsWithinGeofence)
	assert.True(t, resp.IsVerified)
	assert.Equal(t, string(attendance.SourceQRFace), resp.Source)
	assert.Equal(t, "2025-06-02", resp.Day)
	assert.Equal(t, testUser, resp.UserID)
	require.NotNil(t, resp.ShiftID)
	assert.Equal(t, "shift-day", *resp.ShiftID)
	require.NotNil(t, resp.DistanceToFence)
	assert.Less(t, *resp.DistanceToFence, 100)
	require.NotNil(t, resp.FaceConfidence)
	assert.InDelta(t, 99.8, *resp.FaceConfidence, 0.001)
	assert.False(t, resp.SpoofFlag)
	assert.Nil(t, resp.CheckOut)
}

func TestCheckInRejectsDuplicate(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	_, err = h.service.CheckIn(context.Background(), h.checkInRequest())
	assert.ErrorIs(t, err, attendance.ErrDuplicateCheckIn)
	assert.Len(t, h.events.events, 1)
}

func TestCheckInDuplicateSurfacedByStore(t *testing.T) {
	h := newHarness(t)

	// The pre-check saw no open event, but the store's uniqueness
	// constraint fired anyway (concurrent request).
	h.events.createErr = attendance.ErrDuplicateCheckIn

	_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	assert.ErrorIs(t, err, attendance.ErrDuplicateCheckIn)
}

func TestCheckInOutsideFence(t *testing.T) {
	h := newHarness(t)

	req := h.checkInRequest()
	req.Latitude = "0.01" // ~1.1 km north of center
	resp, err := h.service.CheckIn(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusOutOfBounds), resp.Status)
	assert.False(t, resp.IsWithinGeofence)
	assert.True(t, resp.IsVerified)
	require.NotNil(t, resp.DistanceToFence)
	assert.Greater(t, *resp.DistanceToFence, 1000)
	require.NotNil(t, resp.Notes)
	assert.Contains(t, *resp.Notes, "m from location center")
}

func TestCheckInTamperedToken(t *testing.T) {
	h := newHarness(t)

	req := h.checkInRequest()
	req.LocationToken = req.LocationToken[:len(req.LocationToken)-4] + "AAAA"
	_, err := h.service.CheckIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrTokenInvalid)
}

func TestCheckInTokenForOtherOrganization(t *testing.T) {
	h := newHarness(t)

	foreign, err := h.codec.SignLocation(token.LocationPayload{
		OrganizationID: "org-2",
		LocationID:     testLocation,
	})
	require.NoError(t, err)

	req := h.checkInRequest()
	req.LocationToken = foreign
	_, err = h.service.CheckIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrLocationNotAllowed)
}

func TestCheckInGeofenceStates(t *testing.T) {
	t.Run("unknown location", func(t *testing.T) {
		h := newHarness(t)
		unknown, err := h.codec.SignLocation(token.LocationPayload{
			OrganizationID: testOrg,
			LocationID:     "loc-missing",
		})
		require.NoError(t, err)

		req := h.checkInRequest()
		req.LocationToken = unknown
		_, err = h.service.CheckIn(context.Background(), req)
		assert.ErrorIs(t, err, attendance.ErrLocationNotAllowed)
	})

	t.Run("inactive geofence", func(t *testing.T) {
		h := newHarness(t)
		fence := h.fences.fences[testLocation]
		fence.Active = false
		h.fences.fences[testLocation] = fence

		_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
		assert.ErrorIs(t, err, attendance.ErrLocationNotAllowed)
	})

	t.Run("missing radius", func(t *testing.T) {
		h := newHarness(t)
		fence := h.fences.fences[testLocation]
		fence.RadiusMeters = nil
		h.fences.fences[testLocation] = fence

		_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
		assert.ErrorIs(t, err, attendance.ErrGeofenceMisconfigured)
	})
}

func TestCheckInIdentityDecisions(t *testing.T) {
	t.Run("below threshold", func(t *testing.T) {
		h := newHarness(t)
		h.verifier.claimed.Decision = face.DecisionBelowThreshold
		_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
		assert.ErrorIs(t, err, attendance.ErrBelowThreshold)
	})

	t.Run("no match", func(t *testing.T) {
		h := newHarness(t)
		h.verifier.claimed.Decision = face.DecisionNoMatch
		_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
		assert.ErrorIs(t, err, attendance.ErrIdentityMismatch)
	})

	t.Run("provider failure", func(t *testing.T) {
		h := newHarness(t)
		h.verifier.claimedErr = errors.New("face api: 503")
		_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
		assert.ErrorIs(t, err, attendance.ErrVerificationFailed)
	})
}

func TestCheckInRequiresMembership(t *testing.T) {
	h := newHarness(t)

	req := h.checkInRequest()
	req.UserID = "user-outsider"
	_, err := h.service.CheckIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrNotMember)
	assert.Empty(t, h.events.events)
}

func TestCheckInInvalidCoordinates(t *testing.T) {
	h := newHarness(t)

	req := h.checkInRequest()
	req.Latitude = "91.0"
	_, err := h.service.CheckIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrInvalidCoordinates)
}

func TestCheckInWithoutSchedule(t *testing.T) {
	h := newHarness(t)
	h.resolver.byUser = map[string]*schedule.ResolvedShift{}

	resp, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusOnTime), resp.Status)
	assert.Nil(t, resp.ShiftID)
	require.NotNil(t, resp.Notes)
	assert.Contains(t, *resp.Notes, "no shift scheduled")
}

func TestCheckInRecordsSpoofWithoutBlocking(t *testing.T) {
	h := newHarness(t)
	h.verifier.claimed.Liveness = face.LivenessResult{
		IsLive:    false,
		Score:     20,
		SpoofFlag: true,
		Reasons:   []string{"image too blurry for a live capture"},
	}

	resp, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	assert.True(t, resp.SpoofFlag)
	require.NotNil(t, resp.LivenessScore)
	assert.InDelta(t, 20.0, *resp.LivenessScore, 0.001)
	assert.Equal(t, string(attendance.StatusOnTime), resp.Status)
}

func TestCheckInDayFollowsOrganizationTimezone(t *testing.T) {
	h := newHarness(t)
	h.settings.settings.Timezone = "Asia/Jakarta"
	h.resolver.byUser = map[string]*schedule.ResolvedShift{}
	// 23:30 UTC Monday is already 06:30 Tuesday in Jakarta.
	h.setNow(time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC))

	resp, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", resp.Day)
}

// ========================================
// WATCH MODE
// ========================================

func TestWatchCheckInDiscoversWorker(t *testing.T) {
	h := newHarness(t)

	resp, err := h.service.WatchCheckIn(context.Background(), attendance.WatchCheckInRequest{
		OrganizationID: testOrg,
		LocationToken:  h.token,
		Latitude:       "0.0001",
		Longitude:      "0.0001",
		Image:          []byte("jpeg-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, testUser, resp.DiscoveredWorker)
	assert.Equal(t, testUser, resp.Event.UserID)
	assert.Equal(t, string(attendance.SourceWatchMode), resp.Event.Source)
	assert.Equal(t, string(attendance.StatusOnTime), resp.Event.Status)
}

func TestWatchCheckInNoMatchingIdentity(t *testing.T) {
	h := newHarness(t)
	h.verifier.identified.Decision = face.DecisionNoMatch

	_, err := h.service.WatchCheckIn(context.Background(), attendance.WatchCheckInRequest{
		OrganizationID: testOrg,
		LocationToken:  h.token,
		Latitude:       "0",
		Longitude:      "0",
		Image:          []byte("jpeg-bytes"),
	})
	assert.ErrorIs(t, err, attendance.ErrNoMatchingIdentity)
}

func TestWatchCheckInDiscoveredWorkerMustBeMember(t *testing.T) {
	h := newHarness(t)
	// The gallery recognized someone no longer in the organization.
	h.verifier.identified = matchedVerification("user-departed")

	_, err := h.service.WatchCheckIn(context.Background(), attendance.WatchCheckInRequest{
		OrganizationID: testOrg,
		LocationToken:  h.token,
		Latitude:       "0",
		Longitude:      "0",
		Image:          []byte("jpeg-bytes"),
	})
	assert.ErrorIs(t, err, attendance.ErrNotMember)
	assert.Empty(t, h.events.events)
}

// ========================================
// CHECK-OUT
// ========================================

func TestCheckOutClosesOpenEvent(t *testing.T) {
	h := newHarness(t)

	h.setNow(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	h.setNow(time.Date(2025, 6, 2, 17, 30, 0, 0, time.UTC))
	resp, err := h.service.CheckOut(context.Background(), attendance.CheckOutRequest{
		UserID:         testUser,
		OrganizationID: testOrg,
		Latitude:       "0.0002",
		Longitude:      "0.0002",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.CheckOut)
	assert.Equal(t, "2025-06-02T17:30:00Z", *resp.CheckOut)
	require.NotNil(t, resp.WorkedMinutes)
	assert.Equal(t, 510, *resp.WorkedMinutes)
}

func TestCheckOutWithoutOpenEvent(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.CheckOut(context.Background(), attendance.CheckOutRequest{
		UserID:         testUser,
		OrganizationID: testOrg,
		Latitude:       "0",
		Longitude:      "0",
	})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutTwice(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	out := attendance.CheckOutRequest{
		UserID:         testUser,
		OrganizationID: testOrg,
		Latitude:       "0",
		Longitude:      "0",
	}
	h.setNow(time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC))
	_, err = h.service.CheckOut(context.Background(), out)
	require.NoError(t, err)

	_, err = h.service.CheckOut(context.Background(), out)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

// ========================================
// ADMIN OVERRIDE
// ========================================

func TestOverrideStatus(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	resp, err := h.service.OverrideStatus(context.Background(), attendance.OverrideStatusRequest{
		ID:             created.ID,
		OrganizationID: testOrg,
		Status:         "late",
		Notes:          "traffic accident on the access road",
	})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), resp.Status)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "traffic accident on the access road", *resp.Notes)
	// Check-in time is untouched by the override.
	assert.Equal(t, created.CheckIn, resp.CheckIn)
}

func TestOverrideStatusRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.OverrideStatus(context.Background(), attendance.OverrideStatusRequest{
		ID:             "evt-1",
		OrganizationID: testOrg,
		Status:         "vacationing",
	})
	assert.Error(t, err)
}

func TestOverrideStatusEventNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.OverrideStatus(context.Background(), attendance.OverrideStatusRequest{
		ID:             "evt-missing",
		OrganizationID: testOrg,
		Status:         "absent",
	})
	assert.ErrorIs(t, err, attendance.ErrEventNotFound)
}

// ========================================
// ABSENCE SWEEP
// ========================================

func sweepShift(userID string) schedule.ResolvedShift {
	return schedule.ResolvedShift{
		Assignment: schedule.Assignment{UserID: userID, ShiftID: "shift-day", OrganizationID: testOrg},
		Shift: schedule.Shift{
			ID:         "shift-day",
			StartTime:  time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC),
			EndTime:    time.Date(2000, 1, 1, 17, 0, 0, 0, time.UTC),
			DaysOfWeek: []string{"monday"},
			Active:     true,
		},
	}
}

func TestSweepAbsencesMarksMissingWorkers(t *testing.T) {
	h := newHarness(t)
	h.resolver.byOrg = []schedule.ResolvedShift{sweepShift(testUser), sweepShift("user-2")}

	// user-1 checked in on time; user-2 never showed up.
	h.setNow(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	sweepAt := time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)
	created, err := h.service.SweepAbsences(context.Background(), testOrg, sweepAt)
	require.NoError(t, err)

	require.Len(t, created, 1)
	absent := created[0]
	assert.Equal(t, "user-2", absent.UserID)
	assert.Equal(t, string(attendance.StatusAbsent), absent.Status)
	assert.Equal(t, string(attendance.SourceSystem), absent.Source)
	assert.False(t, absent.IsVerified)
	assert.False(t, absent.IsWithinGeofence)
	assert.Equal(t, "2025-06-02", absent.Day)
	require.NotNil(t, absent.Notes)
	assert.Contains(t, *absent.Notes, "marked absent")
	// Terminal: the synthesized event is already closed.
	assert.NotNil(t, absent.CheckOut)
}

func TestSweepAbsencesIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.resolver.byOrg = []schedule.ResolvedShift{sweepShift("user-2")}

	sweepAt := time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC)
	first, err := h.service.SweepAbsences(context.Background(), testOrg, sweepAt)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := h.service.SweepAbsences(context.Background(), testOrg, sweepAt)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, h.events.events, 1)
}

func TestSweepAbsencesWaitsForGrace(t *testing.T) {
	h := newHarness(t)
	h.resolver.byOrg = []schedule.ResolvedShift{sweepShift("user-2")}

	// 09:03 with shift start 09:00 and grace 5: the deadline has not
	// passed yet, so nobody is marked.
	sweepAt := time.Date(2025, 6, 2, 9, 3, 0, 0, time.UTC)
	created, err := h.service.SweepAbsences(context.Background(), testOrg, sweepAt)
	require.NoError(t, err)
	assert.Empty(t, created)
}

// ========================================
// READS
// ========================================

func TestGetEventScopedToOrganization(t *testing.T) {
	h := newHarness(t)

	created, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	found, err := h.service.GetEvent(context.Background(), created.ID, testOrg)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = h.service.GetEvent(context.Background(), created.ID, "org-2")
	assert.ErrorIs(t, err, attendance.ErrEventNotFound)
}

func TestListEvents(t *testing.T) {
	h := newHarness(t)
	h.members.members[membershipKey("user-2", testOrg)] = organization.Membership{
		UserID: "user-2", OrganizationID: testOrg, Role: organization.RoleWorker, Active: true,
	}

	_, err := h.service.CheckIn(context.Background(), h.checkInRequest())
	require.NoError(t, err)

	req2 := h.checkInRequest()
	req2.UserID = "user-2"
	_, err = h.service.CheckIn(context.Background(), req2)
	require.NoError(t, err)

	all, err := h.service.ListEvents(context.Background(), attendance.EventFilter{}, testOrg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, 20, all.Limit)

	one, err := h.service.ListEvents(context.Background(), attendance.EventFilter{UserID: "user-2"}, testOrg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), one.TotalCount)
	require.Len(t, one.Events, 1)
	assert.Equal(t, "user-2", one.Events[0].UserID)
}
