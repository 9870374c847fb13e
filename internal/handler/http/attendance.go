package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Yamilyscapa/skyhr-sub000/internal/domain/attendance"
	"github.com/Yamilyscapa/skyhr-sub000/internal/handler/http/middleware"
	"github.com/Yamilyscapa/skyhr-sub000/internal/handler/http/response"
	"github.com/Yamilyscapa/skyhr-sub000/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	WatchCheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	OverrideStatus(w http.ResponseWriter, r *http.Request)
	Sweep(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
}

func NewAttendanceHandler(attendanceService attendance.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// readCapture parses the multipart form (max 10MB): JSON fields from
// 'data', the face capture from 'photo'.
func readCapture(w http.ResponseWriter, r *http.Request, dst interface{}) ([]byte, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return nil, false
	}

	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return nil, false
	}
	if err := json.Unmarshal([]byte(dataJSON), dst); err != nil {
		slog.Error("Failed to unmarshal JSON data", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return nil, false
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Face capture photo is required", nil)
			return nil, false
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded photo", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return nil, false
	}
	return image, true
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest

	image, ok := readCapture(w, r, &req)
	if !ok {
		return
	}
	req.Image = image

	// Identity comes from the token, never the body.
	req.UserID = middleware.UserID(r.Context())
	req.OrganizationID = middleware.OrganizationID(r.Context())

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in recorded", result)
}

// WatchCheckIn implements AttendanceHandler. The operator's session
// supplies the organization; the worker is discovered from the capture.
func (h *attendanceHandlerImpl) WatchCheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.WatchCheckInRequest

	image, ok := readCapture(w, r, &req)
	if !ok {
		return
	}
	req.Image = image
	req.OrganizationID = middleware.OrganizationID(r.Context())

	result, err := h.attendanceService.WatchCheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in recorded", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.UserID = middleware.UserID(r.Context())
	req.OrganizationID = middleware.OrganizationID(r.Context())

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// OverrideStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	if !validator.IsValidUUID(req.ID) {
		response.BadRequest(w, "Event id must be a UUID", nil)
		return
	}
	req.OrganizationID = middleware.OrganizationID(r.Context())

	result, err := h.attendanceService.OverrideStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Sweep implements AttendanceHandler. Admin trigger for the absence
// sweep, same path the scheduler takes.
func (h *attendanceHandlerImpl) Sweep(w http.ResponseWriter, r *http.Request) {
	organizationID := middleware.OrganizationID(r.Context())

	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, ok := validator.IsValidDateTime(raw)
		if !ok {
			response.BadRequest(w, "Query parameter 'at' must be RFC3339", nil)
			return
		}
		at = parsed
	}

	created, err := h.attendanceService.SweepAbsences(r.Context(), organizationID, at)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"marked_absent": len(created),
		"events":        created,
	})
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Event id must be a UUID", nil)
		return
	}
	organizationID := middleware.OrganizationID(r.Context())

	result, err := h.attendanceService.GetEvent(r.Context(), id, organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if day := query.Get("day"); day != "" {
		if _, ok := validator.IsValidDate(day); !ok {
			response.BadRequest(w, "Query parameter 'day' must be YYYY-MM-DD", nil)
			return
		}
	}
	filter := attendance.EventFilter{
		UserID: query.Get("user_id"),
		Day:    query.Get("day"),
	}
	filter.Page = queryInt(query.Get("page"), 1)
	filter.Limit = queryInt(query.Get("limit"), 20)

	organizationID := middleware.OrganizationID(r.Context())

	results, err := h.attendanceService.ListEvents(r.Context(), filter, organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((results.TotalCount + int64(results.Limit) - 1) / int64(results.Limit))
	response.SuccessWithMeta(w, results.Events, &response.Meta{
		Page:       results.Page,
		Limit:      results.Limit,
		TotalItems: results.TotalCount,
		TotalPages: totalPages,
	})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
