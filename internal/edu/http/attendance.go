package http

import (
	"net/http"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
)

const dateLayout = "2006-01-02"

// AttendanceHandler records per-day attendance. Gated to the course's
// teacher or an admin.
type AttendanceHandler struct {
	AttendanceService *service.AttendanceService
	CourseService     *service.CourseService
}

type recordAttendanceRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
}

type updateAttendanceRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent late excused"`
}

// HandleRecord handles POST /v1/attendance
//
//	@Summary		Record attendance
//	@Description	Records one student's attendance for a course and day. One record per student, course and day.
//	@Tags			Attendance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recordAttendanceRequest	true	"Attendance"
//	@Success		201		{object}	edusdk.AttendanceRecord	"Created record"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Already recorded for that day"
//	@Router			/v1/attendance [post].
func (h *AttendanceHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordAttendanceRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if !requireCourseOwnership(w, r, h.CourseService, req.CourseID) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeValidation, "date: must be a date in the form 2006-01-02").WriteError(w)
		return
	}

	rec, err := h.AttendanceService.RecordAttendance(ctx,
		req.StudentID, req.CourseID, date,
		domain.AttendanceStatus(req.Status),
		httpx.UserIDFromContext(ctx),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAttendance(rec))
}

// HandleUpdateStatus handles PATCH /v1/attendance/{id}
//
//	@Summary		Correct an attendance record
//	@Description	Changes the status of an existing record, e.g. absent to excused.
//	@Tags			Attendance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Record ID"
//	@Param			request	body		updateAttendanceRequest	true	"New status"
//	@Success		200		{object}	edusdk.AttendanceRecord	"Updated record"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown record"
//	@Router			/v1/attendance/{id} [patch].
func (h *AttendanceHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID := r.PathValue("id")

	existing, err := h.AttendanceService.GetRecord(ctx, recordID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !requireCourseOwnership(w, r, h.CourseService, existing.CourseID) {
		return
	}

	var req updateAttendanceRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	rec, err := h.AttendanceService.UpdateStatus(ctx, recordID, domain.AttendanceStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAttendance(rec))
}

// HandleDelete handles DELETE /v1/attendance/{id}
//
//	@Summary		Delete an attendance record
//	@Tags			Attendance
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Record ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown record"
//	@Router			/v1/attendance/{id} [delete].
func (h *AttendanceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID := r.PathValue("id")

	existing, err := h.AttendanceService.GetRecord(ctx, recordID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !requireCourseOwnership(w, r, h.CourseService, existing.CourseID) {
		return
	}

	if err := h.AttendanceService.DeleteRecord(ctx, recordID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByCourse handles GET /v1/courses/{id}/attendance
//
//	@Summary		List a course's attendance for one day
//	@Tags			Attendance
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id		path	string	true	"Course ID"
//	@Param			date	query	string	true	"Day (YYYY-MM-DD)"
//	@Success		200		{array}	edusdk.AttendanceRecord	"Records"
//	@Router			/v1/courses/{id}/attendance [get].
func (h *AttendanceHandler) HandleListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if !requireCourseOwnership(w, r, h.CourseService, courseID) {
		return
	}

	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if err != nil {
		edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeValidation, "date: must be a date in the form 2006-01-02").WriteError(w)
		return
	}

	records, err := h.AttendanceService.ListByCourse(r.Context(), courseID, date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, toAttendance(rec))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}
