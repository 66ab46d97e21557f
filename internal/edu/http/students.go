package http

import (
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
)

// StudentsHandler manages student records and their per-student read views
// (grades, attendance, predictions). Callers with the student role may only
// reach their own record.
type StudentsHandler struct {
	StudentService    *service.StudentService
	GradeService      *service.GradeService
	AttendanceService *service.AttendanceService
	AnalyticsService  *service.AnalyticsService
}

type createStudentRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	StudentNumber string `json:"student_number" validate:"required,max=32"`
	Program       string `json:"program" validate:"required,max=200"`
	YearLevel     int    `json:"year_level" validate:"gte=1,lte=10"`
}

type updateStudentRequest struct {
	Program   string `json:"program" validate:"required,max=200"`
	YearLevel int    `json:"year_level" validate:"gte=1,lte=10"`
}

// requireSelfOrStaff enforces the ownership rule on per-student reads: a
// student-role caller must be asking about their own record, every other
// role that reached this handler passed the route's role gate already.
func (h *StudentsHandler) requireSelfOrStaff(w http.ResponseWriter, r *http.Request, studentID string) bool {
	ctx := r.Context()

	if httpx.RoleFromContext(ctx) != domain.RoleStudent.String() {
		return true
	}

	own, err := h.StudentService.GetStudentByUserID(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}
	if own.ID != studentID {
		edusdk.ErrInsufficientRole.WriteError(w)
		return false
	}
	return true
}

// HandleList handles GET /v1/students
//
//	@Summary		List student records
//	@Tags			Students
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	edusdk.Student	"All students"
//	@Router			/v1/students [get].
func (h *StudentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.StudentService.ListStudents(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Student, 0, len(students))
	for _, s := range students {
		out = append(out, toStudent(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /v1/students
//
//	@Summary		Create a student record
//	@Description	Attaches an academic record to an existing account with the student role.
//	@Tags			Students
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createStudentRequest	true	"New record"
//	@Success		201		{object}	edusdk.Student			"Created record"
//	@Failure		400		{object}	edusdk.ErrorResponse	"User is not a student"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Record exists or number taken"
//	@Router			/v1/students [post].
func (h *StudentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	student, err := h.StudentService.CreateStudent(r.Context(), req.UserID, req.StudentNumber, req.Program, req.YearLevel)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toStudent(student))
}

// HandleGet handles GET /v1/students/{id}
//
//	@Summary		Fetch a student record
//	@Tags			Students
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"Student ID"
//	@Success		200	{object}	edusdk.Student			"Record"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown student"
//	@Router			/v1/students/{id} [get].
func (h *StudentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if !h.requireSelfOrStaff(w, r, studentID) {
		return
	}

	student, err := h.StudentService.GetStudent(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toStudent(student))
}

// HandleUpdate handles PATCH /v1/students/{id}
//
//	@Summary		Update a student record
//	@Tags			Students
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Student ID"
//	@Param			request	body		updateStudentRequest	true	"New program and year level"
//	@Success		200		{object}	edusdk.Student			"Updated record"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown student"
//	@Router			/v1/students/{id} [patch].
func (h *StudentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	student, err := h.StudentService.UpdateStudent(r.Context(), r.PathValue("id"), req.Program, req.YearLevel)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toStudent(student))
}

// HandleDelete handles DELETE /v1/students/{id}
//
//	@Summary		Delete a student record
//	@Tags			Students
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Student ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown student"
//	@Router			/v1/students/{id} [delete].
func (h *StudentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.StudentService.DeleteStudent(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListGrades handles GET /v1/students/{id}/grades
//
//	@Summary		List a student's grades
//	@Description	Students may only read their own grades; teachers and admins any.
//	@Tags			Students
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Student ID"
//	@Success		200	{array}	edusdk.Grade	"Grades, newest first"
//	@Router			/v1/students/{id}/grades [get].
func (h *StudentsHandler) HandleListGrades(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if !h.requireSelfOrStaff(w, r, studentID) {
		return
	}

	grades, err := h.GradeService.ListGradesByStudent(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Grade, 0, len(grades))
	for _, g := range grades {
		out = append(out, toGrade(g))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleListAttendance handles GET /v1/students/{id}/attendance
//
//	@Summary		List a student's attendance
//	@Description	Students may only read their own records; teachers and admins any.
//	@Tags			Students
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Student ID"
//	@Success		200	{array}	edusdk.AttendanceRecord	"Records, newest first"
//	@Router			/v1/students/{id}/attendance [get].
func (h *StudentsHandler) HandleListAttendance(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if !h.requireSelfOrStaff(w, r, studentID) {
		return
	}

	records, err := h.AttendanceService.ListByStudent(r.Context(), studentID)
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

// HandleListPredictions handles GET /v1/students/{id}/predictions
//
//	@Summary		List a student's model scores
//	@Description	Students may only read their own scores; teachers, analysts and admins any.
//	@Tags			Students
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Student ID"
//	@Success		200	{array}	edusdk.Prediction	"Scores, newest first"
//	@Router			/v1/students/{id}/predictions [get].
func (h *StudentsHandler) HandleListPredictions(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if !h.requireSelfOrStaff(w, r, studentID) {
		return
	}

	predictions, err := h.AnalyticsService.ListByStudent(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Prediction, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, toPrediction(p))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}
