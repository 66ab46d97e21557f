package http

import (
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
)

// CoursesHandler manages courses and rosters. Teachers may only touch
// courses they own; admins any.
type CoursesHandler struct {
	CourseService *service.CourseService
}

type createCourseRequest struct {
	Code      string `json:"code" validate:"required,max=32"`
	Title     string `json:"title" validate:"required,max=200"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Credits   int    `json:"credits" validate:"gte=1,lte=30"`
}

type updateCourseRequest struct {
	Code      string `json:"code" validate:"required,max=32"`
	Title     string `json:"title" validate:"required,max=200"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Credits   int    `json:"credits" validate:"gte=1,lte=30"`
}

type enrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// requireCourseOwnership lets admins through and checks that a teacher-role
// caller actually teaches the course. Shared with the grade and attendance
// handlers, which gate on the same ownership rule.
func requireCourseOwnership(w http.ResponseWriter, r *http.Request, svc *service.CourseService, courseID string) bool {
	ctx := r.Context()

	if httpx.RoleFromContext(ctx) == domain.RoleAdmin.String() {
		return true
	}

	teaches, err := svc.TeachesCourse(ctx, httpx.UserIDFromContext(ctx), courseID)
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}
	if !teaches {
		edusdk.ErrInsufficientRole.WriteError(w)
		return false
	}
	return true
}

// HandleList handles GET /v1/courses
//
//	@Summary		List courses
//	@Tags			Courses
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	edusdk.Course	"All courses"
//	@Router			/v1/courses [get].
func (h *CoursesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	courses, err := h.CourseService.ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Course, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /v1/courses
//
//	@Summary		Create a course
//	@Description	Teachers may only create courses assigned to themselves; admins may assign any teacher.
//	@Tags			Courses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createCourseRequest		true	"New course"
//	@Success		201		{object}	edusdk.Course			"Created course"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Course code taken"
//	@Router			/v1/courses [post].
func (h *CoursesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCourseRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if httpx.RoleFromContext(ctx) == domain.RoleTeacher.String() &&
		req.TeacherID != httpx.UserIDFromContext(ctx) {
		edusdk.ErrInsufficientRole.WriteError(w)
		return
	}

	course, err := h.CourseService.CreateCourse(ctx, req.Code, req.Title, req.TeacherID, req.Credits)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toCourse(course))
}

// HandleGet handles GET /v1/courses/{id}
//
//	@Summary		Fetch a course
//	@Tags			Courses
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string					true	"Course ID"
//	@Success		200	{object}	edusdk.Course			"Course"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown course"
//	@Router			/v1/courses/{id} [get].
func (h *CoursesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	course, err := h.CourseService.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCourse(course))
}

// HandleUpdate handles PATCH /v1/courses/{id}
//
//	@Summary		Update a course
//	@Tags			Courses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Course ID"
//	@Param			request	body		updateCourseRequest		true	"New course details"
//	@Success		200		{object}	edusdk.Course			"Updated course"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown course"
//	@Router			/v1/courses/{id} [patch].
func (h *CoursesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if !requireCourseOwnership(w, r, h.CourseService, courseID) {
		return
	}

	var req updateCourseRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	course, err := h.CourseService.UpdateCourse(r.Context(), domain.Course{
		ID:        courseID,
		Code:      req.Code,
		Title:     req.Title,
		TeacherID: req.TeacherID,
		Credits:   req.Credits,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCourse(course))
}

// HandleDelete handles DELETE /v1/courses/{id}
//
//	@Summary		Delete a course
//	@Tags			Courses
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Course ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown course"
//	@Router			/v1/courses/{id} [delete].
func (h *CoursesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.CourseService.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEnroll handles POST /v1/courses/{id}/enrollments
//
//	@Summary		Enroll a student
//	@Tags			Courses
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Course ID"
//	@Param			request	body		enrollRequest			true	"Student to enroll"
//	@Success		201		{object}	edusdk.Enrollment		"Enrollment"
//	@Failure		409		{object}	edusdk.ErrorResponse	"Already enrolled"
//	@Router			/v1/courses/{id}/enrollments [post].
func (h *CoursesHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if !requireCourseOwnership(w, r, h.CourseService, courseID) {
		return
	}

	var req enrollRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	enrollment, err := h.CourseService.Enroll(r.Context(), courseID, req.StudentID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEnrollment(enrollment))
}

// HandleRoster handles GET /v1/courses/{id}/enrollments
//
//	@Summary		List a course roster
//	@Tags			Courses
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Course ID"
//	@Success		200	{array}	edusdk.Enrollment	"Roster"
//	@Router			/v1/courses/{id}/enrollments [get].
func (h *CoursesHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if !requireCourseOwnership(w, r, h.CourseService, courseID) {
		return
	}

	roster, err := h.CourseService.ListRoster(r.Context(), courseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Enrollment, 0, len(roster))
	for _, e := range roster {
		out = append(out, toEnrollment(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUnenroll handles DELETE /v1/courses/{id}/enrollments/{studentID}
//
//	@Summary		Remove a student from a course
//	@Tags			Courses
//	@Security		BearerAuth
//	@Param			id			path	string	true	"Course ID"
//	@Param			studentID	path	string	true	"Student ID"
//	@Success		204			"Removed"
//	@Failure		404			{object}	edusdk.ErrorResponse	"Not enrolled"
//	@Router			/v1/courses/{id}/enrollments/{studentID} [delete].
func (h *CoursesHandler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if !requireCourseOwnership(w, r, h.CourseService, courseID) {
		return
	}

	if err := h.CourseService.Unenroll(r.Context(), courseID, r.PathValue("studentID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
