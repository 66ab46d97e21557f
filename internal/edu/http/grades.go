package http

import (
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
)

// GradesHandler records assessment results. Gated to the course's teacher
// or an admin.
type GradesHandler struct {
	GradeService  *service.GradeService
	CourseService *service.CourseService
}

type createGradeRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	CourseID   string  `json:"course_id" validate:"required"`
	Assessment string  `json:"assessment" validate:"required,max=200"`
	Score      float64 `json:"score" validate:"gte=0"`
	MaxScore   float64 `json:"max_score" validate:"gt=0"`
}

type updateGradeRequest struct {
	Assessment string  `json:"assessment" validate:"required,max=200"`
	Score      float64 `json:"score" validate:"gte=0"`
	MaxScore   float64 `json:"max_score" validate:"gt=0"`
}

// HandleCreate handles POST /v1/grades
//
//	@Summary		Record a grade
//	@Description	Records an assessment result for an enrolled student. Teachers may only grade courses they teach.
//	@Tags			Grades
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createGradeRequest		true	"Grade"
//	@Success		201		{object}	edusdk.Grade			"Created grade"
//	@Failure		400		{object}	edusdk.ErrorResponse	"Invalid score or student not enrolled"
//	@Router			/v1/grades [post].
func (h *GradesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createGradeRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	if !requireCourseOwnership(w, r, h.CourseService, req.CourseID) {
		return
	}

	grade, err := h.GradeService.CreateGrade(ctx,
		req.StudentID, req.CourseID, req.Assessment,
		req.Score, req.MaxScore,
		httpx.UserIDFromContext(ctx),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toGrade(grade))
}

// HandleUpdate handles PATCH /v1/grades/{id}
//
//	@Summary		Correct a grade
//	@Tags			Grades
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Grade ID"
//	@Param			request	body		updateGradeRequest		true	"Corrected grade"
//	@Success		200		{object}	edusdk.Grade			"Updated grade"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown grade"
//	@Router			/v1/grades/{id} [patch].
func (h *GradesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gradeID := r.PathValue("id")

	existing, err := h.GradeService.GetGrade(ctx, gradeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !requireCourseOwnership(w, r, h.CourseService, existing.CourseID) {
		return
	}

	var req updateGradeRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	grade, err := h.GradeService.UpdateGrade(ctx, gradeID,
		req.Assessment, req.Score, req.MaxScore,
		httpx.UserIDFromContext(ctx),
	)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGrade(grade))
}

// HandleDelete handles DELETE /v1/grades/{id}
//
//	@Summary		Delete a grade
//	@Tags			Grades
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Grade ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	edusdk.ErrorResponse	"Unknown grade"
//	@Router			/v1/grades/{id} [delete].
func (h *GradesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gradeID := r.PathValue("id")

	existing, err := h.GradeService.GetGrade(ctx, gradeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !requireCourseOwnership(w, r, h.CourseService, existing.CourseID) {
		return
	}

	if err := h.GradeService.DeleteGrade(ctx, gradeID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByCourse handles GET /v1/courses/{id}/grades
//
//	@Summary		List a course's grades
//	@Tags			Grades
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Course ID"
//	@Success		200	{array}	edusdk.Grade	"Grades, newest first"
//	@Router			/v1/courses/{id}/grades [get].
func (h *GradesHandler) HandleListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	if !requireCourseOwnership(w, r, h.CourseService, courseID) {
		return
	}

	grades, err := h.GradeService.ListGradesByCourse(r.Context(), courseID)
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
