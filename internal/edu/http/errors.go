package http

import (
	"errors"
	"net/http"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/slogx"
)

// writeServiceError maps service-layer sentinel errors onto the wire
// envelope. Anything unrecognised is logged and reported as a 500 so
// internals never leak into responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var mfa *service.MFARequiredError
	if errors.As(err, &mfa) {
		mfa.WriteError(w)
		return
	}

	if apiErr := mapServiceError(err); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
	edusdk.NewAPIError(http.StatusInternalServerError,
		edusdk.ErrorCodeServerError, "internal server error").WriteError(w)
}

func mapServiceError(err error) *edusdk.APIError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return edusdk.NewAPIError(http.StatusUnauthorized,
			edusdk.ErrorCodeInvalidCredentials, "invalid email or password")
	case errors.Is(err, service.ErrAccountDisabled):
		return edusdk.NewAPIError(http.StatusForbidden,
			edusdk.ErrorCodeAccountDisabled, "this account has been disabled")
	case errors.Is(err, service.ErrInvalidRefresh):
		return edusdk.NewAPIError(http.StatusUnauthorized,
			edusdk.ErrorCodeInvalidRefresh, "refresh token is invalid, expired or revoked")
	case errors.Is(err, service.ErrInvalidGrant),
		errors.Is(err, service.ErrInvalidMFACode):
		return edusdk.NewAPIError(http.StatusUnauthorized,
			edusdk.ErrorCodeInvalidGrant, "the provided grant or code was rejected")
	case errors.Is(err, service.ErrTooManyAttempts):
		return edusdk.NewAPIError(http.StatusTooManyRequests,
			edusdk.ErrorCodeTooManyAttempts, "too many failed attempts")

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrStudentRecordMissing),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrGradeNotFound),
		errors.Is(err, service.ErrAttendanceNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrNotYourNotification):
		// not-yours is reported as not-found so existence doesn't leak
		return edusdk.NewAPIError(http.StatusNotFound,
			edusdk.ErrorCodeNotFound, "the requested resource does not exist")

	case errors.Is(err, service.ErrEmailTaken):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "email is already registered")
	case errors.Is(err, service.ErrStudentNumberTaken):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "student number is already in use")
	case errors.Is(err, service.ErrStudentRecordExists):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "user already has a student record")
	case errors.Is(err, service.ErrCourseCodeTaken):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "course code is already in use")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "student is already enrolled in this course")
	case errors.Is(err, service.ErrDuplicateRecord):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "attendance already recorded for this student, course and day")
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		return edusdk.NewAPIError(http.StatusConflict,
			edusdk.ErrorCodeConflict, "multi-factor authentication is already enabled")

	case errors.Is(err, service.ErrRoleNotPermitted):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "the requested role is not permitted here")
	case errors.Is(err, service.ErrUserNotStudent):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "user does not have the student role")
	case errors.Is(err, service.ErrUserNotTeacher):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "user does not have the teacher role")
	case errors.Is(err, service.ErrInvalidScore):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "score must be between 0 and max_score")
	case errors.Is(err, service.ErrInvalidStatus):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "unknown attendance status")
	case errors.Is(err, service.ErrNotEnrolled):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "student is not enrolled in this course")
	case errors.Is(err, service.ErrInvalidPrediction):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "prediction batch contains invalid rows")
	case errors.Is(err, service.ErrMFANotEnrolled):
		return edusdk.NewAPIError(http.StatusBadRequest,
			edusdk.ErrorCodeInvalidRequest, "multi-factor authentication is not enrolled")
	}
	return nil
}

func toProfile(u domain.User) edusdk.UserProfile {
	return edusdk.UserProfile{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role.String(),
		IsActive:   u.IsActive,
		MFAEnabled: u.MFAEnabled != nil,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}

func toStudent(s domain.Student) edusdk.Student {
	return edusdk.Student{
		ID:            s.ID,
		UserID:        s.UserID,
		StudentNumber: s.StudentNumber,
		Program:       s.Program,
		YearLevel:     s.YearLevel,
		CreatedAt:     s.CreatedAt,
	}
}

func toCourse(c domain.Course) edusdk.Course {
	return edusdk.Course{
		ID:        c.ID,
		Code:      c.Code,
		Title:     c.Title,
		TeacherID: c.TeacherID,
		Credits:   c.Credits,
		CreatedAt: c.CreatedAt,
	}
}

func toEnrollment(e domain.Enrollment) edusdk.Enrollment {
	return edusdk.Enrollment{
		ID:         e.ID,
		CourseID:   e.CourseID,
		StudentID:  e.StudentID,
		EnrolledAt: e.EnrolledAt,
	}
}

func toGrade(g domain.Grade) edusdk.Grade {
	return edusdk.Grade{
		ID:         g.ID,
		StudentID:  g.StudentID,
		CourseID:   g.CourseID,
		Assessment: g.Assessment,
		Score:      g.Score,
		MaxScore:   g.MaxScore,
		GradedBy:   g.GradedBy,
		GradedAt:   g.GradedAt,
	}
}

func toAttendance(a domain.AttendanceRecord) edusdk.AttendanceRecord {
	return edusdk.AttendanceRecord{
		ID:         a.ID,
		StudentID:  a.StudentID,
		CourseID:   a.CourseID,
		Date:       a.Date,
		Status:     string(a.Status),
		RecordedBy: a.RecordedBy,
	}
}

func toNotification(n domain.Notification) edusdk.Notification {
	return edusdk.Notification{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func toPrediction(p domain.Prediction) edusdk.Prediction {
	return edusdk.Prediction{
		ID:         p.ID,
		StudentID:  p.StudentID,
		CourseID:   p.CourseID,
		Kind:       string(p.Kind),
		Score:      p.Score,
		Confidence: p.Confidence,
		ComputedAt: p.ComputedAt,
	}
}
