package service

import (
	"context"
	"errors"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/idx"
)

var (
	ErrCourseNotFound     = errors.New("course_not_found")
	ErrCourseCodeTaken    = errors.New("course_code_taken")
	ErrUserNotTeacher     = errors.New("user_not_teacher")
	ErrAlreadyEnrolled    = errors.New("already_enrolled")
	ErrEnrollmentNotFound = errors.New("enrollment_not_found")
)

// CourseService manages courses and their rosters.
type CourseService struct {
	Store store.Store
}

func (s *CourseService) CreateCourse(ctx context.Context, code, title, teacherID string, credits int) (domain.Course, error) {
	teacher, err := s.Store.Users().GetUserByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Course{}, ErrUserNotFound
		}
		return domain.Course{}, err
	}
	if teacher.Role != domain.RoleTeacher {
		return domain.Course{}, ErrUserNotTeacher
	}

	course := domain.Course{
		ID:        idx.New().String(),
		Code:      code,
		Title:     title,
		TeacherID: teacherID,
		Credits:   credits,
	}

	if err := s.Store.Courses().CreateCourse(ctx, course); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Course{}, ErrCourseCodeTaken
		}
		return domain.Course{}, err
	}

	return s.Store.Courses().GetCourseByID(ctx, course.ID)
}

func (s *CourseService) GetCourse(ctx context.Context, id string) (domain.Course, error) {
	course, err := s.Store.Courses().GetCourseByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Course{}, ErrCourseNotFound
	}
	return course, err
}

func (s *CourseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.Store.Courses().ListCourses(ctx)
}

func (s *CourseService) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]domain.Course, error) {
	return s.Store.Courses().ListCoursesByTeacher(ctx, teacherID)
}

func (s *CourseService) UpdateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	if c.TeacherID != "" {
		teacher, err := s.Store.Users().GetUserByID(ctx, c.TeacherID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Course{}, ErrUserNotFound
			}
			return domain.Course{}, err
		}
		if teacher.Role != domain.RoleTeacher {
			return domain.Course{}, ErrUserNotTeacher
		}
	}

	if err := s.Store.Courses().UpdateCourse(ctx, c); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return domain.Course{}, ErrCourseNotFound
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Course{}, ErrCourseCodeTaken
		}
		return domain.Course{}, err
	}
	return s.Store.Courses().GetCourseByID(ctx, c.ID)
}

func (s *CourseService) DeleteCourse(ctx context.Context, id string) error {
	err := s.Store.Courses().DeleteCourse(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCourseNotFound
	}
	return err
}

// Enroll adds a student to a course roster.
func (s *CourseService) Enroll(ctx context.Context, courseID, studentID string) (domain.Enrollment, error) {
	if _, err := s.Store.Courses().GetCourseByID(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Enrollment{}, ErrCourseNotFound
		}
		return domain.Enrollment{}, err
	}
	if _, err := s.Store.Students().GetStudentByID(ctx, studentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Enrollment{}, ErrStudentNotFound
		}
		return domain.Enrollment{}, err
	}

	enrollment := domain.Enrollment{
		ID:        idx.New().String(),
		CourseID:  courseID,
		StudentID: studentID,
	}
	if err := s.Store.Courses().CreateEnrollment(ctx, enrollment); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Enrollment{}, ErrAlreadyEnrolled
		}
		return domain.Enrollment{}, err
	}
	return enrollment, nil
}

// Unenroll removes a student from a course roster.
func (s *CourseService) Unenroll(ctx context.Context, courseID, studentID string) error {
	err := s.Store.Courses().DeleteEnrollment(ctx, courseID, studentID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEnrollmentNotFound
	}
	return err
}

func (s *CourseService) ListRoster(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	if _, err := s.Store.Courses().GetCourseByID(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return s.Store.Courses().ListEnrollmentsByCourse(ctx, courseID)
}

func (s *CourseService) ListStudentEnrollments(ctx context.Context, studentID string) ([]domain.Enrollment, error) {
	return s.Store.Courses().ListEnrollmentsByStudent(ctx, studentID)
}

// TeachesCourse reports whether the given user is the course's teacher.
// Used by the HTTP layer for ownership checks on rosters and grading.
func (s *CourseService) TeachesCourse(ctx context.Context, userID, courseID string) (bool, error) {
	course, err := s.Store.Courses().GetCourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrCourseNotFound
		}
		return false, err
	}
	return course.TeacherID == userID, nil
}
