package service

import (
	"context"
	"errors"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/idx"
)

var (
	ErrGradeNotFound = errors.New("grade_not_found")
	ErrInvalidScore  = errors.New("invalid_score")
	ErrNotEnrolled   = errors.New("not_enrolled")
)

// GradeService records assessment results for enrolled students.
type GradeService struct {
	Store store.Store
}

func (s *GradeService) CreateGrade(
	ctx context.Context,
	studentID, courseID, assessment string,
	score, maxScore float64,
	gradedBy string,
) (domain.Grade, error) {
	if maxScore <= 0 || score < 0 || score > maxScore {
		return domain.Grade{}, ErrInvalidScore
	}

	enrollments, err := s.Store.Courses().ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return domain.Grade{}, err
	}
	enrolled := false
	for _, e := range enrollments {
		if e.CourseID == courseID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return domain.Grade{}, ErrNotEnrolled
	}

	grade := domain.Grade{
		ID:         idx.New().String(),
		StudentID:  studentID,
		CourseID:   courseID,
		Assessment: assessment,
		Score:      score,
		MaxScore:   maxScore,
		GradedBy:   gradedBy,
		GradedAt:   time.Now(),
	}
	if err := s.Store.Grades().CreateGrade(ctx, grade); err != nil {
		return domain.Grade{}, err
	}
	return s.Store.Grades().GetGradeByID(ctx, grade.ID)
}

func (s *GradeService) GetGrade(ctx context.Context, id string) (domain.Grade, error) {
	grade, err := s.Store.Grades().GetGradeByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Grade{}, ErrGradeNotFound
	}
	return grade, err
}

func (s *GradeService) ListGradesByStudent(ctx context.Context, studentID string) ([]domain.Grade, error) {
	return s.Store.Grades().ListGradesByStudent(ctx, studentID)
}

func (s *GradeService) ListGradesByCourse(ctx context.Context, courseID string) ([]domain.Grade, error) {
	return s.Store.Grades().ListGradesByCourse(ctx, courseID)
}

func (s *GradeService) UpdateGrade(ctx context.Context, id, assessment string, score, maxScore float64, gradedBy string) (domain.Grade, error) {
	if maxScore <= 0 || score < 0 || score > maxScore {
		return domain.Grade{}, ErrInvalidScore
	}

	grade := domain.Grade{
		ID:         id,
		Assessment: assessment,
		Score:      score,
		MaxScore:   maxScore,
		GradedBy:   gradedBy,
		GradedAt:   time.Now(),
	}
	if err := s.Store.Grades().UpdateGrade(ctx, grade); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Grade{}, ErrGradeNotFound
		}
		return domain.Grade{}, err
	}
	return s.Store.Grades().GetGradeByID(ctx, id)
}

func (s *GradeService) DeleteGrade(ctx context.Context, id string) error {
	err := s.Store.Grades().DeleteGrade(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrGradeNotFound
	}
	return err
}
