package service

import (
	"context"
	"errors"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/idx"
)

var (
	ErrStudentNotFound      = errors.New("student_not_found")
	ErrStudentNumberTaken   = errors.New("student_number_taken")
	ErrStudentRecordExists  = errors.New("student_record_exists")
	ErrUserNotStudent       = errors.New("user_not_student")
	ErrStudentRecordMissing = errors.New("student_record_missing")
)

// StudentService manages the academic records behind users with the student
// role.
type StudentService struct {
	Store store.Store
}

// CreateStudent attaches an academic record to an existing student-role user.
func (s *StudentService) CreateStudent(ctx context.Context, userID, studentNumber, program string, yearLevel int) (domain.Student, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Student{}, ErrUserNotFound
		}
		return domain.Student{}, err
	}
	if user.Role != domain.RoleStudent {
		return domain.Student{}, ErrUserNotStudent
	}

	student := domain.Student{
		ID:            idx.New().String(),
		UserID:        userID,
		StudentNumber: studentNumber,
		Program:       program,
		YearLevel:     yearLevel,
	}

	if err := s.Store.Students().CreateStudent(ctx, student); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// either the user already has a record or the number is taken;
			// disambiguate for the caller
			if _, err := s.Store.Students().GetStudentByUserID(ctx, userID); err == nil {
				return domain.Student{}, ErrStudentRecordExists
			}
			return domain.Student{}, ErrStudentNumberTaken
		}
		return domain.Student{}, err
	}

	return s.Store.Students().GetStudentByID(ctx, student.ID)
}

func (s *StudentService) GetStudent(ctx context.Context, id string) (domain.Student, error) {
	student, err := s.Store.Students().GetStudentByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Student{}, ErrStudentNotFound
	}
	return student, err
}

// GetStudentByUserID resolves the student record for an authenticated user,
// used when a student-role caller asks about "me".
func (s *StudentService) GetStudentByUserID(ctx context.Context, userID string) (domain.Student, error) {
	student, err := s.Store.Students().GetStudentByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Student{}, ErrStudentRecordMissing
	}
	return student, err
}

func (s *StudentService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return s.Store.Students().ListStudents(ctx)
}

func (s *StudentService) UpdateStudent(ctx context.Context, id, program string, yearLevel int) (domain.Student, error) {
	student := domain.Student{ID: id, Program: program, YearLevel: yearLevel}
	if err := s.Store.Students().UpdateStudent(ctx, student); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Student{}, ErrStudentNotFound
		}
		return domain.Student{}, err
	}
	return s.Store.Students().GetStudentByID(ctx, id)
}

func (s *StudentService) DeleteStudent(ctx context.Context, id string) error {
	err := s.Store.Students().DeleteStudent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrStudentNotFound
	}
	return err
}
