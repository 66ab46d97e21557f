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
	ErrAttendanceNotFound = errors.New("attendance_not_found")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrDuplicateRecord    = errors.New("duplicate_record")
)

// AttendanceService records per-day attendance. One record per student,
// course and day.
type AttendanceService struct {
	Store store.Store
}

func (s *AttendanceService) RecordAttendance(
	ctx context.Context,
	studentID, courseID string,
	date time.Time,
	status domain.AttendanceStatus,
	recordedBy string,
) (domain.AttendanceRecord, error) {
	if !domain.ValidAttendanceStatus(status) {
		return domain.AttendanceRecord{}, ErrInvalidStatus
	}
	if _, err := s.Store.Students().GetStudentByID(ctx, studentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AttendanceRecord{}, ErrStudentNotFound
		}
		return domain.AttendanceRecord{}, err
	}
	if _, err := s.Store.Courses().GetCourseByID(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AttendanceRecord{}, ErrCourseNotFound
		}
		return domain.AttendanceRecord{}, err
	}

	rec := domain.AttendanceRecord{
		ID:         idx.New().String(),
		StudentID:  studentID,
		CourseID:   courseID,
		Date:       truncateToDay(date),
		Status:     status,
		RecordedBy: recordedBy,
	}
	if err := s.Store.Attendance().CreateAttendanceRecord(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.AttendanceRecord{}, ErrDuplicateRecord
		}
		return domain.AttendanceRecord{}, err
	}
	return s.Store.Attendance().GetAttendanceByID(ctx, rec.ID)
}

func (s *AttendanceService) GetRecord(ctx context.Context, id string) (domain.AttendanceRecord, error) {
	rec, err := s.Store.Attendance().GetAttendanceByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AttendanceRecord{}, ErrAttendanceNotFound
	}
	return rec, err
}

func (s *AttendanceService) ListByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error) {
	return s.Store.Attendance().ListAttendanceByStudent(ctx, studentID)
}

func (s *AttendanceService) ListByCourse(ctx context.Context, courseID string, date time.Time) ([]domain.AttendanceRecord, error) {
	return s.Store.Attendance().ListAttendanceByCourse(ctx, courseID, truncateToDay(date))
}

// UpdateStatus corrects an existing record, e.g. absent to excused.
func (s *AttendanceService) UpdateStatus(ctx context.Context, id string, status domain.AttendanceStatus) (domain.AttendanceRecord, error) {
	if !domain.ValidAttendanceStatus(status) {
		return domain.AttendanceRecord{}, ErrInvalidStatus
	}
	if err := s.Store.Attendance().UpdateAttendanceStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AttendanceRecord{}, ErrAttendanceNotFound
		}
		return domain.AttendanceRecord{}, err
	}
	return s.Store.Attendance().GetAttendanceByID(ctx, id)
}

func (s *AttendanceService) DeleteRecord(ctx context.Context, id string) error {
	err := s.Store.Attendance().DeleteAttendanceRecord(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAttendanceNotFound
	}
	return err
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
