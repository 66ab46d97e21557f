package service

import (
	"context"
	"testing"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/stretchr/testify/require"
)

type academicFixture struct {
	st         store.Store
	students   *StudentService
	courses    *CourseService
	grades     *GradeService
	attendance *AttendanceService

	teacher domain.User
	student domain.Student
	course  domain.Course
}

func newAcademicFixture(t *testing.T) *academicFixture {
	t.Helper()
	ctx := context.Background()

	st := newTestStore(t)
	f := &academicFixture{
		st:         st,
		students:   &StudentService{Store: st},
		courses:    &CourseService{Store: st},
		grades:     &GradeService{Store: st},
		attendance: &AttendanceService{Store: st},
	}

	f.teacher = seedUser(t, st, "teacher@uni.edu", "password123!", domain.RoleTeacher, true)
	studentUser := seedUser(t, st, "student@uni.edu", "password123!", domain.RoleStudent, true)

	student, err := f.students.CreateStudent(ctx, studentUser.ID, "S-1001", "Computer Science", 2)
	require.NoError(t, err)
	f.student = student

	course, err := f.courses.CreateCourse(ctx, "CS201", "Data Structures", f.teacher.ID, 6)
	require.NoError(t, err)
	f.course = course

	return f
}

func TestStudentRecords(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)

	t.Run("record requires the student role", func(t *testing.T) {
		_, err := f.students.CreateStudent(ctx, f.teacher.ID, "S-9999", "Physics", 1)
		require.ErrorIs(t, err, ErrUserNotStudent)
	})

	t.Run("one record per user", func(t *testing.T) {
		_, err := f.students.CreateStudent(ctx, f.student.UserID, "S-2002", "Physics", 1)
		require.ErrorIs(t, err, ErrStudentRecordExists)
	})

	t.Run("student numbers are unique", func(t *testing.T) {
		other := seedUser(t, f.st, "other@uni.edu", "password123!", domain.RoleStudent, true)
		_, err := f.students.CreateStudent(ctx, other.ID, "S-1001", "Physics", 1)
		require.ErrorIs(t, err, ErrStudentNumberTaken)
	})

	t.Run("lookup by user id", func(t *testing.T) {
		found, err := f.students.GetStudentByUserID(ctx, f.student.UserID)
		require.NoError(t, err)
		require.Equal(t, f.student.ID, found.ID)

		_, err = f.students.GetStudentByUserID(ctx, f.teacher.ID)
		require.ErrorIs(t, err, ErrStudentRecordMissing)
	})

	t.Run("update changes program and year", func(t *testing.T) {
		updated, err := f.students.UpdateStudent(ctx, f.student.ID, "Software Engineering", 3)
		require.NoError(t, err)
		require.Equal(t, "Software Engineering", updated.Program)
		require.Equal(t, 3, updated.YearLevel)
		require.Equal(t, "S-1001", updated.StudentNumber)
	})
}

func TestCoursesAndEnrollments(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)

	t.Run("course teacher must have the teacher role", func(t *testing.T) {
		_, err := f.courses.CreateCourse(ctx, "CS999", "Bogus", f.student.UserID, 6)
		require.ErrorIs(t, err, ErrUserNotTeacher)
	})

	t.Run("course codes are unique", func(t *testing.T) {
		_, err := f.courses.CreateCourse(ctx, "CS201", "Duplicate", f.teacher.ID, 6)
		require.ErrorIs(t, err, ErrCourseCodeTaken)
	})

	t.Run("enroll and list roster", func(t *testing.T) {
		enrollment, err := f.courses.Enroll(ctx, f.course.ID, f.student.ID)
		require.NoError(t, err)
		require.Equal(t, f.course.ID, enrollment.CourseID)

		roster, err := f.courses.ListRoster(ctx, f.course.ID)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		require.Equal(t, f.student.ID, roster[0].StudentID)
	})

	t.Run("double enrollment refused", func(t *testing.T) {
		_, err := f.courses.Enroll(ctx, f.course.ID, f.student.ID)
		require.ErrorIs(t, err, ErrAlreadyEnrolled)
	})

	t.Run("ownership check", func(t *testing.T) {
		teaches, err := f.courses.TeachesCourse(ctx, f.teacher.ID, f.course.ID)
		require.NoError(t, err)
		require.True(t, teaches)

		teaches, err = f.courses.TeachesCourse(ctx, f.student.UserID, f.course.ID)
		require.NoError(t, err)
		require.False(t, teaches)
	})

	t.Run("unenroll", func(t *testing.T) {
		require.NoError(t, f.courses.Unenroll(ctx, f.course.ID, f.student.ID))
		require.ErrorIs(t, f.courses.Unenroll(ctx, f.course.ID, f.student.ID), ErrEnrollmentNotFound)
	})
}

func TestGrades(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)

	_, err := f.courses.Enroll(ctx, f.course.ID, f.student.ID)
	require.NoError(t, err)

	t.Run("score must fit the scale", func(t *testing.T) {
		_, err := f.grades.CreateGrade(ctx, f.student.ID, f.course.ID, "Quiz 1", 15, 10, f.teacher.ID)
		require.ErrorIs(t, err, ErrInvalidScore)

		_, err = f.grades.CreateGrade(ctx, f.student.ID, f.course.ID, "Quiz 1", -1, 10, f.teacher.ID)
		require.ErrorIs(t, err, ErrInvalidScore)
	})

	t.Run("grading requires enrollment", func(t *testing.T) {
		other, err := f.courses.CreateCourse(ctx, "CS301", "Algorithms", f.teacher.ID, 6)
		require.NoError(t, err)

		_, err = f.grades.CreateGrade(ctx, f.student.ID, other.ID, "Quiz 1", 8, 10, f.teacher.ID)
		require.ErrorIs(t, err, ErrNotEnrolled)
	})

	t.Run("create, correct and list", func(t *testing.T) {
		grade, err := f.grades.CreateGrade(ctx, f.student.ID, f.course.ID, "Quiz 1", 8, 10, f.teacher.ID)
		require.NoError(t, err)
		require.Equal(t, f.teacher.ID, grade.GradedBy)

		corrected, err := f.grades.UpdateGrade(ctx, grade.ID, "Quiz 1", 9, 10, f.teacher.ID)
		require.NoError(t, err)
		require.Equal(t, 9.0, corrected.Score)

		byStudent, err := f.grades.ListGradesByStudent(ctx, f.student.ID)
		require.NoError(t, err)
		require.Len(t, byStudent, 1)

		byCourse, err := f.grades.ListGradesByCourse(ctx, f.course.ID)
		require.NoError(t, err)
		require.Len(t, byCourse, 1)
	})
}

func TestAttendance(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)

	day := time.Date(2026, time.March, 9, 14, 30, 0, 0, time.UTC)

	t.Run("records are truncated to the day", func(t *testing.T) {
		rec, err := f.attendance.RecordAttendance(ctx, f.student.ID, f.course.ID, day, domain.AttendancePresent, f.teacher.ID)
		require.NoError(t, err)
		require.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), rec.Date.UTC())
	})

	t.Run("one record per student, course and day", func(t *testing.T) {
		laterSameDay := day.Add(3 * time.Hour)
		_, err := f.attendance.RecordAttendance(ctx, f.student.ID, f.course.ID, laterSameDay, domain.AttendanceLate, f.teacher.ID)
		require.ErrorIs(t, err, ErrDuplicateRecord)
	})

	t.Run("unknown status refused", func(t *testing.T) {
		_, err := f.attendance.RecordAttendance(ctx, f.student.ID, f.course.ID, day.AddDate(0, 0, 1), domain.AttendanceStatus("vanished"), f.teacher.ID)
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("correcting a status", func(t *testing.T) {
		records, err := f.attendance.ListByStudent(ctx, f.student.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)

		updated, err := f.attendance.UpdateStatus(ctx, records[0].ID, domain.AttendanceExcused)
		require.NoError(t, err)
		require.Equal(t, domain.AttendanceExcused, updated.Status)
	})

	t.Run("listing a course day", func(t *testing.T) {
		records, err := f.attendance.ListByCourse(ctx, f.course.ID, day)
		require.NoError(t, err)
		require.Len(t, records, 1)

		empty, err := f.attendance.ListByCourse(ctx, f.course.ID, day.AddDate(0, 0, 5))
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}
