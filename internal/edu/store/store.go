package store

import (
	"context"
	"errors"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	MFASessions() MFASessions
	Students() Students
	Courses() Courses
	Grades() Grades
	Attendance() Attendance
	Notifications() Notifications
	Predictions() Predictions

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Use it for
	// multi-step operations that must be atomic (e.g. refresh rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserProfile applies a partial update; nil fields are untouched.
	UpdateUserProfile(ctx context.Context, userID string, upd domain.UserUpdate) error

	SetUserActive(ctx context.Context, userID string, active bool) error
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	DeleteUser(ctx context.Context, userID string) error

	UpdateMFASecret(ctx context.Context, userID, secret string) error
	EnableMFA(ctx context.Context, userID string) error
	DisableMFA(ctx context.Context, userID string) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (e.g. password
	// change or account deactivation).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type MFASessions interface {
	CreateMFASession(ctx context.Context, s domain.MFASession) error
	GetMFASession(ctx context.Context, token string) (domain.MFASession, error)
	IncrementMFASessionAttempts(ctx context.Context, token string) (domain.MFASession, error)
	DeleteMFASession(ctx context.Context, token string) error
	DeleteExpiredMFASessions(ctx context.Context) error
}

type Students interface {
	GetStudentByID(ctx context.Context, id string) (domain.Student, error)
	GetStudentByUserID(ctx context.Context, userID string) (domain.Student, error)
	ListStudents(ctx context.Context) ([]domain.Student, error)
	CreateStudent(ctx context.Context, s domain.Student) error
	UpdateStudent(ctx context.Context, s domain.Student) error
	DeleteStudent(ctx context.Context, id string) error
	CountStudents(ctx context.Context) (int, error)
}

type Courses interface {
	GetCourseByID(ctx context.Context, id string) (domain.Course, error)
	GetCourseByCode(ctx context.Context, code string) (domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	ListCoursesByTeacher(ctx context.Context, teacherID string) ([]domain.Course, error)
	CreateCourse(ctx context.Context, c domain.Course) error
	UpdateCourse(ctx context.Context, c domain.Course) error
	DeleteCourse(ctx context.Context, id string) error
	CountCourses(ctx context.Context) (int, error)

	CreateEnrollment(ctx context.Context, e domain.Enrollment) error
	DeleteEnrollment(ctx context.Context, courseID, studentID string) error
	ListEnrollmentsByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]domain.Enrollment, error)
}

type Grades interface {
	GetGradeByID(ctx context.Context, id string) (domain.Grade, error)
	ListGradesByStudent(ctx context.Context, studentID string) ([]domain.Grade, error)
	ListGradesByCourse(ctx context.Context, courseID string) ([]domain.Grade, error)
	CreateGrade(ctx context.Context, g domain.Grade) error
	UpdateGrade(ctx context.Context, g domain.Grade) error
	DeleteGrade(ctx context.Context, id string) error
	AverageScore(ctx context.Context) (float64, error)
}

type Attendance interface {
	GetAttendanceByID(ctx context.Context, id string) (domain.AttendanceRecord, error)
	ListAttendanceByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error)
	ListAttendanceByCourse(ctx context.Context, courseID string, date time.Time) ([]domain.AttendanceRecord, error)
	CreateAttendanceRecord(ctx context.Context, rec domain.AttendanceRecord) error
	UpdateAttendanceStatus(ctx context.Context, id string, status domain.AttendanceStatus) error
	DeleteAttendanceRecord(ctx context.Context, id string) error
}

type Notifications interface {
	GetNotificationByID(ctx context.Context, id string) (domain.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	CreateNotification(ctx context.Context, n domain.Notification) error
	MarkNotificationRead(ctx context.Context, id string, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID string, at time.Time) error
	CountUnread(ctx context.Context, userID string) (int, error)
	DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) error
}

type Predictions interface {
	// UpsertPrediction replaces any existing score for the same
	// (student, course, kind) triple; ingestion is idempotent.
	UpsertPrediction(ctx context.Context, p domain.Prediction) error

	ListPredictionsByStudent(ctx context.Context, studentID string) ([]domain.Prediction, error)
	ListPredictionsByKind(ctx context.Context, kind domain.PredictionKind) ([]domain.Prediction, error)
	CountAtRisk(ctx context.Context, threshold float64) (int, error)
}
