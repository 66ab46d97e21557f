package domain

import "time"

// Student is the academic record attached to a user with the student role.
type Student struct {
	ID            string
	UserID        string
	StudentNumber string
	Program       string
	YearLevel     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Course struct {
	ID        string
	Code      string
	Title     string
	TeacherID string // user with the teacher role
	Credits   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Enrollment struct {
	ID         string
	CourseID   string
	StudentID  string
	EnrolledAt time.Time
}

type Grade struct {
	ID         string
	StudentID  string
	CourseID   string
	Assessment string
	Score      float64
	MaxScore   float64
	GradedBy   string // user id of the grader
	GradedAt   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AttendanceStatus is the closed set of attendance outcomes.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// ValidAttendanceStatus reports whether s is a known status.
func ValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

type AttendanceRecord struct {
	ID         string
	StudentID  string
	CourseID   string
	Date       time.Time // date only, stored at midnight UTC
	Status     AttendanceStatus
	RecordedBy string
	CreatedAt  time.Time
}
