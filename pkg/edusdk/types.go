package edusdk

import "time"

// ErrorResponse is the standard JSON error envelope. Used internally when
// parsing HTTP error responses; client code sees APIError instead.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenResponse is what the login, MFA exchange and refresh endpoints
// return.
type TokenResponse struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// UserProfile is the authenticated user as returned by /v1/auth/me.
type UserProfile struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	MFAEnabled bool       `json:"mfa_enabled"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ProfileUpdate is a partial update for the caller's own profile. Nil
// fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// RegisterRequest creates a new account. Role must be student, teacher or
// analyst; admin accounts are created by an existing admin.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CreateUserRequest is the admin variant of RegisterRequest; any role goes.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// MFAEnrollment carries the provisioning material for an authenticator app.
type MFAEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// Student is a student's academic record.
type Student struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	Program       string    `json:"program"`
	YearLevel     int       `json:"year_level"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateStudentRequest attaches an academic record to a student-role user.
type CreateStudentRequest struct {
	UserID        string `json:"user_id"`
	StudentNumber string `json:"student_number"`
	Program       string `json:"program"`
	YearLevel     int    `json:"year_level"`
}

type Course struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	TeacherID string    `json:"teacher_id"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCourseRequest struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	TeacherID string `json:"teacher_id"`
	Credits   int    `json:"credits"`
}

type Enrollment struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	StudentID  string    `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type Grade struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id"`
	Assessment string    `json:"assessment"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	GradedBy   string    `json:"graded_by"`
	GradedAt   time.Time `json:"graded_at"`
}

type CreateGradeRequest struct {
	StudentID  string  `json:"student_id"`
	CourseID   string  `json:"course_id"`
	Assessment string  `json:"assessment"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
}

type AttendanceRecord struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	RecordedBy string    `json:"recorded_by"`
}

type RecordAttendanceRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Status    string `json:"status"`
}

type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Prediction struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id,omitempty"`
	Kind       string    `json:"kind"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	ComputedAt time.Time `json:"computed_at"`
}

// PredictionUpload is one row of an ingestion batch.
type PredictionUpload struct {
	StudentID  string    `json:"student_id"`
	CourseID   string    `json:"course_id,omitempty"`
	Kind       string    `json:"kind"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	ComputedAt time.Time `json:"computed_at"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// DashboardStats are the aggregate counters behind the role dashboards.
type DashboardStats struct {
	Students      int     `json:"students"`
	Courses       int     `json:"courses"`
	AtRiskCount   int     `json:"at_risk_count"`
	AverageScore  float64 `json:"average_score"`
	UnreadNotices int     `json:"unread_notices"`
}
