package edusdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]UserProfile, error) {
	var users []UserProfile
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/users", nil, &users, http.StatusOK)
	return users, err
}

// CreateUser creates an account with any role. Admin only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (UserProfile, error) {
	var user UserProfile
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/users", req, &user, http.StatusCreated)
	return user, err
}

// GetUser fetches an account by id. Admin only.
func (c *Client) GetUser(ctx context.Context, userID string) (UserProfile, error) {
	var user UserProfile
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID), nil, &user, http.StatusOK)
	return user, err
}

// SetUserActive enables or disables an account. Admin only.
func (c *Client) SetUserActive(ctx context.Context, userID string, active bool) error {
	return c.doAuthJSON(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(userID)+"/active",
		map[string]bool{"is_active": active}, nil, http.StatusNoContent)
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.doAuthJSON(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(userID), nil, nil, http.StatusNoContent)
}

func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/students", nil, &students, http.StatusOK)
	return students, err
}

func (c *Client) CreateStudent(ctx context.Context, req CreateStudentRequest) (Student, error) {
	var student Student
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/students", req, &student, http.StatusCreated)
	return student, err
}

func (c *Client) GetStudent(ctx context.Context, studentID string) (Student, error) {
	var student Student
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/students/"+url.PathEscape(studentID), nil, &student, http.StatusOK)
	return student, err
}

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/courses", nil, &courses, http.StatusOK)
	return courses, err
}

func (c *Client) CreateCourse(ctx context.Context, req CreateCourseRequest) (Course, error) {
	var course Course
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/courses", req, &course, http.StatusCreated)
	return course, err
}

func (c *Client) GetCourse(ctx context.Context, courseID string) (Course, error) {
	var course Course
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/courses/"+url.PathEscape(courseID), nil, &course, http.StatusOK)
	return course, err
}

// EnrollStudent adds a student to a course roster.
func (c *Client) EnrollStudent(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	var enrollment Enrollment
	err := c.doAuthJSON(ctx, http.MethodPost,
		"/v1/courses/"+url.PathEscape(courseID)+"/enrollments",
		map[string]string{"student_id": studentID},
		&enrollment, http.StatusCreated)
	return enrollment, err
}

func (c *Client) ListRoster(ctx context.Context, courseID string) ([]Enrollment, error) {
	var roster []Enrollment
	err := c.doAuthJSON(ctx, http.MethodGet,
		"/v1/courses/"+url.PathEscape(courseID)+"/enrollments",
		nil, &roster, http.StatusOK)
	return roster, err
}

func (c *Client) CreateGrade(ctx context.Context, req CreateGradeRequest) (Grade, error) {
	var grade Grade
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/grades", req, &grade, http.StatusCreated)
	return grade, err
}

// ListStudentGrades lists grades for one student. Students can only reach
// their own; teachers and admins any.
func (c *Client) ListStudentGrades(ctx context.Context, studentID string) ([]Grade, error) {
	var grades []Grade
	err := c.doAuthJSON(ctx, http.MethodGet,
		"/v1/students/"+url.PathEscape(studentID)+"/grades",
		nil, &grades, http.StatusOK)
	return grades, err
}

func (c *Client) RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (AttendanceRecord, error) {
	var rec AttendanceRecord
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/attendance", req, &rec, http.StatusCreated)
	return rec, err
}

func (c *Client) ListStudentAttendance(ctx context.Context, studentID string) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	err := c.doAuthJSON(ctx, http.MethodGet,
		"/v1/students/"+url.PathEscape(studentID)+"/attendance",
		nil, &records, http.StatusOK)
	return records, err
}

// ListNotifications returns the caller's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	path := "/v1/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var notifications []Notification
	err := c.doAuthJSON(ctx, http.MethodGet, path, nil, &notifications, http.StatusOK)
	return notifications, err
}

// SendNotification delivers an in-app notice to one user. Admin only.
func (c *Client) SendNotification(ctx context.Context, userID, title, body string) (Notification, error) {
	var n Notification
	err := c.doAuthJSON(ctx, http.MethodPost, "/v1/notifications",
		map[string]string{"user_id": userID, "title": title, "body": body},
		&n, http.StatusCreated)
	return n, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return c.doAuthJSON(ctx, http.MethodPost,
		"/v1/notifications/"+url.PathEscape(notificationID)+"/read",
		nil, nil, http.StatusNoContent)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doAuthJSON(ctx, http.MethodPost, "/v1/notifications/read-all", nil, nil, http.StatusNoContent)
}

// UploadPredictions ingests a batch of precomputed model scores. Analyst
// only.
func (c *Client) UploadPredictions(ctx context.Context, batch []PredictionUpload) error {
	return c.doAuthJSON(ctx, http.MethodPost, "/v1/analytics/predictions",
		map[string]any{"predictions": batch}, nil, http.StatusNoContent)
}

// ListStudentPredictions lists model scores for one student.
func (c *Client) ListStudentPredictions(ctx context.Context, studentID string) ([]Prediction, error) {
	var predictions []Prediction
	err := c.doAuthJSON(ctx, http.MethodGet,
		"/v1/students/"+url.PathEscape(studentID)+"/predictions",
		nil, &predictions, http.StatusOK)
	return predictions, err
}

// ListPredictionsByKind lists all scores of a given kind, highest first.
func (c *Client) ListPredictionsByKind(ctx context.Context, kind string) ([]Prediction, error) {
	var predictions []Prediction
	err := c.doAuthJSON(ctx, http.MethodGet,
		fmt.Sprintf("/v1/analytics/predictions?kind=%s", url.QueryEscape(kind)),
		nil, &predictions, http.StatusOK)
	return predictions, err
}

// Dashboard fetches the aggregate counters for the caller's dashboard.
func (c *Client) Dashboard(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := c.doAuthJSON(ctx, http.MethodGet, "/v1/analytics/dashboard", nil, &stats, http.StatusOK)
	return stats, err
}
