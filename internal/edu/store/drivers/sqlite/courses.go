package sqlite

import (
	"context"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type coursesRepo struct {
	db dbtx
}

const courseColumns = `id, code, title, teacher_id, credits, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }) (domain.Course, error) {
	var c domain.Course
	err := row.Scan(&c.ID, &c.Code, &c.Title, &c.TeacherID,
		&c.Credits, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *coursesRepo) GetCourseByID(ctx context.Context, id string) (domain.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ?`, id))
	if err != nil {
		return domain.Course{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coursesRepo) GetCourseByCode(ctx context.Context, code string) (domain.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE code = ?`, code))
	if err != nil {
		return domain.Course{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coursesRepo) listCourses(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *coursesRepo) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return r.listCourses(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY code`)
}

func (r *coursesRepo) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]domain.Course, error) {
	return r.listCourses(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE teacher_id = ? ORDER BY code`, teacherID)
}

func (r *coursesRepo) CreateCourse(ctx context.Context, c domain.Course) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, code, title, teacher_id, credits)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Code, c.Title, c.TeacherID, c.Credits)
	return mapConstraint(err)
}

func (r *coursesRepo) UpdateCourse(ctx context.Context, c domain.Course) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE courses SET code = ?, title = ?, teacher_id = ?, credits = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Code, c.Title, c.TeacherID, c.Credits, c.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res, nil)
}

func (r *coursesRepo) DeleteCourse(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM courses WHERE id = ?`, id))
}

func (r *coursesRepo) CountCourses(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count)
	return count, err
}

func (r *coursesRepo) CreateEnrollment(ctx context.Context, e domain.Enrollment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (id, course_id, student_id)
		VALUES (?, ?, ?)`,
		e.ID, e.CourseID, e.StudentID)
	return mapConstraint(err)
}

func (r *coursesRepo) DeleteEnrollment(ctx context.Context, courseID, studentID string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE course_id = ? AND student_id = ?`,
		courseID, studentID))
}

func (r *coursesRepo) listEnrollments(ctx context.Context, query string, args ...any) ([]domain.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (r *coursesRepo) ListEnrollmentsByCourse(ctx context.Context, courseID string) ([]domain.Enrollment, error) {
	return r.listEnrollments(ctx, `
		SELECT id, course_id, student_id, enrolled_at
		FROM enrollments WHERE course_id = ? ORDER BY enrolled_at`, courseID)
}

func (r *coursesRepo) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]domain.Enrollment, error) {
	return r.listEnrollments(ctx, `
		SELECT id, course_id, student_id, enrolled_at
		FROM enrollments WHERE student_id = ? ORDER BY enrolled_at`, studentID)
}
