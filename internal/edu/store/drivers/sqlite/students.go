package sqlite

import (
	"context"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type studentsRepo struct {
	db dbtx
}

const studentColumns = `id, user_id, student_number, program, year_level, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (domain.Student, error) {
	var s domain.Student
	err := row.Scan(&s.ID, &s.UserID, &s.StudentNumber, &s.Program,
		&s.YearLevel, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *studentsRepo) GetStudentByID(ctx context.Context, id string) (domain.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id))
	if err != nil {
		return domain.Student{}, mapNotFound(err)
	}
	return s, nil
}

func (r *studentsRepo) GetStudentByUserID(ctx context.Context, userID string) (domain.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE user_id = ?`, userID))
	if err != nil {
		return domain.Student{}, mapNotFound(err)
	}
	return s, nil
}

func (r *studentsRepo) ListStudents(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY student_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentsRepo) CreateStudent(ctx context.Context, s domain.Student) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, user_id, student_number, program, year_level)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.StudentNumber, s.Program, s.YearLevel)
	return mapConstraint(err)
}

func (r *studentsRepo) UpdateStudent(ctx context.Context, s domain.Student) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE students SET program = ?, year_level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.Program, s.YearLevel, s.ID))
}

func (r *studentsRepo) DeleteStudent(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM students WHERE id = ?`, id))
}

func (r *studentsRepo) CountStudents(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}
