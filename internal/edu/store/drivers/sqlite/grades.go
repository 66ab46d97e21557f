package sqlite

import (
	"context"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type gradesRepo struct {
	db dbtx
}

const gradeColumns = `id, student_id, course_id, assessment, score, max_score,
	graded_by, graded_at, created_at, updated_at`

func scanGrade(row interface{ Scan(...any) error }) (domain.Grade, error) {
	var g domain.Grade
	err := row.Scan(&g.ID, &g.StudentID, &g.CourseID, &g.Assessment,
		&g.Score, &g.MaxScore, &g.GradedBy, &g.GradedAt, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *gradesRepo) GetGradeByID(ctx context.Context, id string) (domain.Grade, error) {
	g, err := scanGrade(r.db.QueryRowContext(ctx,
		`SELECT `+gradeColumns+` FROM grades WHERE id = ?`, id))
	if err != nil {
		return domain.Grade{}, mapNotFound(err)
	}
	return g, nil
}

func (r *gradesRepo) listGrades(ctx context.Context, query string, args ...any) ([]domain.Grade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []domain.Grade
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

func (r *gradesRepo) ListGradesByStudent(ctx context.Context, studentID string) ([]domain.Grade, error) {
	return r.listGrades(ctx,
		`SELECT `+gradeColumns+` FROM grades WHERE student_id = ? ORDER BY graded_at`, studentID)
}

func (r *gradesRepo) ListGradesByCourse(ctx context.Context, courseID string) ([]domain.Grade, error) {
	return r.listGrades(ctx,
		`SELECT `+gradeColumns+` FROM grades WHERE course_id = ? ORDER BY graded_at`, courseID)
}

func (r *gradesRepo) CreateGrade(ctx context.Context, g domain.Grade) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO grades (id, student_id, course_id, assessment, score, max_score, graded_by, graded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.StudentID, g.CourseID, g.Assessment, g.Score, g.MaxScore,
		g.GradedBy, g.GradedAt.UTC())
	return mapConstraint(err)
}

func (r *gradesRepo) UpdateGrade(ctx context.Context, g domain.Grade) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE grades SET assessment = ?, score = ?, max_score = ?, graded_by = ?,
			graded_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		g.Assessment, g.Score, g.MaxScore, g.GradedBy, g.GradedAt.UTC(), g.ID))
}

func (r *gradesRepo) DeleteGrade(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM grades WHERE id = ?`, id))
}

func (r *gradesRepo) AverageScore(ctx context.Context) (float64, error) {
	// normalised to a percentage so mixed max_score scales average sanely
	var avg float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(score * 100.0 / max_score), 0)
		FROM grades WHERE max_score > 0`).Scan(&avg)
	return avg, err
}
