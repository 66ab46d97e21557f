package sqlite

import (
	"context"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type predictionsRepo struct {
	db dbtx
}

const predictionColumns = `id, student_id, course_id, kind, score, confidence, computed_at, created_at`

func scanPrediction(row interface{ Scan(...any) error }) (domain.Prediction, error) {
	var (
		p    domain.Prediction
		kind string
	)
	err := row.Scan(&p.ID, &p.StudentID, &p.CourseID, &kind,
		&p.Score, &p.Confidence, &p.ComputedAt, &p.CreatedAt)
	p.Kind = domain.PredictionKind(kind)
	return p, err
}

func (r *predictionsRepo) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO predictions (id, student_id, course_id, kind, score, confidence, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, course_id, kind) DO UPDATE SET
			score = excluded.score,
			confidence = excluded.confidence,
			computed_at = excluded.computed_at`,
		p.ID, p.StudentID, p.CourseID, string(p.Kind),
		p.Score, p.Confidence, p.ComputedAt.UTC())
	return err
}

func (r *predictionsRepo) listPredictions(ctx context.Context, query string, args ...any) ([]domain.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []domain.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *predictionsRepo) ListPredictionsByStudent(ctx context.Context, studentID string) ([]domain.Prediction, error) {
	return r.listPredictions(ctx, `
		SELECT `+predictionColumns+` FROM predictions
		WHERE student_id = ? ORDER BY computed_at DESC`, studentID)
}

func (r *predictionsRepo) ListPredictionsByKind(ctx context.Context, kind domain.PredictionKind) ([]domain.Prediction, error) {
	return r.listPredictions(ctx, `
		SELECT `+predictionColumns+` FROM predictions
		WHERE kind = ? ORDER BY score DESC`, string(kind))
}

func (r *predictionsRepo) CountAtRisk(ctx context.Context, threshold float64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT student_id) FROM predictions
		WHERE kind = ? AND score >= ?`,
		string(domain.PredictionDropoutRisk), threshold).Scan(&count)
	return count, err
}
