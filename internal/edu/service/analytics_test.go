package service

import (
	"context"
	"testing"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/stretchr/testify/require"
)

func TestIngestValidation(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)
	svc := &AnalyticsService{Store: f.st}

	now := time.Now()

	t.Run("unknown kind fails the batch", func(t *testing.T) {
		err := svc.Ingest(ctx, []PredictionInput{
			{StudentID: f.student.ID, Kind: "astrology", Score: 0.5, Confidence: 0.9, ComputedAt: now},
		})
		require.ErrorIs(t, err, ErrInvalidPrediction)
	})

	t.Run("confidence outside 0..1 fails the batch", func(t *testing.T) {
		err := svc.Ingest(ctx, []PredictionInput{
			{StudentID: f.student.ID, Kind: domain.PredictionDropoutRisk, Score: 0.5, Confidence: 1.2, ComputedAt: now},
		})
		require.ErrorIs(t, err, ErrInvalidPrediction)
	})

	t.Run("unknown student rolls back the whole batch", func(t *testing.T) {
		err := svc.Ingest(ctx, []PredictionInput{
			{StudentID: f.student.ID, Kind: domain.PredictionDropoutRisk, Score: 0.8, Confidence: 0.9, ComputedAt: now},
			{StudentID: "ghost", Kind: domain.PredictionDropoutRisk, Score: 0.4, Confidence: 0.9, ComputedAt: now},
		})
		require.ErrorIs(t, err, ErrStudentNotFound)

		// the good row must not have landed
		predictions, err := svc.ListByStudent(ctx, f.student.ID)
		require.NoError(t, err)
		require.Empty(t, predictions)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, svc.Ingest(ctx, nil))
	})
}

func TestIngestUpserts(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)
	svc := &AnalyticsService{Store: f.st}

	first := time.Now().Add(-time.Hour)
	second := time.Now()

	require.NoError(t, svc.Ingest(ctx, []PredictionInput{
		{StudentID: f.student.ID, Kind: domain.PredictionDropoutRisk, Score: 0.3, Confidence: 0.8, ComputedAt: first},
	}))
	require.NoError(t, svc.Ingest(ctx, []PredictionInput{
		{StudentID: f.student.ID, Kind: domain.PredictionDropoutRisk, Score: 0.9, Confidence: 0.95, ComputedAt: second},
	}))

	// a new model run replaces the old score rather than stacking rows
	predictions, err := svc.ListByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	require.Equal(t, 0.9, predictions[0].Score)

	t.Run("course-scoped forecasts are separate rows", func(t *testing.T) {
		require.NoError(t, svc.Ingest(ctx, []PredictionInput{
			{StudentID: f.student.ID, CourseID: f.course.ID, Kind: domain.PredictionGradeForecast, Score: 72, Confidence: 0.7, ComputedAt: second},
		}))

		predictions, err := svc.ListByStudent(ctx, f.student.ID)
		require.NoError(t, err)
		require.Len(t, predictions, 2)
	})
}

func TestListByKind(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)
	svc := &AnalyticsService{Store: f.st}

	require.NoError(t, svc.Ingest(ctx, []PredictionInput{
		{StudentID: f.student.ID, Kind: domain.PredictionDropoutRisk, Score: 0.8, Confidence: 0.9, ComputedAt: time.Now()},
	}))

	predictions, err := svc.ListByKind(ctx, domain.PredictionDropoutRisk)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	_, err = svc.ListByKind(ctx, domain.PredictionKind("astrology"))
	require.ErrorIs(t, err, ErrInvalidPrediction)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	f := newAcademicFixture(t)
	svc := &AnalyticsService{Store: f.st} // no cache configured

	_, err := f.courses.Enroll(ctx, f.course.ID, f.student.ID)
	require.NoError(t, err)
	_, err = f.grades.CreateGrade(ctx, f.student.ID, f.course.ID, "Final", 80, 100, f.teacher.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Ingest(ctx, []PredictionInput{
		{StudentID: f.student.ID, Kind: domain.PredictionDropoutRisk, Score: 0.85, Confidence: 0.9, ComputedAt: time.Now()},
	}))

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Students)
	require.Equal(t, 1, stats.Courses)
	require.Equal(t, 1, stats.AtRiskCount)
	require.InDelta(t, 80.0, stats.AverageScore, 0.001)

	t.Run("risk threshold is configurable", func(t *testing.T) {
		strict := &AnalyticsService{Store: f.st, RiskThreshold: 0.9}
		stats, err := strict.Dashboard(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, stats.AtRiskCount)
	})
}
