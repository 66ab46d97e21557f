package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/idx"
	"github.com/edupredict/edupredict/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidPrediction = errors.New("invalid_prediction")
)

const (
	// DefaultRiskThreshold is the dropout_risk score at or above which a
	// student counts as at-risk on dashboards.
	DefaultRiskThreshold = 0.7

	dashboardCacheKey = "edupredict:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// AnalyticsService serves precomputed model scores and the aggregate
// dashboard. Scores are ingested from an upstream pipeline; failures here
// surface to the caller rather than degrading to fabricated numbers.
type AnalyticsService struct {
	Store store.Store

	// Cache is optional. When nil every dashboard request hits the
	// database directly.
	Cache *redis.Client

	RiskThreshold float64
}

func (s *AnalyticsService) riskThreshold() float64 {
	if s.RiskThreshold > 0 {
		return s.RiskThreshold
	}
	return DefaultRiskThreshold
}

// PredictionInput is one row of an ingestion batch.
type PredictionInput struct {
	StudentID  string
	CourseID   string
	Kind       domain.PredictionKind
	Score      float64
	Confidence float64
	ComputedAt time.Time
}

// Ingest upserts a batch of scores atomically. A bad row fails the whole
// batch so partially-applied model runs never land.
func (s *AnalyticsService) Ingest(ctx context.Context, batch []PredictionInput) error {
	if len(batch) == 0 {
		return nil
	}

	for _, in := range batch {
		if !domain.ValidPredictionKind(in.Kind) {
			return ErrInvalidPrediction
		}
		if in.Confidence < 0 || in.Confidence > 1 {
			return ErrInvalidPrediction
		}
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, in := range batch {
			if _, err := tx.Students().GetStudentByID(ctx, in.StudentID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrStudentNotFound
				}
				return err
			}
			p := domain.Prediction{
				ID:         idx.New().String(),
				StudentID:  in.StudentID,
				CourseID:   in.CourseID,
				Kind:       in.Kind,
				Score:      in.Score,
				Confidence: in.Confidence,
				ComputedAt: in.ComputedAt,
			}
			if err := tx.Predictions().UpsertPrediction(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func (s *AnalyticsService) ListByStudent(ctx context.Context, studentID string) ([]domain.Prediction, error) {
	if _, err := s.Store.Students().GetStudentByID(ctx, studentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s.Store.Predictions().ListPredictionsByStudent(ctx, studentID)
}

func (s *AnalyticsService) ListByKind(ctx context.Context, kind domain.PredictionKind) ([]domain.Prediction, error) {
	if !domain.ValidPredictionKind(kind) {
		return nil, ErrInvalidPrediction
	}
	return s.Store.Predictions().ListPredictionsByKind(ctx, kind)
}

// Dashboard computes the aggregate counters, served from the redis cache
// when one is configured. Database errors propagate; there is no stub
// fallback.
func (s *AnalyticsService) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	if s.Cache != nil {
		raw, err := s.Cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var cached domain.DashboardStats
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			// cache trouble is logged, never fatal
			slogx.FromContext(ctx).Warn("dashboard cache read failed", slog.Any("error", err))
		}
	}

	var stats domain.DashboardStats

	students, err := s.Store.Students().CountStudents(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.Students = students

	courses, err := s.Store.Courses().CountCourses(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.Courses = courses

	atRisk, err := s.Store.Predictions().CountAtRisk(ctx, s.riskThreshold())
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.AtRiskCount = atRisk

	avg, err := s.Store.Grades().AverageScore(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.AverageScore = avg

	if s.Cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.Cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				slogx.FromContext(ctx).Warn("dashboard cache write failed", slog.Any("error", err))
			}
		}
	}

	return stats, nil
}

func (s *AnalyticsService) invalidateDashboard(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		slogx.FromContext(ctx).Warn("dashboard cache invalidation failed", slog.Any("error", err))
	}
}
