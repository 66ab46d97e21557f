package domain

import "time"

// PredictionKind distinguishes the precomputed model outputs EduPredict
// surfaces. The scores are produced by an upstream pipeline and ingested
// here; this service never computes them.
type PredictionKind string

const (
	PredictionDropoutRisk   PredictionKind = "dropout_risk"
	PredictionGradeForecast PredictionKind = "grade_forecast"
)

// ValidPredictionKind reports whether k is a known kind.
func ValidPredictionKind(k PredictionKind) bool {
	return k == PredictionDropoutRisk || k == PredictionGradeForecast
}

// Prediction is a single precomputed score for a student, optionally scoped
// to a course (grade forecasts are per course, dropout risk is not).
type Prediction struct {
	ID         string
	StudentID  string
	CourseID   string // empty for student-level predictions
	Kind       PredictionKind
	Score      float64 // 0..1 for risks, 0..100 for grade forecasts
	Confidence float64 // 0..1
	ComputedAt time.Time
	CreatedAt  time.Time
}

// DashboardStats are the aggregate counters behind the role dashboards.
type DashboardStats struct {
	Students      int
	Courses       int
	AtRiskCount   int // dropout_risk score above the risk threshold
	AverageScore  float64
	UnreadNotices int
}
