package http

import (
	"net/http"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/edupredict/edupredict/pkg/slogx"
)

// AnalyticsHandler ingests precomputed model scores and serves the
// aggregate dashboard.
type AnalyticsHandler struct {
	AnalyticsService    *service.AnalyticsService
	NotificationService *service.NotificationService
}

type predictionRow struct {
	StudentID  string    `json:"student_id" validate:"required"`
	CourseID   string    `json:"course_id"`
	Kind       string    `json:"kind" validate:"required,oneof=dropout_risk grade_forecast"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
	ComputedAt time.Time `json:"computed_at"`
}

type ingestRequest struct {
	Predictions []predictionRow `json:"predictions" validate:"required,min=1,dive"`
}

// HandleIngest handles POST /v1/analytics/predictions
//
//	@Summary		Ingest model scores
//	@Description	Upserts a batch of precomputed predictions atomically. A bad row fails the whole batch.
//	@Tags			Analytics
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	ingestRequest	true	"Prediction batch"
//	@Success		204		"Batch applied"
//	@Failure		400		{object}	edusdk.ErrorResponse	"Batch contains invalid rows"
//	@Failure		404		{object}	edusdk.ErrorResponse	"Unknown student in batch"
//	@Router			/v1/analytics/predictions [post].
func (h *AnalyticsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ingestRequest
	if apiErr := bindJSON(r, &req); apiErr != nil {
		apiErr.WriteError(w)
		return
	}

	batch := make([]service.PredictionInput, 0, len(req.Predictions))
	for _, row := range req.Predictions {
		computedAt := row.ComputedAt
		if computedAt.IsZero() {
			computedAt = time.Now()
		}
		batch = append(batch, service.PredictionInput{
			StudentID:  row.StudentID,
			CourseID:   row.CourseID,
			Kind:       domain.PredictionKind(row.Kind),
			Score:      row.Score,
			Confidence: row.Confidence,
			ComputedAt: computedAt,
		})
	}

	if err := h.AnalyticsService.Ingest(ctx, batch); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("prediction batch ingested", "rows", len(batch))
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByKind handles GET /v1/analytics/predictions
//
//	@Summary		List scores by kind
//	@Description	Returns every prediction of the given kind, highest score first.
//	@Tags			Analytics
//	@Security		BearerAuth
//	@Produce		json
//	@Param			kind	query	string	true	"dropout_risk or grade_forecast"
//	@Success		200		{array}	edusdk.Prediction	"Predictions"
//	@Router			/v1/analytics/predictions [get].
func (h *AnalyticsHandler) HandleListByKind(w http.ResponseWriter, r *http.Request) {
	kind := domain.PredictionKind(r.URL.Query().Get("kind"))

	predictions, err := h.AnalyticsService.ListByKind(r.Context(), kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]edusdk.Prediction, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, toPrediction(p))
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDashboard handles GET /v1/analytics/dashboard
//
//	@Summary		Dashboard counters
//	@Description	Aggregate counters behind the role dashboards plus the caller's unread notice count. Database errors surface as 500s; there is no stub fallback.
//	@Tags			Analytics
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	edusdk.DashboardStats	"Counters"
//	@Router			/v1/analytics/dashboard [get].
func (h *AnalyticsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		edusdk.ErrUnauthenticated.WriteError(w)
		return
	}

	stats, err := h.AnalyticsService.Dashboard(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	unread, err := h.NotificationService.CountUnread(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, edusdk.DashboardStats{
		Students:      stats.Students,
		Courses:       stats.Courses,
		AtRiskCount:   stats.AtRiskCount,
		AverageScore:  stats.AverageScore,
		UnreadNotices: unread,
	})
}
