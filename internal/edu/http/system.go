package http

import (
	"net/http"
	"time"

	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/edusdk"
	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/redis/go-redis/v9"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Reports that the process is up. Always returns 200 while the server is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	edusdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, edusdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database and, when configured, the redis cache. A cache failure degrades the response but the cache is optional, so only a database failure flips the status code.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	edusdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	edusdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cache *redis.Client,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &edusdk.HealthChecks{
			Database: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if cache != nil {
			checks.Cache = "ok"
			if err := cache.Ping(r.Context()).Err(); err != nil {
				// the dashboard works without the cache, so don't fail readiness
				checks.Cache = "error: " + err.Error()
				overallStatus = "degraded"
			}
		}

		httpx.WriteJSON(w, statusCode, edusdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
