package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and a check for the
//	@Description	upstream identity provider. Returns 503 when the provider is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	sessionsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	sessionsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	up *upstream.Client,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &sessionsdk.HealthChecks{
			Upstream: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := up.Healthy(r.Context()); err != nil {
			checks.Upstream = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := sessionsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
