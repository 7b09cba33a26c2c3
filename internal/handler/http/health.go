package http

import (
	"context"
	"net/http"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
)

const healthProbeTimeout = 2 * time.Second

// healthCheck handles GET /api/health. Each configured backend probe runs
// with a short timeout; one degraded backend turns the whole answer into a
// 503 so load balancers stop routing here.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	checks := map[string]string{
		"database": probe(ctx, h.health.Database),
		"cache":    probe(ctx, h.health.Cache),
	}

	healthy := true
	for name, status := range checks {
		if status == "down" {
			log.Warn().Str("backend", name).Msg("health probe failed")
			healthy = false
		}
	}

	if !healthy {
		response := models.Fail("service degraded")
		response.Data = map[string]any{"status": "degraded", "checks": checks}
		respond(w, response, http.StatusServiceUnavailable)
		return
	}
	respond(w, models.OK(map[string]any{"status": "ok", "checks": checks}), http.StatusOK)
}

func probe(ctx context.Context, ping func(ctx context.Context) error) string {
	if ping == nil {
		return "skipped"
	}
	if err := ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
