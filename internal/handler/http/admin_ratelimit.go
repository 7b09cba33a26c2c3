package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
)

// clearRateLimit handles DELETE /api/admin/ratelimit/{bucket}/{key},
// removing both the counter and the lockout marker so a blocked source is
// admitted immediately. The operator passes the raw key (IP or identifier);
// sanitization matches what the limiter stored under.
func (h *Handler) clearRateLimit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	bucket := chi.URLParam(r, "bucket")
	key := chi.URLParam(r, "key")
	if bucket == "" || key == "" {
		respond(w, models.Fail("bucket and key are required"), http.StatusBadRequest)
		return
	}

	known := false
	for _, name := range h.limiter.Buckets() {
		if name == bucket {
			known = true
			break
		}
	}
	if !known {
		respond(w, models.Fail("unknown bucket"), http.StatusNotFound)
		return
	}

	if err := h.limiter.Clear(r.Context(), bucket, key); err != nil {
		log.Err(err).Str("func", "*Handler.clearRateLimit").
			Str("bucket", bucket).
			Msg("error: clearing rate limit")
		respond(w, models.Fail("internal server error"), http.StatusInternalServerError)
		return
	}

	log.Info().Str("bucket", bucket).Str("key", key).Msg("rate limit cleared by operator")
	respond(w, models.OK(nil), http.StatusOK)
}
