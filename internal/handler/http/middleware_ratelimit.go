package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
)

// withRateLimit throttles requests per client IP against the named bucket.
// Denials answer 429 with a Retry-After header and the same whole-second
// hint inside the JSON envelope.
//
// Login and password reset handlers additionally consume identifier-keyed
// budgets themselves; this middleware only covers the per-source dimension.
func (h *Handler) withRateLimit(bucket string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := h.limiter.Attempt(r.Context(), bucket, clientIP(r))
			if !decision.Allowed {
				logger.FromRequest(r).Warn().
					Str("bucket", bucket).
					Str("path", r.URL.Path).
					Msg("request rate limited")
				respondRateLimited(w, decision.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// respondRateLimited writes the 429 envelope shared by the middleware and
// the handlers that run their own limiter checks.
func respondRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter / time.Second)
	if seconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	response := models.Fail("too many requests, please try again later")
	response.RetryAfter = seconds
	respond(w, response, http.StatusTooManyRequests)
}

// clientIP resolves the request's source address. The first entry of
// X-Forwarded-For wins when present, since the gate normally sits behind a
// reverse proxy; otherwise the connection's remote address is used.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
