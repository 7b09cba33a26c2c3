package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/ratelimit"
	"github.com/MKhiriev/go-access-gate/internal/service"
	"github.com/MKhiriev/go-access-gate/internal/session"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
)

// sessionCookieName is the cookie that carries the opaque session ID.
const sessionCookieName = "gate_session"

// flashCookieName carries a one-shot message for the page a browser is
// redirected to. The frontend clears it after display.
const flashCookieName = "gate_flash"

type Handler struct {
	services *service.Services
	sessions *session.Manager
	limiter  *ratelimit.Limiter

	gate       config.Gate
	sessionTTL time.Duration
	health     HealthChecks

	logger *logger.Logger
}

// HealthChecks carries the backend probes exposed by the health endpoint.
// A nil probe is reported as "skipped" rather than failing the check.
type HealthChecks struct {
	Database func(ctx context.Context) error
	Cache    func(ctx context.Context) error
}

func NewHandler(services *service.Services, sessions *session.Manager, limiter *ratelimit.Limiter, cfg config.StructuredConfig, health HealthChecks, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:   services,
		sessions:   sessions,
		limiter:    limiter,
		gate:       cfg.Gate,
		sessionTTL: cfg.Auth.SessionTTL,
		health:     health,
		logger:     logger,
	}
}

// respond writes an API envelope with the given status.
func respond(w http.ResponseWriter, response models.APIResponse, statusCode int) {
	_, _ = utils.WriteJSON(w, response, statusCode)
}

// setSessionCookie attaches the session ID to the response. Secure is set
// from the request scheme so local HTTP development still works.
func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// setFlashCookie stores a short-lived message for the redirect target.
// Not HttpOnly: the login page reads and clears it client-side.
func setFlashCookie(w http.ResponseWriter, r *http.Request, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (h *Handler) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
