package http

import (
	"net/http"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
)

// dashboard handles GET /api/dashboard, dispatching by the session's role.
// A role slug the dispatch map does not know means the session predates a
// role rename or was tampered with; it is destroyed and the client sent back
// to login.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	session, ok := utils.GetSessionFromContext(ctx)
	if !ok {
		respond(w, models.Fail("authentication required"), http.StatusUnauthorized)
		return
	}

	dashboard, known := models.DashboardFor(session.RoleSlug)
	if !known {
		log.Warn().
			Int64("user_id", session.UserID).
			Str("role", session.RoleSlug).
			Msg("session carries unknown role, destroying")

		if err := h.sessions.Destroy(ctx, session.SessionID); err != nil {
			log.Warn().Err(err).Msg("session destroy failed")
		}
		h.clearSessionCookie(w, r)

		if wantsHTML(r) {
			setFlashCookie(w, r, "your session is no longer valid")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		respond(w, models.Fail("invalid role"), http.StatusUnauthorized)
		return
	}

	respond(w, models.OK(map[string]any{
		"dashboard": dashboard,
		"role":      session.RoleSlug,
		"user_id":   session.UserID,
		"username":  session.Username,
	}), http.StatusOK)
}
