package http

import (
	"net/http"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
)

// requirePermission gates a route behind a permission slug. Runs after
// withAuth; a missing identity answers 401 rather than panicking, so the
// middleware order being wrong fails closed.
//
// A catalog error denies the request. Permission checks never fail open.
func (h *Handler) requirePermission(permissionSlug string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)
			ctx := r.Context()

			userID, ok := utils.GetUserIDFromContext(ctx)
			if !ok {
				respond(w, models.Fail("authentication required"), http.StatusUnauthorized)
				return
			}

			allowed, err := h.services.CatalogService.HasPermission(ctx, userID, permissionSlug)
			if err != nil {
				log.Err(err).Str("func", "*Handler.requirePermission").
					Int64("user_id", userID).
					Str("permission", permissionSlug).
					Msg("error: permission check failed")
				respond(w, models.Fail("access denied"), http.StatusForbidden)
				return
			}
			if !allowed {
				log.Warn().
					Int64("user_id", userID).
					Str("permission", permissionSlug).
					Str("path", r.URL.Path).
					Msg("permission denied")
				respond(w, models.Fail("access denied"), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requireRole gates a route behind a set of role slugs. Role checks read the
// session's role directly, with no catalog round trip; routes that need
// fine-grained control use requirePermission instead.
func (h *Handler) requireRole(roleSlugs ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			session, ok := utils.GetSessionFromContext(ctx)
			if !ok {
				respond(w, models.Fail("authentication required"), http.StatusUnauthorized)
				return
			}

			for _, slug := range roleSlugs {
				if session.RoleSlug == slug {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.FromRequest(r).Warn().
				Int64("user_id", session.UserID).
				Str("role", session.RoleSlug).
				Str("path", r.URL.Path).
				Msg("role denied")
			respond(w, models.Fail("access denied"), http.StatusForbidden)
		})
	}
}
