package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
)

type permissionRequest struct {
	Name     string `json:"name"`
	Module   string `json:"module"`
	Action   string `json:"action"`
	Resource string `json:"resource"`
}

// listPermissions handles GET /api/admin/permissions.
func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.services.CatalogService.ListPermissions(r.Context())
	if err != nil {
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}
	respond(w, models.OK(permissions), http.StatusOK)
}

// createPermission handles POST /api/admin/permissions. The slug is derived
// from module, action, and resource rather than taken from the client.
func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var request permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	permission := models.Permission{
		Name:     request.Name,
		Module:   request.Module,
		Action:   request.Action,
		Resource: request.Resource,
		IsActive: true,
	}
	permission.Slug = permission.BuildSlug()

	created, err := h.services.CatalogService.CreatePermission(r.Context(), permission)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.createPermission").Msg("permission creation rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("permission_id", created.PermissionID).Str("slug", created.Slug).Msg("permission created")
	respond(w, models.OK(created), http.StatusCreated)
}

// deletePermission handles DELETE /api/admin/permissions/{id}. Permissions
// still granted to a role refuse deletion.
func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	permissionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.services.CatalogService.DeletePermission(r.Context(), permissionID); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.deletePermission").Int64("permission_id", permissionID).Msg("permission deletion rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("permission_id", permissionID).Msg("permission deleted")
	respond(w, models.OK(nil), http.StatusOK)
}
