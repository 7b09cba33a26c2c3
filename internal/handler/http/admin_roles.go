package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/models"
)

type roleRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Level    int    `json:"level"`
	IsActive *bool  `json:"is_active"`
}

type assignPermissionsRequest struct {
	PermissionIDs []int64 `json:"permission_ids"`
}

// listRoles handles GET /api/admin/roles.
func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.services.CatalogService.ListRoles(r.Context())
	if err != nil {
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}
	respond(w, models.OK(roles), http.StatusOK)
}

// getRole handles GET /api/admin/roles/{id}, returning the role with its
// granted permissions.
func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	role, err := h.services.CatalogService.GetRole(r.Context(), roleID)
	if err != nil {
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}
	respond(w, models.OK(role), http.StatusOK)
}

// createRole handles POST /api/admin/roles.
func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var request roleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	role := models.Role{
		Name:     request.Name,
		Slug:     request.Slug,
		Level:    request.Level,
		IsActive: true,
	}
	if request.IsActive != nil {
		role.IsActive = *request.IsActive
	}

	created, err := h.services.CatalogService.CreateRole(r.Context(), role)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.createRole").Msg("role creation rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("role_id", created.RoleID).Str("slug", created.Slug).Msg("role created")
	respond(w, models.OK(created), http.StatusCreated)
}

// updateRole handles PUT /api/admin/roles/{id}. The slug and default flag
// are immutable here; defaults change only through setDefaultRole.
func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request roleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	role := models.Role{
		RoleID:   roleID,
		Name:     request.Name,
		Level:    request.Level,
		IsActive: true,
	}
	if request.IsActive != nil {
		role.IsActive = *request.IsActive
	}

	if err := h.services.CatalogService.UpdateRole(r.Context(), role); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.updateRole").Int64("role_id", roleID).Msg("role update rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("role_id", roleID).Msg("role updated")
	respond(w, models.OK(nil), http.StatusOK)
}

// deleteRole handles DELETE /api/admin/roles/{id}. The default role and
// roles still assigned to users refuse deletion.
func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.services.CatalogService.DeleteRole(r.Context(), roleID); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.deleteRole").Int64("role_id", roleID).Msg("role deletion rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("role_id", roleID).Msg("role deleted")
	respond(w, models.OK(nil), http.StatusOK)
}

// setDefaultRole handles PUT /api/admin/roles/{id}/default.
func (h *Handler) setDefaultRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.services.CatalogService.SetDefaultRole(r.Context(), roleID); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.setDefaultRole").Int64("role_id", roleID).Msg("default role change rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("role_id", roleID).Msg("default role changed")
	respond(w, models.OK(nil), http.StatusOK)
}

// rolePermissions handles GET /api/admin/roles/{id}/permissions.
func (h *Handler) rolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	permissions, err := h.services.CatalogService.RolePermissions(r.Context(), roleID)
	if err != nil {
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}
	respond(w, models.OK(permissions), http.StatusOK)
}

// assignPermissions handles PUT /api/admin/roles/{id}/permissions, replacing
// the role's grant set with the submitted one. An empty list revokes
// everything.
func (h *Handler) assignPermissions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request assignPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := h.services.CatalogService.AssignPermissions(r.Context(), roleID, request.PermissionIDs); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.assignPermissions").Int64("role_id", roleID).Msg("permission assignment rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("role_id", roleID).Int("permissions", len(request.PermissionIDs)).Msg("role grants replaced")
	respond(w, models.OK(nil), http.StatusOK)
}
