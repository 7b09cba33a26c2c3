// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
	"github.com/MKhiriev/go-access-gate/models"
)

type adminCreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type adminUpdateUserRequest struct {
	Username              *string   `json:"username"`
	Email                 *string   `json:"email"`
	Name                  *string   `json:"name"`
	Password              *string   `json:"password"`
	RoleID                *int64    `json:"role_id"`
	AdditionalPermissions *[]string `json:"additional_permissions"`
	IsActive              *bool     `json:"is_active"`
}

// listUsers handles GET /api/admin/users with optional role_id, is_active,
// search, limit, and offset query parameters.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	filter := store.UserFilter{Search: r.URL.Query().Get("search")}
	if roleID, err := strconv.ParseInt(r.URL.Query().Get("role_id"), 10, 64); err == nil {
		filter.RoleID = roleID
	}
	if active, err := strconv.ParseBool(r.URL.Query().Get("is_active")); err == nil {
		filter.IsActive = &active
	}
	if limit, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64); err == nil {
		filter.Offset = offset
	}

	users, err := h.services.UserService.ListUsers(r.Context(), filter)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listUsers").Msg("error: listing users")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	respond(w, models.OK(users), http.StatusOK)
}

// getUser handles GET /api/admin/users/{id}.
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.services.UserService.GetUser(r.Context(), userID)
	if err != nil {
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	respond(w, models.OK(user), http.StatusOK)
}

// createUser handles POST /api/admin/users. Accounts created here get the
// registration default role; role changes are a separate update.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var request adminCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	user := models.User{
		Username: request.Username,
		Email:    request.Email,
		Name:     request.Name,
	}

	created, err := h.services.AuthService.Register(r.Context(), user, request.Password)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.createUser").Msg("user creation rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("user_id", created.UserID).Msg("user created by admin")
	respond(w, models.OK(created), http.StatusCreated)
}

// updateUser handles PUT /api/admin/users/{id}. Absent fields stay as they
// are; the password field, when present, arrives in plaintext and is hashed
// by the service.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request adminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	update := models.UserUpdate{
		UserID:                userID,
		Username:              request.Username,
		Email:                 request.Email,
		Name:                  request.Name,
		PasswordHash:          request.Password,
		RoleID:                request.RoleID,
		AdditionalPermissions: request.AdditionalPermissions,
		IsActive:              request.IsActive,
	}

	if err := h.services.UserService.UpdateUser(r.Context(), update); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.updateUser").Int64("user_id", userID).Msg("user update rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("user_id", userID).Msg("user updated")
	respond(w, models.OK(nil), http.StatusOK)
}

// deleteUser handles DELETE /api/admin/users/{id}. Deletion is a soft
// tombstone; the row survives for audit.
func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.services.UserService.DeleteUser(r.Context(), userID); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.deleteUser").Int64("user_id", userID).Msg("user deletion rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("user_id", userID).Msg("user soft-deleted")
	respond(w, models.OK(nil), http.StatusOK)
}

// pathID parses a numeric chi URL parameter, answering 400 itself when the
// value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respond(w, models.Fail("invalid "+param+" parameter"), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
