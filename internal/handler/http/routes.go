// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-access-gate/internal/ratelimit"
	"github.com/MKhiriev/go-access-gate/models"
)

// Routes builds the full route tree. Middleware order is the access
// decision pipeline: trace id, logging, panic recovery, the global rate
// limit, the origin check, then the configured protected-prefix guard;
// authentication, role and permission requirements, and endpoint buckets
// attach per group. A request rejected at any stage never reaches a later
// one.
func (h *Handler) Routes() *chi.Mux {
	router := chi.NewRouter()

	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Recoverer)
	router.Use(h.withRateLimit(ratelimit.BucketGeneral))
	router.Use(h.withOriginCheck)
	router.Use(h.withProtectedPrefixes)

	// public
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.healthCheck)
		r.Post("/api/auth/password/reset", h.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.withGuestOnly)
			r.With(h.withRateLimit(ratelimit.BucketRegister)).Post("/api/auth/register", h.register)
			r.With(h.withRateLimit(ratelimit.BucketLogin)).Post("/api/auth/login", h.login)
			r.With(h.withRateLimit(ratelimit.BucketPasswordReset)).Post("/api/auth/password/forgot", h.forgotPassword)
		})
	})

	// authenticated
	router.Group(func(r chi.Router) {
		r.Use(h.withAuth)

		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/auth/session", h.sessionInfo)
		r.Get("/api/dashboard", h.dashboard)
	})

	// admin
	router.Group(func(r chi.Router) {
		r.Use(h.withAuth)
		r.Use(h.requireRole(models.RoleSlugAdmin, models.RoleSlugManager))
		r.Use(h.withRateLimit(ratelimit.BucketAPI))

		r.With(h.requirePermission("users.view")).Get("/api/admin/users", h.listUsers)
		r.With(h.requirePermission("users.view")).Get("/api/admin/users/{id}", h.getUser)
		r.With(h.requirePermission("users.create")).Post("/api/admin/users", h.createUser)
		r.With(h.requirePermission("users.edit")).Put("/api/admin/users/{id}", h.updateUser)
		r.With(h.requirePermission("users.delete")).Delete("/api/admin/users/{id}", h.deleteUser)

		r.With(h.requirePermission("roles.view")).Get("/api/admin/roles", h.listRoles)
		r.With(h.requirePermission("roles.view")).Get("/api/admin/roles/{id}", h.getRole)
		r.With(h.requirePermission("roles.create")).Post("/api/admin/roles", h.createRole)
		r.With(h.requirePermission("roles.edit")).Put("/api/admin/roles/{id}", h.updateRole)
		r.With(h.requirePermission("roles.delete")).Delete("/api/admin/roles/{id}", h.deleteRole)
		r.With(h.requirePermission("roles.manage")).Get("/api/admin/roles/{id}/permissions", h.rolePermissions)
		r.With(h.requirePermission("roles.manage")).Put("/api/admin/roles/{id}/permissions", h.assignPermissions)
		r.With(h.requirePermission("roles.manage")).Put("/api/admin/roles/{id}/default", h.setDefaultRole)

		r.With(h.requirePermission("permissions.view")).Get("/api/admin/permissions", h.listPermissions)
		r.With(h.requirePermission("permissions.create")).Post("/api/admin/permissions", h.createPermission)
		r.With(h.requirePermission("permissions.delete")).Delete("/api/admin/permissions/{id}", h.deletePermission)

		r.With(h.requirePermission("system.manage")).Delete("/api/admin/ratelimit/{bucket}/{key}", h.clearRateLimit)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, models.Fail("not found"), http.StatusNotFound)
	})

	return router
}
