// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/ratelimit"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// validate reports per-field problems. The rules mirror what the auth
// service enforces; running them here lets the envelope name the offending
// fields instead of collapsing everything into one generic message.
func (r registerRequest) validate() map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(r.Username) == "" {
		fields["username"] = "username is required"
	}
	if !strings.Contains(strings.TrimSpace(r.Email), "@") {
		fields["email"] = "a valid email address is required"
	}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "name is required"
	}
	if len(r.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	return fields
}

type loginRequest struct {
	// Identifier is the username or email; the service resolves either.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// register handles POST /api/auth/register.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var request registerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Warn().Err(err).Msg("malformed registration payload")
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	if fields := request.validate(); len(fields) > 0 {
		respond(w, models.FailValidation("invalid data provided", fields), http.StatusBadRequest)
		return
	}

	user := models.User{
		Username: request.Username,
		Email:    request.Email,
		Name:     request.Name,
	}

	created, err := h.services.AuthService.Register(ctx, user, request.Password)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.register").Msg("registration rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	log.Info().Int64("user_id", created.UserID).Msg("user registered")
	respond(w, models.OK(created), http.StatusCreated)
}

// login handles POST /api/auth/login. On top of the per-IP route limit it
// consumes an identifier-keyed budget, so a distributed guessing run against
// one account is throttled no matter how many sources it comes from.
//
// Success sets the session cookie for browsers and returns a bearer token
// for API clients in the same response.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Warn().Err(err).Msg("malformed login payload")
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	decision := h.limiter.Attempt(ctx, ratelimit.BucketLogin, request.Identifier)
	if !decision.Allowed {
		log.Warn().Str("identifier_key", request.Identifier).Msg("login attempts rate limited")
		respondRateLimited(w, decision.RetryAfter)
		return
	}

	user, err := h.services.AuthService.Login(ctx, request.Identifier, request.Password)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.login").Msg("login rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	if err := h.limiter.Reset(ctx, ratelimit.BucketLogin, request.Identifier); err != nil {
		log.Warn().Err(err).Msg("login budget reset failed")
	}

	session, err := h.sessions.Create(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*Handler.login").Msg("error: session creation failed")
		respond(w, models.Fail("internal server error"), http.StatusInternalServerError)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*Handler.login").Msg("error: token creation failed")
		respond(w, models.Fail("internal server error"), http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, r, session.SessionID)
	log.Info().Int64("user_id", user.UserID).Msg("user logged in")
	respond(w, models.OK(map[string]any{
		"user":  user,
		"token": token.SignedString,
	}), http.StatusOK)
}

// logout handles POST /api/auth/logout. Destroying an already-gone session
// is fine; logout never fails visibly for the client.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.sessions.Destroy(ctx, cookie.Value); err != nil {
			logger.FromRequest(r).Warn().Err(err).Msg("session destroy failed")
		}
	}

	h.clearSessionCookie(w, r)
	respond(w, models.OK(nil), http.StatusOK)
}

// sessionInfo handles GET /api/auth/session, echoing the caller's resolved
// identity.
func (h *Handler) sessionInfo(w http.ResponseWriter, r *http.Request) {
	session, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		respond(w, models.Fail("authentication required"), http.StatusUnauthorized)
		return
	}
	respond(w, models.OK(session), http.StatusOK)
}

// forgotPassword handles POST /api/auth/password/forgot. The response is the
// same whether or not the address belongs to an account.
func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var request forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Warn().Err(err).Msg("malformed reset request payload")
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	decision := h.limiter.Attempt(ctx, ratelimit.BucketPasswordReset, request.Email)
	if !decision.Allowed {
		respondRateLimited(w, decision.RetryAfter)
		return
	}

	if err := h.services.ResetService.RequestReset(ctx, request.Email); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.forgotPassword").Msg("reset request rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	respond(w, models.OK(map[string]string{
		"message": "if the address belongs to an account, a reset link has been sent",
	}), http.StatusOK)
}

// resetPassword handles POST /api/auth/password/reset.
func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var request resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Warn().Err(err).Msg("malformed reset payload")
		respond(w, models.Fail("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := h.services.ResetService.ResetPassword(ctx, request.Token, request.Password); err != nil {
		log.Warn().Err(err).Str("func", "*Handler.resetPassword").Msg("password reset rejected")
		respond(w, models.Fail(clientMessage(err)), statusFromError(err))
		return
	}

	respond(w, models.OK(map[string]string{"message": "password updated"}), http.StatusOK)
}

// withGuestOnly redirects already-authenticated browsers away from guest
// routes (login, registration). A session-store failure lets the request
// through: blocking a login page on cache trouble helps nobody.
func (h *Handler) withGuestOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		if _, err := h.sessions.Get(r.Context(), cookie.Value); err == nil {
			if wantsHTML(r) {
				http.Redirect(w, r, "/api/dashboard", http.StatusSeeOther)
				return
			}
			respond(w, models.Fail("already authenticated"), http.StatusConflict)
			return
		}

		next.ServeHTTP(w, r)
	})
}
