package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/session"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
)

// withAuth is the HTTP middleware that resolves the caller's identity.
//
// Two credential paths are accepted, in order:
//  1. the session cookie, resolved against the session store;
//  2. a JWT bearer token in the "Authorization" header.
//
// Both paths converge on the same context state: the session (or a synthetic
// session built from the token's claims) under [utils.SessionCtxKey], and
// the user ID under [utils.UserIDCtxKey]. Downstream middleware and handlers
// never care which credential was presented.
//
// On success the user's activity is touched: the session TTL slides forward
// and last_activity is stamped, both best-effort.
//
// Rejections answer 401 with the JSON envelope, or a redirect to /login for
// browser navigation requests.
func (h *Handler) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		ctx := r.Context()

		// the prefix guard may have resolved the caller already
		if _, ok := utils.GetSessionFromContext(ctx); ok {
			next.ServeHTTP(w, r)
			return
		}

		resolved, err := h.resolveIdentity(r)
		if err != nil {
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("unauthenticated request rejected")
			h.rejectUnauthenticated(w, r)
			return
		}

		if resolved.SessionID != "" {
			h.sessions.Touch(ctx, resolved)
		}
		h.services.UserService.TouchActivity(ctx, resolved.UserID)

		ctx = context.WithValue(ctx, utils.SessionCtxKey, resolved)
		ctx = context.WithValue(ctx, utils.UserIDCtxKey, resolved.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withProtectedPrefixes guards the path prefixes listed in the gate
// configuration. Matching requests go through the full authentication
// middleware even when their route group does not attach it, so the
// configuration, not route wiring alone, decides which paths require an
// identity. Other paths pass through untouched.
func (h *Handler) withProtectedPrefixes(next http.Handler) http.Handler {
	authed := h.withAuth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.isProtectedPath(r.URL.Path) {
			authed.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) isProtectedPath(path string) bool {
	for _, prefix := range h.gate.ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// resolveIdentity turns the request's credentials into a session. Bearer
// tokens yield a synthetic session (no SessionID) built from the claims and
// the user record.
func (h *Handler) resolveIdentity(r *http.Request) (models.Session, error) {
	ctx := r.Context()

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		resolved, err := h.sessions.Get(ctx, cookie.Value)
		if err == nil {
			return resolved, nil
		}
		if err != session.ErrSessionNotFound {
			return models.Session{}, err
		}
		// fall through: a dead cookie plus a valid bearer token still counts
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return models.Session{}, ErrNoCredentials
	}

	tokenString, err := getTokenFromAuthHeader(authHeader)
	if err != nil {
		return models.Session{}, err
	}

	token, err := h.services.AuthService.ParseToken(ctx, tokenString)
	if err != nil {
		return models.Session{}, err
	}

	user, err := h.services.UserService.GetUser(ctx, token.UserID)
	if err != nil {
		return models.Session{}, err
	}
	if !user.IsActive {
		return models.Session{}, ErrNoCredentials
	}

	return models.Session{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
		RoleSlug: user.RoleSlug,
		LoggedIn: true,
	}, nil
}

// rejectUnauthenticated answers 401. Browser navigation (an Accept header
// preferring HTML) is redirected to the login page instead, since a JSON
// envelope is useless to a person clicking links.
func (h *Handler) rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		setFlashCookie(w, r, "please log in to continue")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	respond(w, models.Fail("authentication required"), http.StatusUnauthorized)
}

// wantsHTML reports whether the client is a browser navigating pages rather
// than an API consumer.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value.
//
// The header is expected to follow the standard format:
//
//	Authorization: <scheme> <token>
//
// It returns the following sentinel errors:
//   - [ErrInvalidAuthorizationHeader] — if the header contains fewer than
//     two space-separated parts (i.e. the token is missing entirely).
//   - [ErrEmptyToken] — if the second part exists but is an empty string.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
