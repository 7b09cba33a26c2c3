// Package session manages server-side login sessions. A session is a JSON
// blob in the shared cache keyed by an opaque UUID; the browser only ever
// holds that UUID in a cookie. Session state never leaves the server, so a
// tampered cookie can at worst name a session that does not exist.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MKhiriev/go-access-gate/internal/cache"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/utils"
	"github.com/MKhiriev/go-access-gate/models"
)

// ErrSessionNotFound is returned when the session ID names no live session.
// Expired, destroyed, and corrupt sessions all surface as this error so the
// caller treats every case as "not logged in".
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Manager creates, resolves, and destroys sessions in the shared cache.
type Manager struct {
	cache  cache.Cache
	logger *logger.Logger
	uuid   *utils.UUIDGenerator
	ttl    time.Duration
	now    func() time.Time
}

// NewManager constructs a session [Manager] with the given idle TTL.
func NewManager(cache cache.Cache, ttl time.Duration, log *logger.Logger) *Manager {
	log.Debug().Msg("creating session manager")
	return &Manager{
		cache:  cache,
		logger: log,
		uuid:   utils.NewUUIDGenerator(),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create stores a fresh session for the user and returns it with its new ID.
// The session is stored fully formed: user identity, role slug, and the
// logged-in flag all set in one write, so no reader can observe a partially
// initialized session.
func (m *Manager) Create(ctx context.Context, user models.User) (models.Session, error) {
	log := logger.FromContext(ctx)

	now := m.now()
	session := models.Session{
		SessionID:    m.uuid.Generate(),
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		Name:         user.Name,
		RoleSlug:     user.RoleSlug,
		LoggedIn:     true,
		CreatedAt:    now,
		LastActivity: now,
	}

	if !session.Valid() {
		log.Error().Int64("user_id", user.UserID).Str("role", user.RoleSlug).Msg("refusing to create invalid session")
		return models.Session{}, errors.New("cannot create session without user identity and role")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return models.Session{}, err
	}
	if err := m.cache.Set(ctx, keyPrefix+session.SessionID, string(payload), m.ttl); err != nil {
		log.Err(err).Str("func", "*Manager.Create").Msg("error: storing session")
		return models.Session{}, err
	}

	return session, nil
}

// Get resolves a session ID to its session. A blob that is missing,
// unreadable, or fails validity checks yields [ErrSessionNotFound]; invalid
// blobs are destroyed rather than repaired, forcing a clean re-login.
func (m *Manager) Get(ctx context.Context, sessionID string) (models.Session, error) {
	log := logger.FromContext(ctx)

	if sessionID == "" {
		return models.Session{}, ErrSessionNotFound
	}

	payload, err := m.cache.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if err != cache.ErrCacheMiss {
			log.Err(err).Str("func", "*Manager.Get").Msg("error: reading session")
		}
		return models.Session{}, ErrSessionNotFound
	}

	var session models.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		log.Warn().Err(err).Msg("destroying unreadable session")
		m.destroy(ctx, sessionID)
		return models.Session{}, ErrSessionNotFound
	}
	session.SessionID = sessionID

	if !session.Valid() {
		log.Warn().Int64("user_id", session.UserID).Str("role", session.RoleSlug).Msg("destroying partial session")
		m.destroy(ctx, sessionID)
		return models.Session{}, ErrSessionNotFound
	}

	return session, nil
}

// Touch stamps the session's last activity and extends its TTL. Errors are
// logged and swallowed: a failed touch never fails the request it rode on.
func (m *Manager) Touch(ctx context.Context, session models.Session) {
	log := logger.FromContext(ctx)

	session.LastActivity = m.now()

	payload, err := json.Marshal(session)
	if err != nil {
		log.Warn().Err(err).Msg("session touch failed")
		return
	}
	if err := m.cache.Set(ctx, keyPrefix+session.SessionID, string(payload), m.ttl); err != nil {
		log.Warn().Err(err).Msg("session touch failed")
	}
}

// Destroy removes the session. Destroying a session that no longer exists
// is not an error.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.cache.Del(ctx, keyPrefix+sessionID)
}

func (m *Manager) destroy(ctx context.Context, sessionID string) {
	if err := m.cache.Del(ctx, keyPrefix+sessionID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("session destroy failed")
	}
}
