package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/config"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/ids"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/permission"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/repository"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/security"
	"github.com/avrohommoshebaum/school-crm-sub001/internal/session"
)

const (
	ctxKeyUser        = "current_user"
	ctxKeyPermissions = "permissions"
	ctxKeySessionID   = "session_id"
)

// UserRehydrator re-fetches the full user record for the id stored in a
// session payload. Implemented by repository.UserRepository.
type UserRehydrator interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// SessionManager loads and saves session state around each request and turns
// a verified login into a durable session plus cookie.
type SessionManager struct {
	store  session.Store
	users  UserRehydrator
	cfg    config.SessionConfig
	secure bool
	log    zerolog.Logger
}

func NewSessionManager(store session.Store, users UserRehydrator, cfg config.SessionConfig, production bool, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:  store,
		users:  users,
		cfg:    cfg,
		secure: production,
		log:    log,
	}
}

// Middleware attaches the authenticated user and its resolved permission set
// to the request context. Requests with no session, a dangling user id, or an
// inactive user proceed as anonymous; a store failure also fails closed to
// anonymous rather than trusting an unreadable session.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(m.cfg.CookieName)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		sid, ok := security.VerifySessionID(m.cfg.Secret, cookie)
		if !ok {
			c.Next()
			return
		}
		c.Set(ctxKeySessionID, sid)

		payload, err := m.store.Get(c.Request.Context(), sid)
		if err != nil {
			m.log.Error().Err(err).Msg("session load failed; treating request as anonymous")
			c.Next()
			return
		}
		if payload == nil || payload.UserID == "" {
			c.Next()
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), payload.UserID)
		if err != nil {
			if !errors.Is(err, repository.ErrUserNotFound) {
				m.log.Error().Err(err).Str("user_id", payload.UserID).Msg("user rehydration failed")
			}
			// A session pointing at a vanished user is unauthenticated, not an error.
			c.Next()
			return
		}
		if !user.Active() {
			c.Next()
			return
		}

		c.Set(ctxKeyUser, user)
		c.Set(ctxKeyPermissions, permission.Resolve(user))
		c.Next()
	}
}

// Login writes a fresh session for the verified user and issues the cookie.
// The session id is always regenerated so a pre-login cookie can never be
// promoted to an authenticated one.
func (m *SessionManager) Login(c *gin.Context, user models.User) error {
	sid := ids.New()
	if err := m.store.Set(c.Request.Context(), sid, &session.Payload{UserID: user.ID}); err != nil {
		return err
	}

	c.Set(ctxKeySessionID, sid)
	c.Set(ctxKeyUser, user)
	c.Set(ctxKeyPermissions, permission.Resolve(user))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		m.cfg.CookieName,
		security.SignSessionID(m.cfg.Secret, sid),
		int(m.cfg.MaxAge.Seconds()),
		"/",
		"",
		m.secure,
		true, // httpOnly
	)
	return nil
}

// Logout destroys the current session and clears the cookie. Calling it
// without a live session is a no-op.
func (m *SessionManager) Logout(c *gin.Context) error {
	if sid := c.GetString(ctxKeySessionID); sid != "" {
		if err := m.store.Destroy(c.Request.Context(), sid); err != nil {
			return err
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, "", -1, "/", "", m.secure, true)
	return nil
}

// CurrentUser returns the authenticated user attached by the session
// middleware, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(ctxKeyUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

// Permissions returns the resolved permission set for the current request.
func Permissions(c *gin.Context) (permission.Set, bool) {
	value, exists := c.Get(ctxKeyPermissions)
	if !exists {
		return nil, false
	}
	set, ok := value.(permission.Set)
	return set, ok
}
