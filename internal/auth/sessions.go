package auth

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID  = "user_id"
	SessionKeyName    = "name"
	SessionKeyEmail   = "email"
	SessionKeyLoginAt = "login_at"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

const defaultSessionLifetime = 24 * time.Hour

func init() {
	gob.Register(time.Time{})
}

// SessionManager binds authenticated users to scs sessions. Every method
// takes the request context that scs loaded the session into.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager over store. A nil
// store keeps the scs in-memory default.
func NewSessionManager(store scs.Store, cfg config.Auth) *SessionManager {
	sm := scs.New()
	if store != nil {
		sm.Store = store
	}

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = defaultSessionLifetime
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = false

	return &SessionManager{SessionManager: sm}
}

// StartSession binds user to the session after a successful Verify. The
// token is renewed so a pre-login token can never carry an identity.
func (sm *SessionManager) StartSession(ctx context.Context, user *entities.User) error {
	if err := sm.RenewToken(ctx); err != nil {
		return apperr.Storage("renew session", err)
	}

	// Stored as int to match GetInt() retrieval
	sm.Put(ctx, SessionKeyUserID, int(user.ID))
	sm.Put(ctx, SessionKeyName, user.Name)
	sm.Put(ctx, SessionKeyEmail, user.Email)
	sm.Put(ctx, SessionKeyLoginAt, time.Now())

	return nil
}

// CurrentUser returns the user bound to the session, if any.
func (sm *SessionManager) CurrentUser(ctx context.Context) (uint, bool) {
	id := sm.GetInt(ctx, SessionKeyUserID)
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// RequireAuthenticated guards mutating operations.
func (sm *SessionManager) RequireAuthenticated(ctx context.Context) (uint, error) {
	id, ok := sm.CurrentUser(ctx)
	if !ok {
		return 0, apperr.ErrUnauthenticated
	}
	return id, nil
}

// EndSession clears all bound state. Ending an anonymous session is a no-op
// success.
func (sm *SessionManager) EndSession(ctx context.Context) error {
	if err := sm.Destroy(ctx); err != nil {
		return apperr.Storage("destroy session", err)
	}
	return nil
}

// SessionData holds the denormalized user fields kept in the session.
type SessionData struct {
	UserID  uint      `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	LoginAt time.Time `json:"login_at"`
}

// SessionData retrieves all session data at once, or nil when anonymous.
func (sm *SessionManager) SessionData(ctx context.Context) *SessionData {
	userID, ok := sm.CurrentUser(ctx)
	if !ok {
		return nil
	}

	loginAt, _ := sm.Get(ctx, SessionKeyLoginAt).(time.Time)

	return &SessionData{
		UserID:  userID,
		Name:    sm.GetString(ctx, SessionKeyName),
		Email:   sm.GetString(ctx, SessionKeyEmail),
		LoginAt: loginAt,
	}
}
