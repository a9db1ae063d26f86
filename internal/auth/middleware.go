package auth

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyName   = "auth_name"
	ContextKeyEmail  = "auth_email"
)

// Middleware resolves the session user for every request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
	}
}

// Handler stores the session user in the Gin context. Anonymous requests
// pass through; routes that need a user add RequireAuth.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.sessionManager.CurrentUser(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		user, err := m.service.GetUserByID(userID)
		switch {
		case err == nil:
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyName, user.Name)
			c.Set(ContextKeyEmail, user.Email)
		case errors.Is(err, apperr.ErrNotFound):
			// The user behind a live session no longer exists.
			_ = m.sessionManager.EndSession(c.Request.Context())
		default:
			log.Printf("Failed to load session user %d: %v", userID, err)
			status, body := apperr.HTTPResponse(err)
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			status, body := apperr.HTTPResponse(apperr.ErrUnauthenticated)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 when the request is anonymous.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUserName retrieves the authenticated user's display name.
func GetUserName(c *gin.Context) string {
	return c.GetString(ContextKeyName)
}

// GetUserEmail retrieves the authenticated user's email.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

// IsAuthenticated returns true if the request carries a session user.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
