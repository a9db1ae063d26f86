// Package readonly blocks catalog writes while leaving reads and the
// authentication flow available.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

// ContextKeyReadOnly stores the read-only flag in the Gin context.
const ContextKeyReadOnly = "read_only"

// DefaultAllowedPrefixes lists the paths that accept writes in read-only
// mode.
var DefaultAllowedPrefixes = []string{"/api/auth/"}

// Middleware rejects unsafe methods with 403 when enabled.
type Middleware struct {
	enabled bool
	allowed []string
}

// NewMiddleware creates a read-only mode middleware. Without prefixes the
// auth routes stay writable.
func NewMiddleware(enabled bool, allowedPrefixes ...string) *Middleware {
	if len(allowedPrefixes) == 0 {
		allowedPrefixes = DefaultAllowedPrefixes
	}
	return &Middleware{enabled: enabled, allowed: allowedPrefixes}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyReadOnly, m.enabled)

		if !m.enabled || isSafeMethod(c.Request.Method) || m.isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		status, body := apperr.HTTPResponse(apperr.ErrForbidden)
		body.Error = "the catalog is in read-only mode"
		c.AbortWithStatusJSON(status, body)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func (m *Middleware) isAllowedPath(path string) bool {
	for _, allowed := range m.allowed {
		if strings.HasPrefix(path, allowed) {
			return true
		}
	}
	return false
}

// IsReadOnly reports whether the request passed through an enabled
// read-only middleware.
func IsReadOnly(c *gin.Context) bool {
	return c.GetBool(ContextKeyReadOnly)
}
