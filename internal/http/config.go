package http

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/readonly"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  CatalogService
	Activity ActivityReader

	// Authentication
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager

	// CSRF protection is enabled when the secret is set.
	CSRFSecret    []byte
	SecureCookies bool

	// Upload limits for the book forms
	Uploads config.Upload

	// Optional read-only mode
	ReadOnly *readonly.Middleware

	// Dependencies probed by GET /health
	HealthChecks map[string]Pinger

	// Application info
	Version string
}
