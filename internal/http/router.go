package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.ReadOnly != nil {
		router.Use(cfg.ReadOnly.Handler())
	}

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")

	if len(cfg.CSRFSecret) > 0 {
		api.GET("/csrf", auth.CSRFTokenHandler)
	}

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(api.Group("/auth"))
	}

	// Session-only routes
	authed := api.Group("")
	if cfg.AuthMiddleware != nil {
		authed.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.Catalog != nil {
		booksController := NewBooksController(cfg.Catalog, cfg.Uploads)
		favouritesController := NewFavouritesController(cfg.Catalog)

		// Public catalog
		api.GET("/books", booksController.ListBooks)
		api.GET("/books/search", booksController.SearchBooks)
		api.GET("/books/:id", booksController.GetBook)
		api.GET("/books/:id/pdf", booksController.DownloadPDF)
		api.GET("/books/:id/cover", booksController.GetCover)

		// Writes
		authed.POST("/books", booksController.CreateBook)
		authed.PATCH("/books/:id", booksController.UpdateBook)
		authed.DELETE("/books/:id", booksController.DeleteBook)

		// Favourites
		authed.POST("/books/:id/favorite", favouritesController.ToggleFavourite)
		authed.PUT("/books/:id/favorite", favouritesController.AddFavourite)
		authed.DELETE("/books/:id/favorite", favouritesController.RemoveFavourite)

		// Personal lists
		authed.GET("/me/books", booksController.ListMyBooks)
		authed.GET("/me/favorites", booksController.ListFavorites)
	}

	if cfg.Activity != nil {
		auditController := NewAuditController(cfg.Activity)
		authed.GET("/me/activity", auditController.GetActivity)
	}

	return router
}
