// Package auth provides the credential store and the session gate.
//
// The credential store (Service) registers users with bcrypt-hashed
// passwords and verifies logins without revealing whether an email exists.
// The session gate (SessionManager) binds a verified user to an scs session;
// the session context is the request context scs loads, and it is passed
// explicitly to StartSession, CurrentUser, RequireAuthenticated and
// EndSession.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF key, generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Absolute session lifetime
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=true              # gorilla/csrf on unsafe methods
//	SESSION_STORE=sqlite|memory|redis   # scs backing store
//
// # Usage
//
//	store, _ := auth.NewStore(cfg.Session.Store, auth.StoreDeps{SQLDB: sqlDB})
//	sessions := auth.NewSessionManager(store, cfg.Auth)
//	service := auth.NewService(users.NewRepository(db), cfg.Auth)
//	mw := auth.NewMiddleware(service, sessions)
//	router.Use(sessions.SessionLoadSave(), mw.Handler())
//	api.POST("/books", mw.RequireAuth(), handler)
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)  // 0 when anonymous
package auth
