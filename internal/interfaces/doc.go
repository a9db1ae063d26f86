// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookStore: Book metadata and blobs (internal/catalog/interfaces.go)
//   - FavoriteStore: Ownership and favorites (internal/catalog/interfaces.go)
//   - UserStore: Accounts and credentials (internal/auth/service.go)
//
// ## HTTP Layer Interfaces
//
//   - CatalogService: Everything the book and favorite controllers call (internal/http/stores.go)
//   - ActivityReader: A user's audit trail (internal/http/stores.go)
//   - Pinger: Dependencies probed by GET /health (internal/http/stores.go)
//
// ## Audit Interfaces
//
//   - AuditLogger: Receives auth and catalog events (internal/auth/handlers.go, internal/catalog/interfaces.go)
//   - AuditEventCleaner: Deletes expired events (internal/tasks/cleanup_audit.go)
//   - CleanupEnqueuer: Runs a cleanup on the queue or inline (internal/scheduler/audit_cleanup.go)
//
// # Adding a New Session Store
//
// Sessions are kept by any scs.Store. To add one (e.g., Postgres):
//
//  1. Implement scs.Store (and scs.CtxStore when the backend takes a context)
//     in internal/sessionstore/
//
//     type PostgresStore struct { db *sql.DB }
//
//     func (s *PostgresStore) Find(token string) ([]byte, bool, error)
//     func (s *PostgresStore) Commit(token string, b []byte, expiry time.Time) error
//     func (s *PostgresStore) Delete(token string) error
//
//  2. Add a case to auth.NewStore and a constant to internal/config
//
//  3. Add compile-time checks to checks.go
//
// # Adding a New Health Check
//
// Anything with Ping(ctx) error can be added to the HealthChecks map passed
// to http.NewRouter. Plain functions are adapted with http.PingFunc:
//
//	checks["search"] = http.PingFunc(func(ctx context.Context) error {
//	    return searchClient.Ping(ctx)
//	})
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
