package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/favourites"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/sessionstore"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ catalog.BookStore = (*books.Repository)(nil)

// FavoriteStore implementations
var _ catalog.FavoriteStore = (*favourites.Repository)(nil)

// UserStore implementations
var _ auth.UserStore = (*users.Repository)(nil)

// Session stores
var _ scs.Store = (*sessionstore.RedisStore)(nil)
var _ scs.CtxStore = (*sessionstore.RedisStore)(nil)

// =============================================================================
// Services consumed by the HTTP layer
// =============================================================================

var _ http.CatalogService = (*catalog.Service)(nil)
var _ http.ActivityReader = (*audit.Service)(nil)

// Health check probes
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*tasks.Client)(nil)
var _ http.Pinger = http.PingFunc(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ catalog.AuditLogger = (*audit.Service)(nil)
var _ auth.AuditLogger = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// CleanupEnqueuer implementations
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = tasks.InlineAuditCleanup{}
