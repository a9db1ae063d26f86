package config

// Default locations and limits
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultPageSize matches the catalog grid of 12 books per page
	DefaultPageSize = 12

	// DefaultMaxCoverBytes caps uploaded cover images at 2 MiB
	DefaultMaxCoverBytes = 2 * 1024 * 1024

	// DefaultMaxPDFBytes caps uploaded PDF files
	DefaultMaxPDFBytes = 80485760
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported session stores
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)
