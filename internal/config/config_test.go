package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, SessionStoreSQLite, cfg.Session.Store)
	assert.Equal(t, 12, cfg.Catalog.PageSize)
	assert.Equal(t, int64(2*1024*1024), cfg.Upload.MaxCoverBytes)
	assert.Equal(t, int64(80485760), cfg.Upload.MaxPDFBytes)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.False(t, cfg.ReadOnly.Enabled)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CATALOG_PAGE_SIZE", "24")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=localhost user=books dbname=books")
	t.Setenv("AUTH_SESSION_LIFETIME", "2h")
	t.Setenv("READ_ONLY_MODE", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, 24, cfg.Catalog.PageSize)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=localhost user=books dbname=books", cfg.Database.DSN)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionLifetime)
	assert.True(t, cfg.ReadOnly.Enabled)
}

func TestSessionStore(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		driver   string
		want     string
	}{
		{"explicit wins", SessionStoreRedis, DriverSQLite, SessionStoreRedis},
		{"sqlite default", "", DriverSQLite, SessionStoreSQLite},
		{"postgres default", "", DriverPostgres, SessionStoreMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sessionStore(tt.explicit, tt.driver))
		})
	}
}
