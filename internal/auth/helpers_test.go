package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() config.Auth {
	return config.Auth{
		BcryptCost:       4,
		SessionLifetime:  time.Hour,
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "auth.db")

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func setupService(t *testing.T) *Service {
	t.Helper()
	return NewService(users.NewRepository(setupTestDB(t)), testAuthConfig())
}

func newMemorySessions() *SessionManager {
	return NewSessionManager(memstore.New(), testAuthConfig())
}
