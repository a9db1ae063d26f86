package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventBook,
		Action:      "book_create",
		Description: "Created book Dune",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for i := 0; i < 15; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventBook,
			Action:    "book_create",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventAuth,
			Action:    "login",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(-48 * time.Hour),
		}))
	}
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    2,
		EventType: entities.AuditEventFavorite,
		Action:    "favorite_add",
		Status:    entities.AuditStatusSuccess,
	}))

	t.Run("all events of a user", func(t *testing.T) {
		events, total, err := repo.GetEvents(1, "", 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(18), total)
		assert.Len(t, events, 18)
	})

	t.Run("newest first with pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(1, "", 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(18), total)
		require.Len(t, events, 5)
		assert.True(t, events[0].CreatedAt.After(events[4].CreatedAt))

		next, _, err := repo.GetEvents(1, "", 5, 5)
		require.NoError(t, err)
		require.Len(t, next, 5)
		assert.NotEqual(t, events[0].ID, next[0].ID)
	})

	t.Run("filtered by type", func(t *testing.T) {
		events, total, err := repo.GetEvents(1, entities.AuditEventAuth, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		for _, e := range events {
			assert.Equal(t, entities.AuditEventAuth, e.EventType)
		}
	})

	t.Run("default limit", func(t *testing.T) {
		events, _, err := repo.GetEvents(2, "", 0, -1)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for _, age := range []time.Duration{100 * 24 * time.Hour, 95 * 24 * time.Hour, time.Hour} {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventAuth,
			Action:    "login",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(-age),
		}))
	}

	deleted, err := repo.DeleteOldEvents(time.Now().Add(-90 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, total, err := repo.GetEvents(1, "", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
