package audit

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
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

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    ActionBookCreate,
		Status:    entities.AuditStatusSuccess,
	}

	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, ActionBookCreate, saved.Action)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(1, ActionLogin, "10.0.0.1", strings.Repeat("a", 600), true)
	svc.LogAuth(0, ActionLogin, "10.0.0.2", "curl", false)
	svc.Wait()

	var events []entities.AuditEvent
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 2)

	byIP := map[string]entities.AuditEvent{}
	for _, e := range events {
		byIP[e.IPAddress] = e
	}
	assert.Equal(t, entities.AuditStatusSuccess, byIP["10.0.0.1"].Status)
	assert.Len(t, byIP["10.0.0.1"].UserAgent, 500)
	assert.Equal(t, entities.AuditStatusFailed, byIP["10.0.0.2"].Status)
	assert.Equal(t, entities.AuditEventAuth, byIP["10.0.0.2"].EventType)
}

func TestService_LogBook(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogBook(7, ActionBookDelete, 42, "Dune")
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", ActionBookDelete).First(&event).Error)
	assert.Equal(t, uint(7), event.UserID)
	assert.Equal(t, entities.AuditEventBook, event.EventType)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, uint(42), *event.EntityID)
	assert.Equal(t, "Book #42: Dune", event.Description)
}

func TestService_LogFavorite(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogFavorite(3, 9, true)
	svc.LogFavorite(3, 9, false)
	svc.Wait()

	var count int64
	require.NoError(t, db.Model(&entities.AuditEvent{}).Where("action = ?", ActionFavoriteAdd).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&entities.AuditEvent{}).Where("action = ?", ActionFavoriteRemove).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	events, total, err := svc.GetEvents(3, entities.AuditEventFavorite, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    ActionLogin,
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-40 * 24 * time.Hour),
	}))
	require.NoError(t, svc.Log(&entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    ActionLogout,
		Status:    entities.AuditStatusSuccess,
	}))

	deleted, err := svc.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
