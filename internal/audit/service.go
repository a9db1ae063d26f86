// Package audit records who did what to accounts and books. Events are
// written in the background so a slow audit insert never delays a request.
package audit

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Actions recorded by the catalog and the auth handlers.
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionBookCreate     = "book_create"
	ActionBookUpdate     = "book_update"
	ActionBookDelete     = "book_delete"
	ActionFavoriteAdd    = "favorite_add"
	ActionFavoriteRemove = "favorite_remove"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync is written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogBook records a create, update or delete of a book.
func (s *Service) LogBook(userID uint, action string, bookID uint, title string) {
	description := fmt.Sprintf("Book #%d", bookID)
	if title != "" {
		description = fmt.Sprintf("%s: %s", description, title)
	}

	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBook,
		Action:      action,
		Description: truncate(description, 500),
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogFavorite records a favorite being added or removed.
func (s *Service) LogFavorite(userID, bookID uint, added bool) {
	action := ActionFavoriteRemove
	if added {
		action = ActionFavoriteAdd
	}

	s.LogAsync(&entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventFavorite,
		Action:    action,
		EntityID:  &bookID,
		Status:    entities.AuditStatusSuccess,
	})
}

// GetEvents retrieves paginated audit events of one user.
func (s *Service) GetEvents(userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
