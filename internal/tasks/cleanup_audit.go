package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	// DefaultAuditRetentionDays applies when a cleanup task carries no retention.
	DefaultAuditRetentionDays = 30

	// AuditCleanupQueue names the backlite queue holding retention runs.
	AuditCleanupQueue = "audit_cleanup"
)

var errNoCleaner = errors.New("audit event cleaner not configured")

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask is one retention run over the audit trail. Catalog
// rows are never touched.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Days returns the retention in days, falling back to the default.
func (t CleanupAuditEventsTask) Days() int {
	if t.RetentionDays <= 0 {
		return DefaultAuditRetentionDays
	}
	return t.RetentionDays
}

// Config retries a failed run three times and keeps the payload of failed
// runs for a day.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        AuditCleanupQueue,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func runAuditCleanup(ctx context.Context, cleaner AuditEventCleaner, task CleanupAuditEventsTask) error {
	if cleaner == nil {
		return errNoCleaner
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	days := task.Days()
	deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		return fmt.Errorf("cleanup audit events: %w", err)
	}

	log.Printf("Audit cleanup removed %d events older than %d days", deleted, days)
	return nil
}

// CleanupAuditEventsProcessor runs queued retention tasks against cleaner.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		return runAuditCleanup(ctx, cleaner, task)
	}
}

// NewCleanupAuditEventsQueue binds the retention processor to a queue.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}

// EnqueueAuditCleanup queues one retention run for the workers.
func (c *Client) EnqueueAuditCleanup(retentionDays int) error {
	ids, err := c.Add(CleanupAuditEventsTask{RetentionDays: retentionDays}).Save()
	if err != nil {
		return fmt.Errorf("enqueue audit cleanup: %w", err)
	}
	log.Printf("Audit cleanup queued as %v", ids)
	return nil
}

// InlineAuditCleanup runs retention in the caller's goroutine when the queue
// is disabled or the catalog database is not SQLite.
type InlineAuditCleanup struct {
	Cleaner AuditEventCleaner
}

// EnqueueAuditCleanup runs one retention pass immediately.
func (i InlineAuditCleanup) EnqueueAuditCleanup(retentionDays int) error {
	return runAuditCleanup(context.Background(), i.Cleaner, CleanupAuditEventsTask{RetentionDays: retentionDays})
}
