// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CleanupEnqueuer hands one audit cleanup run to whatever executes it: the
// background task queue or an inline runner.
type CleanupEnqueuer interface {
	EnqueueAuditCleanup(retentionDays int) error
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// AuditCleanupScheduler periodically enqueues removal of audit events older
// than the retention period.
type AuditCleanupScheduler struct {
	enqueuer      CleanupEnqueuer
	schedule      string
	retentionDays int

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewAuditCleanupScheduler creates a scheduler instance.
func NewAuditCleanupScheduler(enqueuer CleanupEnqueuer, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start registers the job and starts the cron loop. The scheduler stops when
// ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runCleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancel = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %d days", s.schedule, s.retentionDays)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow enqueues a cleanup immediately, outside the schedule.
func (s *AuditCleanupScheduler) RunNow() error {
	return s.enqueuer.EnqueueAuditCleanup(s.retentionDays)
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup fires, or nil when stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		sched, err := scheduleParser.Parse(s.schedule)
		if err != nil {
			return nil
		}
		next = sched.Next(time.Now())
	}
	return &next
}

func (s *AuditCleanupScheduler) runCleanup() {
	if err := s.enqueuer.EnqueueAuditCleanup(s.retentionDays); err != nil {
		log.Printf("Audit cleanup scheduler: %v", err)
	}
}
