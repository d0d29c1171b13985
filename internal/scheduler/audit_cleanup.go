package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// CleanupEnqueuer schedules activity log cleanups. *tasks.Client implements it.
type CleanupEnqueuer interface {
	EnqueueAuditCleanup(retentionDays int) error
}

// AuditCleanupScheduler enqueues an activity log cleanup on a cron schedule.
type AuditCleanupScheduler struct {
	enqueuer      CleanupEnqueuer
	schedule      string
	retentionDays int

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewAuditCleanupScheduler(enqueuer CleanupEnqueuer, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          newCron(),
	}
}

// Start schedules the cleanup job until ctx ends.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.schedule, s.RunNow); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.cron.Start()
	s.isRunning = true
	log.Printf("[AUDIT] Cleanup scheduled '%s', keeping %d days", s.schedule, s.retentionDays)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}

// RunNow enqueues a cleanup immediately.
func (s *AuditCleanupScheduler) RunNow() {
	if err := s.enqueuer.EnqueueAuditCleanup(s.retentionDays); err != nil {
		log.Printf("[AUDIT] Failed to enqueue cleanup: %v", err)
	}
}
