// Package jobs runs background tasks on a cron schedule.
// scheduler.go sets up the periodic invariant audit of every economy record.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// auditTimeout bounds a single audit run.
const auditTimeout = 10 * time.Minute

// AuditReport summarizes one audit run.
type AuditReport struct {
	Checked  int
	Violated int
}

// Scheduler runs background tasks.
type Scheduler struct {
	cron     *cron.Cron
	store    economy.Store
	schedule string
}

// NewScheduler creates a scheduler running the audit on a standard cron schedule (UTC).
func NewScheduler(store economy.Store, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		store:    store,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, auditTimeout)
		defer cancel()

		log.Debug("[CRON] Economy audit started")
		report, err := Audit(runCtx, s.store)
		if err != nil {
			log.WithError(err).Error("[CRON] Economy audit failed")
			return
		}
		log.WithFields(log.Fields{
			"checked":  report.Checked,
			"violated": report.Violated,
		}).Info("[CRON] Economy audit finished")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.WithField("audit", s.schedule).Info("Scheduler started (UTC)")
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

// Audit walks every record and logs each broken invariant. Records are not
// repaired here: they are normalized on their next load.
func Audit(ctx context.Context, store economy.Store) (AuditReport, error) {
	var report AuditReport
	err := store.ForEach(ctx, func(rec *economy.Record) error {
		report.Checked++
		violations := rec.Violations()
		if len(violations) == 0 {
			return nil
		}
		report.Violated++
		log.WithFields(log.Fields{
			"session":    rec.SessionID,
			"user_id":    rec.UserID,
			"violations": violations,
		}).Warn("Economy record violates invariants")
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("audit aborted after %d records: %w", report.Checked, err)
	}
	return report, nil
}
