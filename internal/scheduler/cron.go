package scheduler

import (
	"context"
	"fmt"

	"github.com/cherry0021/ryot/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	refreshCtrl *controllers.RefreshController
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(refreshCtrl *controllers.RefreshController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		refreshCtrl: refreshCtrl,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 12 hours: refresh stored metadata from providers
	_, err := s.cron.AddFunc("0 */12 * * *", func() {
		s.runRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	// Daily: remove consumption records whose media item is gone
	_, err = s.cron.AddFunc("0 6 * * *", func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial refresh immediately
	go s.runRefresh()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runRefresh executes the metadata refresh job
func (s *Scheduler) runRefresh() {
	s.logger.Info("Running scheduled metadata refresh")
	ctx := context.Background()

	if err := s.refreshCtrl.RefreshAll(ctx); err != nil {
		s.logger.WithError(err).Error("Metadata refresh job failed")
	}
}

// runCleanup executes the dangling record cleanup job
func (s *Scheduler) runCleanup() {
	s.logger.Debug("Running scheduled cleanup")

	if err := s.refreshCtrl.CleanupDangling(); err != nil {
		s.logger.WithError(err).Error("Cleanup job failed")
	}
}
