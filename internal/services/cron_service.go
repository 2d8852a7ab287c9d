package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RouteDataLoader reloads route data
type RouteDataLoader interface {
	LoadRouteData(ctx context.Context) error
}

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	loader        RouteDataLoader
	schedule      string
	reloadTimeout time.Duration
	logger        *logrus.Logger
}

// NewCronService creates a new CronService. schedule uses the six-field cron
// format with seconds; an empty schedule disables the reload job.
func NewCronService(loader RouteDataLoader, schedule string, reloadTimeout time.Duration, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:          cron.New(cron.WithSeconds()),
		loader:        loader,
		schedule:      schedule,
		reloadTimeout: reloadTimeout,
		logger:        logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	if s.schedule == "" {
		s.logger.Info("Route data reload schedule not set, cron service disabled")
		return nil
	}

	// "0 0 4 * * *" = At 4:00 AM every day
	_, err := s.cron.AddFunc(s.schedule, s.reloadRouteDataJob)
	if err != nil {
		return fmt.Errorf("failed to schedule route data reload job: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: Reload route data")

	s.cron.Start()
	s.logger.Info("Cron service started")

	return nil
}

// Stop stops all cron jobs and waits for a running job to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// reloadRouteDataJob refetches routes and rebuilds the transit graph
func (s *CronService) reloadRouteDataJob() {
	s.logger.Info("[CRON] Starting route data reload job...")
	startTime := time.Now()

	ctx := context.Background()
	if s.reloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.reloadTimeout)
		defer cancel()
	}

	if err := s.loader.LoadRouteData(ctx); err != nil {
		s.logger.WithError(err).Error("[CRON] Route data reload failed, keeping previous data")
		return
	}

	s.logger.WithField("duration", time.Since(startTime).String()).Info("[CRON] Route data reloaded")
}

// RunReloadNow runs the reload job immediately
func (s *CronService) RunReloadNow() {
	s.logger.Info("[MANUAL] Running route data reload now...")
	s.reloadRouteDataJob()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"schedule":  s.schedule,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
