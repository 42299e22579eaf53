package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reportTimeout bounds a single scheduled report run
const reportTimeout = 30 * time.Second

// CronService runs scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	reports  *ReportService
	schedule string
	log      *zap.Logger
}

// NewCronService creates a new cron service. schedule uses the standard
// five-field cron syntax or a descriptor such as "@daily".
func NewCronService(reports *ReportService, schedule string, log *zap.Logger) *CronService {
	return &CronService{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		reports:  reports,
		schedule: schedule,
		log:      log,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runReport)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("cron service started", zap.String("report_schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron service stopped")
}

func (s *CronService) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	s.reports.LogSummary(ctx)
}
