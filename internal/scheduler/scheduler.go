package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/config"
	"github.com/mamadbah2/bogarovo/internal/domain/models"
)

// ReportGenerator builds the daily report and its text digest.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context, now time.Time) (models.DailyReport, string, error)
}

// Sender delivers the digest to the farm manager.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  ReportGenerator
	sender   Sender
	cfg      config.ReportingConfig
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler running in the configured timezone.
// sender may be nil, in which case reports are generated but not sent.
func NewScheduler(cfg config.ReportingConfig, reports ReportGenerator, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reports:  reports,
		sender:   sender,
		cfg:      cfg,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start registers the daily report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SendDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// SendDailyReport generates today's report and texts the digest to the
// manager when a phone number and a sender are configured.
func (s *Scheduler) SendDailyReport(ctx context.Context) error {
	s.logger.Info("generating daily report")

	report, digest, err := s.reports.GenerateDailyReport(ctx, s.now().In(s.location))
	if err != nil {
		return fmt.Errorf("generate daily report: %w", err)
	}

	if s.cfg.ManagerPhone == "" || s.sender == nil {
		s.logger.Info("daily report generated, no recipient configured", zap.Int("low_items", report.LowCount))
		return nil
	}

	if err := s.sender.SendText(ctx, s.cfg.ManagerPhone, digest); err != nil {
		return fmt.Errorf("send daily digest: %w", err)
	}

	s.logger.Info("daily report sent", zap.Int("low_items", report.LowCount))
	return nil
}
