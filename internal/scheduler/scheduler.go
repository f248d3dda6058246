package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvest/internal/config"
	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/export"
	"github.com/mamadbah2/harvest/pkg/clients/notify"
)

// systemPrincipal is the read-only identity scheduled jobs act as.
var systemPrincipal = models.Principal{Username: "scheduler", Role: models.RoleViewer}

// Source is the query surface the scheduled jobs read from.
type Source interface {
	WeeklySummary(p models.Principal) (string, error)
	Workbook(p models.Principal) ([]export.Table, error)
}

// Scheduler runs the weekly summary and the spreadsheet mirror on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	source   Source
	notifier notify.Client
	sheets   export.SheetSink
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. sheets may be nil, in which
// case the workbook is not mirrored.
func NewScheduler(cfg config.ReportingConfig, source Source, notifier notify.Client, sheets export.SheetSink, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard five-field cron expressions, evaluated in the configured zone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		schedule: cfg.CronSchedule,
		source:   source,
		notifier: notifier,
		sheets:   sheets,
		logger:   logger,
	}, nil
}

// Start registers the weekly job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runWeekly); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWeekly() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SendWeeklySummary(ctx); err != nil {
		s.logger.Error("failed to send weekly summary", zap.Error(err))
	}
	if err := s.MirrorWorkbook(ctx); err != nil {
		s.logger.Error("failed to mirror workbook", zap.Error(err))
	}
}

// SendWeeklySummary posts the week-to-date summary to the notifier.
func (s *Scheduler) SendWeeklySummary(ctx context.Context) error {
	s.logger.Info("generating weekly summary")
	summary, err := s.source.WeeklySummary(systemPrincipal)
	if err != nil {
		return fmt.Errorf("generate weekly summary: %w", err)
	}
	if err := s.notifier.Send(ctx, summary); err != nil {
		return err
	}
	s.logger.Info("weekly summary sent")
	return nil
}

// MirrorWorkbook pushes every collection to the configured spreadsheet.
func (s *Scheduler) MirrorWorkbook(ctx context.Context) error {
	if s.sheets == nil {
		return nil
	}
	tables, err := s.source.Workbook(systemPrincipal)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	if err := export.PushSheets(ctx, s.sheets, tables); err != nil {
		return err
	}
	s.logger.Info("workbook mirrored", zap.Int("sheets", len(tables)))
	return nil
}
