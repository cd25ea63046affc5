package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
	"github.com/telegram-relay-bot/internal/storage"
)

// AdminNotify delivers a report to the administrator
type AdminNotify func(text string) error

// Summarizer produces the natural-language daily summary.
// Implemented by the summary generator.
type Summarizer interface {
	SummarizeDay(ctx context.Context, entries []models.JournalEntry, date string) (string, error)
}

// Scheduler runs the hourly and daily report jobs
type Scheduler struct {
	journal   *storage.Journal
	generator Summarizer
	config    *models.BotConfig
	notify    AdminNotify
	cron      *cron.Cron
	timezone  *time.Location
	logger    zerolog.Logger
}

// NewScheduler creates a report scheduler
func NewScheduler(
	journal *storage.Journal,
	generator Summarizer,
	config *models.BotConfig,
	notify AdminNotify,
	logger zerolog.Logger,
) (*Scheduler, error) {
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", config.Timezone, err)
	}

	return &Scheduler{
		journal:   journal,
		generator: generator,
		config:    config,
		notify:    notify,
		cron:      cron.New(cron.WithLocation(loc)),
		timezone:  loc,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Start registers the cron jobs and starts the scheduler.
// Hourly report at minute 1 of every hour, daily report at 22:00.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("1 * * * *", func() {
		if err := s.RunHourlyReport(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Hourly report failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule hourly report: %w", err)
	}

	if _, err := s.cron.AddFunc("0 22 * * *", func() {
		if err := s.RunDailyReport(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("Daily report failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily report: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("timezone", s.timezone.String()).
		Msg("Report scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Report scheduler stopped")
}

// RunHourlyReport writes the per-hour activity report. Re-running within
// the same hour overwrites the previous output.
func (s *Scheduler) RunHourlyReport(ctx context.Context) error {
	now := time.Now().In(s.timezone)
	date := now.Format("2006-01-02")
	hour := now.Format("15")

	entries, err := s.journal.ReadDay(date)
	if err != nil {
		// A broken journal still produces a report, just an empty one
		s.logger.Error().Err(err).Str("date", date).Msg("Failed to read journal for hourly report")
		entries = nil
	}

	report := hourlyReportText(hour, entries)

	path := filepath.Join(s.config.DataDir, fmt.Sprintf("hourly_report_%s.txt", hour))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("failed to write hourly report: %w", err)
	}

	s.logger.Info().
		Str("hour", hour).
		Int("entry_count", len(entries)).
		Msg("Hourly report written")

	return nil
}

// RunDailyReport writes the daily report and delivers it to the
// administrator. On LLM failure it falls back to raw counts instead of
// aborting. Re-running overwrites the previous output.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	date := time.Now().In(s.timezone).Format("2006-01-02")

	entries, err := s.journal.ReadDay(date)
	if err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("Failed to read journal for daily report")
		entries = nil
	}

	var report string
	if len(entries) == 0 {
		report = "Сегодня никто не писал, все спят."
	} else {
		report, err = s.generator.SummarizeDay(ctx, entries, date)
		if err != nil {
			s.logger.Error().Err(err).Str("date", date).Msg("LLM summary failed, using raw counts")
			report = dailyFallbackText(date, entries)
		}
	}

	path := filepath.Join(s.config.DataDir, "daily_report.txt")
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		// Keep going: the admin message is worth more than the file
		s.logger.Error().Err(err).Msg("Failed to write daily report file")
	}

	if s.notify != nil {
		msg := fmt.Sprintf("📊 День %s\n\n%s", date, report)
		if err := s.notify(msg); err != nil {
			s.logger.Error().Err(err).Msg("Failed to deliver daily report to admin")
		}
	}

	s.logger.Info().
		Str("date", date).
		Int("entry_count", len(entries)).
		Msg("Daily report completed")

	return nil
}
