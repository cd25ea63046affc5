package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/telegram-relay-bot/internal/bot"
	"github.com/telegram-relay-bot/internal/config"
	"github.com/telegram-relay-bot/internal/history"
	"github.com/telegram-relay-bot/internal/llm"
	"github.com/telegram-relay-bot/internal/ratelimit"
	"github.com/telegram-relay-bot/internal/reply"
	"github.com/telegram-relay-bot/internal/scheduler"
	"github.com/telegram-relay-bot/internal/storage"
	"github.com/telegram-relay-bot/internal/summary"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logger := setupLogger(cfg.LogLevel, cfg.Environment)
	logger.Info().
		Str("environment", cfg.Environment).
		Str("timezone", cfg.Timezone).
		Str("model", cfg.GeminiModel).
		Int("history_size", cfg.HistorySize).
		Msg("Starting Telegram relay bot")

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load timezone once, shared by journal and scheduler
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Failed to load timezone")
	}

	// Initialize the activity journal
	journal := storage.NewJournal(cfg.DataDir, loc, logger)

	// Initialize the conversation store
	store := history.NewStore(cfg.HistorySize, logger)

	// Initialize LLM client
	logger.Info().Msg("Initializing Gemini LLM client...")
	llmClient := llm.NewClient(cfg, logger)
	defer func() {
		if err := llmClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close LLM client")
		}
	}()

	// Initialize reply generator
	generator := reply.NewGenerator(store, llmClient, logger)

	// Initialize the daily report limiter
	limiter, err := ratelimit.NewLimiter(cfg.Timezone, cfg.ReportDailyLimit, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create rate limiter")
	}

	// Initialize bot
	logger.Info().Msg("Initializing Telegram bot...")
	telegramBot, err := bot.New(cfg, store, journal, generator, llmClient, limiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bot")
	}

	logger.Info().
		Str("username", telegramBot.GetUsername()).
		Msg("Bot initialized successfully")

	// Initialize summary generator and report scheduler
	summaryGen := summary.NewGenerator(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	defer func() {
		if err := summaryGen.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close summary generator")
		}
	}()

	sched, err := scheduler.NewScheduler(journal, summaryGen, cfg, telegramBot.SendToAdmin, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	telegramBot.SetReporter(sched)

	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start bot in a goroutine
	botErrChan := make(chan error, 1)
	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			botErrChan <- err
		}
	}()

	logger.Info().Msg("Bot is running. Press Ctrl+C to stop.")

	// Wait for termination signal or bot error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received termination signal")
	case err := <-botErrChan:
		logger.Error().Err(err).Msg("Bot stopped with error")
	}

	// Graceful shutdown
	logger.Info().Msg("Initiating graceful shutdown...")
	cancel()

	logger.Info().Msg("Stopping scheduler...")
	sched.Stop()

	// Give the bot some time to finish processing
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Create a channel to signal shutdown complete
	done := make(chan struct{})
	go func() {
		telegramBot.Stop() // This will wait for WaitGroup internally
		close(done)
	}()

	// Wait for shutdown or timeout
	select {
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Shutdown timeout exceeded, some requests may be lost")
	case <-done:
		logger.Info().Msg("Graceful shutdown completed")
	}

	logger.Info().Msg("Bot stopped")
}

// setupLogger configures and returns a zerolog logger
func setupLogger(level, environment string) zerolog.Logger {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	var logger zerolog.Logger
	if environment == "development" {
		// Pretty console output for development
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return logger
}
