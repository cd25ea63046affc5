package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/history"
	"github.com/telegram-relay-bot/internal/models"
	"github.com/telegram-relay-bot/internal/ratelimit"
	"github.com/telegram-relay-bot/internal/reply"
	"github.com/telegram-relay-bot/internal/storage"
)

// ImageRenderer renders an image for a prompt and returns its URL
type ImageRenderer interface {
	RenderImage(ctx context.Context, prompt string) (string, error)
}

// DailyReporter runs the daily report on demand (the /ok command)
type DailyReporter interface {
	RunDailyReport(ctx context.Context) error
}

// Bot represents the Telegram bot
type Bot struct {
	api       *tgbotapi.BotAPI
	config    *models.BotConfig
	store     *history.Store
	journal   *storage.Journal
	generator *reply.Generator
	renderer  ImageRenderer
	limiter   *ratelimit.Limiter
	reporter  DailyReporter
	logger    zerolog.Logger
	srv       *http.Server
	wg        sync.WaitGroup // Tracks active handlers for graceful shutdown
}

// New creates a new bot instance
func New(
	config *models.BotConfig,
	store *history.Store,
	journal *storage.Journal,
	generator *reply.Generator,
	renderer ImageRenderer,
	limiter *ratelimit.Limiter,
	logger zerolog.Logger,
) (*Bot, error) {
	// Create Telegram bot API client
	api, err := tgbotapi.NewBotAPI(config.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	// Set debug mode based on log level
	api.Debug = config.LogLevel == "debug"

	logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authorized")

	return &Bot{
		api:       api,
		config:    config,
		store:     store,
		journal:   journal,
		generator: generator,
		renderer:  renderer,
		limiter:   limiter,
		logger:    logger.With().Str("component", "bot").Logger(),
	}, nil
}

// SetReporter wires the on-demand daily report used by the /ok command.
// Set after construction because the scheduler delivers reports through
// this bot in turn.
func (b *Bot) SetReporter(reporter DailyReporter) {
	b.reporter = reporter
}

// GetUsername returns bot username
func (b *Bot) GetUsername() string {
	return b.api.Self.UserName
}

// Start registers the webhook and serves it until the context is done
func (b *Bot) Start(ctx context.Context) error {
	if err := b.setWebhook(); err != nil {
		return err
	}

	gateway := NewGateway(b.config.WebhookSecret, b.dispatch, b.logger)
	b.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", b.config.Port),
		Handler: gateway.Handler(),
	}

	b.logger.Info().
		Str("addr", b.srv.Addr).
		Str("webhook_url", b.config.WebhookURL+"/webhook").
		Msg("Webhook server starting")

	errChan := make(chan error, 1)
	go func() {
		if err := b.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		b.logger.Info().Msg("Shutting down webhook server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.srv.Shutdown(shutdownCtx); err != nil {
			b.logger.Error().Err(err).Msg("Webhook server shutdown failed")
		}

		b.deleteWebhook()

		// Wait for all active handlers to complete
		b.logger.Info().Msg("Waiting for active handlers to complete...")
		b.wg.Wait()
		b.logger.Info().Msg("All handlers completed")

		return nil

	case err := <-errChan:
		return fmt.Errorf("webhook server failed: %w", err)
	}
}

// Stop waits for active handlers; the HTTP server is stopped by Start
// when its context is cancelled
func (b *Bot) Stop() {
	b.logger.Info().Msg("Stopping bot...")
	b.wg.Wait()
}

// dispatch hands one validated update to a tracked handler goroutine
func (b *Bot) dispatch(update tgbotapi.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.recoverMiddleware(func() {
			b.handleUpdate(context.Background(), update)
		})
	}()
}

// setWebhook registers the webhook with Telegram. The secret token is
// passed as a raw parameter: the released client library predates the
// secret_token field of setWebhook.
func (b *Bot) setWebhook() error {
	params := tgbotapi.Params{}
	params.AddNonEmpty("url", b.config.WebhookURL+"/webhook")
	params.AddNonEmpty("secret_token", b.config.WebhookSecret)

	resp, err := b.api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("failed to set webhook: %s", resp.Description)
	}

	b.logger.Info().
		Str("url", b.config.WebhookURL+"/webhook").
		Msg("Webhook registered")

	return nil
}

// deleteWebhook unregisters the webhook on shutdown
func (b *Bot) deleteWebhook() {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Error().Err(err).Msg("Failed to delete webhook")
		return
	}
	b.logger.Info().Msg("Webhook deleted")
}
