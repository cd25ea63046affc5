package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/telegram-relay-bot/internal/models"
)

// handleUpdate processes incoming update
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage processes incoming message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	b.handleRelay(ctx, message)
}

// handleCommand processes bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	b.logger.Info().
		Str("command", command).
		Int64("user_id", message.From.ID).
		Str("username", message.From.UserName).
		Msg("Received command")

	switch command {
	case "start":
		b.sendMessage(message.Chat.ID, "Привет 👿 Чем могу помочь?")
	case "clear":
		b.store.Clear(message.From.ID)
		b.sendMessage(message.Chat.ID, "История очищена.")
	case "ok":
		b.handleReportCommand(ctx, message)
	default:
		// Unknown commands go through the relay like any other text
		b.handleRelay(ctx, message)
	}
}

// handleReportCommand handles the admin-only /ok command: run the daily
// report now, at most five times per day
func (b *Bot) handleReportCommand(ctx context.Context, message *tgbotapi.Message) {
	if !b.config.IsAdmin(message.From.ID) {
		return
	}

	if !b.limiter.Allow() {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("Лимит %d раз в сутки.", b.limiter.Limit()))
		return
	}

	if b.reporter == nil {
		b.logger.Error().Msg("Reporter not wired, /ok ignored")
		return
	}

	if err := b.reporter.RunDailyReport(ctx); err != nil {
		b.logger.Error().Err(err).Msg("On-demand daily report failed")
		b.sendErrorMessage(message.Chat.ID, "Не получилось собрать отчёт.")
		return
	}

	b.sendMessage(message.Chat.ID, "Отчёт отправлен тебе в ЛС.")
}

// handleRelay journals the message, runs the reply pipeline and delivers
// the outcome to the user
func (b *Bot) handleRelay(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	// Journal first, best-effort: a log fault never blocks the reply
	if err := b.journal.Append(models.JournalEntry{
		Timestamp: time.Now(),
		UserID:    userID,
		UserName:  displayName(message.From),
		Username:  message.From.UserName,
		Message:   journalText(message),
	}); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to journal message")
	}

	parts := b.collectParts(ctx, message)
	if len(parts) == 0 {
		return
	}

	b.sendTypingAction(chatID)

	action := b.generator.Generate(ctx, userID, parts)

	switch action.Kind {
	case models.ActionSendText:
		b.sendMessage(chatID, action.Text)
	case models.ActionGenerateImage:
		b.deliverImage(ctx, chatID, action.Prompt)
	case models.ActionFail:
		b.sendErrorMessage(chatID, action.Text)
	}
}

// deliverImage renders the prompt and sends the result or a failure notice
func (b *Bot) deliverImage(ctx context.Context, chatID int64, prompt string) {
	b.sendMessage(chatID, "Ща нарисую, подожди...")

	imageURL, err := b.renderer.RenderImage(ctx, prompt)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("prompt", prompt).
			Msg("Image rendering failed")
		b.sendErrorMessage(chatID, "Картинка не получилась, попробуй позже.")
		return
	}

	b.sendPhoto(chatID, imageURL, "Держи своё 4K 👑")
}

// collectParts builds the typed content sequence from a message:
// text or caption, the largest attached photo, and any voice or audio
func (b *Bot) collectParts(ctx context.Context, message *tgbotapi.Message) []models.Part {
	var parts []models.Part

	if text := messageText(message); text != "" {
		parts = append(parts, models.Text(text))
	}

	if len(message.Photo) > 0 {
		// Telegram lists photo sizes in ascending order
		photo := message.Photo[len(message.Photo)-1]
		data, err := b.downloadFile(ctx, photo.FileID)
		if err != nil {
			b.logger.Error().Err(err).Str("file_id", photo.FileID).Msg("Failed to download photo")
		} else {
			parts = append(parts, models.Image{MIME: "image/jpeg", Data: data})
		}
	}

	if fileID := voiceFileID(message); fileID != "" {
		data, err := b.downloadFile(ctx, fileID)
		if err != nil {
			b.logger.Error().Err(err).Str("file_id", fileID).Msg("Failed to download audio")
		} else {
			parts = append(parts, models.Audio{MIME: "audio/ogg", Data: data})
		}
	}

	return parts
}

// downloadFile fetches a Telegram file's bytes by its file ID
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}

	return data, nil
}

// messageText returns the message text or caption
func messageText(message *tgbotapi.Message) string {
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

// voiceFileID returns the file ID of an attached voice or audio message
func voiceFileID(message *tgbotapi.Message) string {
	if message.Voice != nil {
		return message.Voice.FileID
	}
	if message.Audio != nil {
		return message.Audio.FileID
	}
	return ""
}

// journalText is what lands in the activity log for a message
func journalText(message *tgbotapi.Message) string {
	if text := messageText(message); text != "" {
		return text
	}
	if message.Voice != nil || message.Audio != nil {
		return "[голосовое]"
	}
	return "[фото/видео/документ]"
}

// displayName builds the user's display name from first and last name
func displayName(user *tgbotapi.User) string {
	if user.LastName == "" {
		return user.FirstName
	}
	return user.FirstName + " " + user.LastName
}
