package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/history"
	"github.com/telegram-relay-bot/internal/models"
)

// ImageSentinel is the verbatim prefix the model emits when it wants an
// image generated instead of a text reply
const ImageSentinel = "GENERATE_IMAGE:"

// FailureMessage is what the user sees when the backend gives up
const FailureMessage = "Gemini сейчас не отвечает, попробуй позже."

// promptPlaceholderLimit caps how much of the image prompt lands in history
const promptPlaceholderLimit = 100

// Backend generates a reply from the conversation context.
// Implemented by the Gemini client.
type Backend interface {
	GenerateReply(ctx context.Context, userID int64, history []models.Turn, inbound []models.Part) (string, error)
}

// Generator turns inbound content into an outbound action, maintaining
// the per-user conversation buffer along the way
type Generator struct {
	store   *history.Store
	backend Backend
	logger  zerolog.Logger
}

// NewGenerator creates a reply generator
func NewGenerator(store *history.Store, backend Backend, logger zerolog.Logger) *Generator {
	return &Generator{
		store:   store,
		backend: backend,
		logger:  logger.With().Str("component", "reply").Logger(),
	}
}

// Generate submits the buffered turns plus the inbound content to the
// backend and interprets the response.
//
// On backend failure the conversation buffer is left untouched: a turn
// the model never acknowledged is not recorded. On success the inbound
// content and the textual artifact of the reply (the reply itself, or a
// placeholder naming the image prompt) are appended.
func (g *Generator) Generate(ctx context.Context, userID int64, inbound []models.Part) models.Action {
	if len(inbound) == 0 {
		return models.Action{Kind: models.ActionNone}
	}

	prior := g.store.Turns(userID)

	text, err := g.backend.GenerateReply(ctx, userID, prior, inbound)
	if err != nil {
		g.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("Reply generation failed")
		return models.Action{Kind: models.ActionFail, Text: FailureMessage}
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, ImageSentinel) {
		prompt := strings.TrimSpace(strings.TrimPrefix(trimmed, ImageSentinel))
		placeholder := imagePlaceholder(prompt)

		g.store.Append(userID, models.UserTurn(inbound...), models.BotTurn(placeholder))

		g.logger.Info().
			Int64("user_id", userID).
			Str("prompt", prompt).
			Msg("Image generation requested by model")

		return models.Action{Kind: models.ActionGenerateImage, Prompt: prompt, Text: placeholder}
	}

	g.store.Append(userID, models.UserTurn(inbound...), models.BotTurn(text))

	return models.Action{Kind: models.ActionSendText, Text: text}
}

// imagePlaceholder is the history record for an attempted image generation
func imagePlaceholder(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > promptPlaceholderLimit {
		runes = runes[:promptPlaceholderLimit]
	}
	return fmt.Sprintf("[сгенерировал картинку по промпту: %s...]", string(runes))
}
