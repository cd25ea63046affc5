package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
	"google.golang.org/api/option"
)

// maxEntriesInPrompt caps the transcript to stay inside token limits
const maxEntriesInPrompt = 300

// Generator produces the natural-language daily summary using the LLM
type Generator struct {
	apiKey      string
	model       string
	logger      zerolog.Logger
	genaiClient *genai.Client
}

// NewGenerator creates a new summary generator
func NewGenerator(apiKey, model string, logger zerolog.Logger) *Generator {
	return &Generator{
		apiKey: apiKey,
		model:  model,
		logger: logger.With().Str("component", "summary_generator").Logger(),
	}
}

// Close closes the generator and releases resources
func (g *Generator) Close() error {
	if g.genaiClient != nil {
		err := g.genaiClient.Close()
		g.genaiClient = nil
		if err != nil {
			g.logger.Error().Err(err).Msg("Failed to close Gemini client")
			return err
		}
		g.logger.Info().Msg("Summary generator client closed")
	}
	return nil
}

// getClient returns or creates a genai client
func (g *Generator) getClient(ctx context.Context) (*genai.Client, error) {
	if g.genaiClient != nil {
		return g.genaiClient, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	g.genaiClient = client
	g.logger.Info().Msg("Summary generator Gemini client created")
	return g.genaiClient, nil
}

// SummarizeDay asks the LLM for a short summary of the day's journal entries
func (g *Generator) SummarizeDay(ctx context.Context, entries []models.JournalEntry, date string) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("no entries to summarize")
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	client, err := g.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get genai client: %w", err)
	}

	model := client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(1024)

	prompt := g.buildSummaryPrompt(entries, date)

	g.logger.Debug().
		Str("date", date).
		Int("entry_count", len(entries)).
		Int("prompt_length", len(prompt)).
		Msg("Sending request to LLM for daily summary")

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates from LLM")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("response contains no text parts")
	}

	g.logger.Info().
		Str("date", date).
		Int("summary_length", len([]rune(text))).
		Msg("Daily summary generated")

	return text, nil
}

// buildSummaryPrompt constructs the prompt from the day's transcript,
// keeping only the most recent entries
func (g *Generator) buildSummaryPrompt(entries []models.JournalEntry, date string) string {
	if len(entries) > maxEntriesInPrompt {
		entries = entries[len(entries)-maxEntriesInPrompt:]
	}

	var sb strings.Builder
	sb.WriteString("Сделай очень короткий, смешной и дерзкий итоговый отчёт за день ")
	sb.WriteString(date)
	sb.WriteString(" по этим диалогам (максимум 600 символов):\n\n")

	for _, entry := range entries {
		name := entry.Username
		if name == "" {
			name = entry.UserName
		}
		sb.WriteString(fmt.Sprintf("@%s: %s\n", name, entry.Message))
	}

	return sb.String()
}
