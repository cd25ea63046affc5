package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
	"google.golang.org/api/option"
)

// Client represents a Gemini LLM client
type Client struct {
	apiKey      string
	model       string
	timeout     time.Duration
	logger      zerolog.Logger
	genaiClient *genai.Client
	mu          sync.Mutex

	bananaAPIKey   string
	bananaModelKey string
	imageAPIURL    string
}

// NewClient creates a new Gemini LLM client
func NewClient(cfg *models.BotConfig, logger zerolog.Logger) *Client {
	return &Client{
		apiKey:         cfg.GeminiAPIKey,
		model:          cfg.GeminiModel,
		timeout:        time.Duration(cfg.GeminiTimeout) * time.Second,
		logger:         logger.With().Str("component", "llm").Logger(),
		genaiClient:    nil, // Will be created on first use
		bananaAPIKey:   cfg.BananaAPIKey,
		bananaModelKey: cfg.BananaModelKey,
		imageAPIURL:    bananaAPIURL,
	}
}

// getClient returns or creates a genai client (thread-safe)
func (c *Client) getClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient != nil {
		return c.genaiClient, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c.genaiClient = client
	c.logger.Info().Msg("Gemini client created and cached")
	return c.genaiClient, nil
}

// Close closes the LLM client and releases resources
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genaiClient != nil {
		err := c.genaiClient.Close()
		c.genaiClient = nil
		if err != nil {
			c.logger.Error().Err(err).Msg("Failed to close Gemini client")
			return err
		}
		c.logger.Info().Msg("Gemini client closed")
	}
	return nil
}

// GenerateReply submits the buffered conversation plus the new inbound
// content to Gemini and returns the raw response text
func (c *Client) GenerateReply(ctx context.Context, userID int64, history []models.Turn, inbound []models.Part) (string, error) {
	// Create context with timeout
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.generateWithRetry(ctx, userID, history, inbound)
}

// generateWithRetry attempts to generate a reply with retry logic
func (c *Client) generateWithRetry(ctx context.Context, userID int64, history []models.Turn, inbound []models.Part) (string, error) {
	maxRetries := 2
	var lastError error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			c.logger.Warn().
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Int64("user_id", userID).
				Msg("Retrying LLM request")

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.generate(ctx, userID, history, inbound)
		if err == nil {
			return text, nil
		}

		lastError = err
		c.logger.Error().
			Err(err).
			Int("attempt", attempt+1).
			Int64("user_id", userID).
			Str("model", c.model).
			Msg("LLM request failed")
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastError)
}

// generate makes the actual API call to Gemini
func (c *Client) generate(ctx context.Context, userID int64, history []models.Turn, inbound []models.Part) (string, error) {
	// Get or create Gemini client (reused across requests)
	client, err := c.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get genai client: %w", err)
	}

	model := client.GenerativeModel(c.model)
	model.SetMaxOutputTokens(MaxReplyTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}

	// Seed the chat session with the buffered turns
	chat := model.StartChat()
	chat.History = toContents(history)

	c.logger.Debug().
		Int64("user_id", userID).
		Str("model", c.model).
		Int("history_turns", len(history)).
		Int("inbound_parts", len(inbound)).
		Msg("Sending request to LLM")

	resp, err := chat.SendMessage(ctx, toParts(inbound)...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}

	c.logger.Info().
		Int64("user_id", userID).
		Str("model", c.model).
		Int("response_length", len([]rune(text))).
		Msg("LLM response generated successfully")

	return text, nil
}

// toParts converts domain content parts to genai parts
func toParts(parts []models.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case models.Text:
			out = append(out, genai.Text(string(p)))
		case models.Image:
			out = append(out, genai.Blob{MIMEType: p.MIME, Data: p.Data})
		case models.Audio:
			out = append(out, genai.Blob{MIMEType: p.MIME, Data: p.Data})
		}
	}
	return out
}

// toContents converts buffered turns to genai chat history
func toContents(turns []models.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		out = append(out, &genai.Content{
			Role:  string(turn.Role),
			Parts: toParts(turn.Parts),
		})
	}
	return out
}

// extractText pulls the text out of a Gemini response
func extractText(resp *genai.GenerateContentResponse) (string, error) {
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

	if sb.Len() == 0 {
		return "", fmt.Errorf("response contains no text parts")
	}

	return sb.String(), nil
}
