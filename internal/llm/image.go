package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// Banana.dev inference endpoint
	bananaAPIURL = "https://api.banana.dev/start/v2"

	// imageTimeout is the fixed deadline for one render call;
	// generation at these settings routinely takes over a minute
	imageTimeout = 120 * time.Second
)

// bananaRequest represents the request body for the Banana.dev API
type bananaRequest struct {
	ModelKey    string            `json:"modelKey"`
	ModelInputs bananaModelInputs `json:"modelInputs"`
}

// bananaModelInputs carries the fixed generation parameters
type bananaModelInputs struct {
	Prompt   string `json:"prompt"`
	Steps    int    `json:"steps"`
	CfgScale int    `json:"cfg_scale"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Upscale  bool   `json:"upscale"`
}

// bananaResponse represents the Banana.dev API response
type bananaResponse struct {
	Output []string `json:"output"`
	Image  string   `json:"image"`
}

// RenderImage generates an image from a text prompt via Banana.dev and
// returns the resulting image URL. Generation parameters are fixed and
// not derived from the input.
func (c *Client) RenderImage(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()

	if c.bananaAPIKey == "" || c.bananaModelKey == "" {
		return "", fmt.Errorf("banana credentials not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, imageTimeout)
	defer cancel()

	c.logger.Info().
		Str("prompt", prompt).
		Str("model_key", c.bananaModelKey).
		Msg("Starting image generation via Banana.dev")

	reqBody := bananaRequest{
		ModelKey: c.bananaModelKey,
		ModelInputs: bananaModelInputs{
			Prompt:   prompt,
			Steps:    30,
			CfgScale: 7,
			Width:    2048,
			Height:   2048,
			Upscale:  true,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.imageAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.bananaAPIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("prompt", prompt).
			Msg("Failed to send request to Banana.dev API")
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("prompt", prompt).
			Msg("Banana.dev API returned error")
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result bananaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	imageURL := result.Image
	if len(result.Output) > 0 && result.Output[0] != "" {
		imageURL = result.Output[0]
	}
	if imageURL == "" {
		return "", fmt.Errorf("no image in provider response")
	}

	c.logger.Info().
		Dur("duration", time.Since(startTime)).
		Str("model_key", c.bananaModelKey).
		Msg("Image generated successfully via Banana.dev")

	return imageURL, nil
}
