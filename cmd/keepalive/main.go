package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// pingInterval is how often the hosted deployment is poked awake
const pingInterval = 300 * time.Second

// resolveURL reads the ping target from the environment. The pinger
// only needs the public URL; it must not require the bot's credentials
// to start.
func resolveURL() (string, error) {
	_ = godotenv.Load()
	url := os.Getenv("WEBHOOK_URL")
	if url == "" {
		return "", errors.New("WEBHOOK_URL is required")
	}
	return url, nil
}

func main() {
	url, err := resolveURL()
	if err != nil {
		log.Fatal().Err(err).Msg("Keep-alive pinger cannot start")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Info().
		Str("url", url).
		Dur("interval", pingInterval).
		Msg("Keep-alive pinger starting")

	client := &http.Client{Timeout: 30 * time.Second}

	for {
		resp, err := client.Get(url)
		if err != nil {
			// Errors are expected while the service redeploys; keep going
			logger.Debug().Err(err).Msg("Ping failed")
		} else {
			logger.Debug().Int("status", resp.StatusCode).Msg("Ping")
			resp.Body.Close()
		}

		time.Sleep(pingInterval)
	}
}
