package main

import "testing"

func TestResolveURL(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")

	url, err := resolveURL()
	if err != nil {
		t.Fatalf("resolveURL() error = %v", err)
	}
	if url != "https://bot.example.com" {
		t.Fatalf("resolveURL() = %q", url)
	}
}

func TestResolveURLMissing(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "")

	if _, err := resolveURL(); err == nil {
		t.Fatal("resolveURL() succeeded without WEBHOOK_URL")
	}
}

// The pinger must start without any of the bot's credentials set.
func TestResolveURLIgnoresBotCredentials(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ADMIN_ID", "")

	if _, err := resolveURL(); err != nil {
		t.Fatalf("resolveURL() error = %v", err)
	}
}
