package scheduler

import (
	"fmt"
	"strings"

	"github.com/telegram-relay-bot/internal/models"
)

const (
	// topicSampleMessages is how many of the latest messages feed the topic sample
	topicSampleMessages = 20

	// topicSampleLimit caps the number of sampled topics
	topicSampleLimit = 10
)

// hourlyReportText assembles the per-hour activity report
func hourlyReportText(hour string, entries []models.JournalEntry) string {
	if len(entries) == 0 {
		return "За этот час сообщений нет."
	}

	users := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		users[entry.UserID] = struct{}{}
	}

	topics := topicSample(entries)

	return fmt.Sprintf(
		"Час %s:00\nСообщений за день: %d\nАктивных юзеров: %d\nПоследние темы: %s",
		hour, len(entries), len(users), strings.Join(topics, ", "),
	)
}

// topicSample extracts a crude topic list from the latest messages:
// the first few words of each recent text message, deduplicated.
// Media placeholders (bracketed messages) are skipped.
func topicSample(entries []models.JournalEntry) []string {
	start := len(entries) - topicSampleMessages
	if start < 0 {
		start = 0
	}

	seen := make(map[string]struct{})
	topics := make([]string, 0, topicSampleLimit)

	for _, entry := range entries[start:] {
		msg := strings.TrimSpace(entry.Message)
		if msg == "" || strings.HasPrefix(msg, "[") {
			continue
		}

		words := strings.Fields(msg)
		if len(words) > 3 {
			words = words[:3]
		}
		topic := strings.Join(words, " ")

		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}

		topics = append(topics, topic)
		if len(topics) == topicSampleLimit {
			break
		}
	}

	return topics
}

// dailyFallbackText is the raw-numbers report used when the LLM summary fails
func dailyFallbackText(date string, entries []models.JournalEntry) string {
	users := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		users[entry.UserID] = struct{}{}
	}

	return fmt.Sprintf(
		"За день %s: %d сообщений от %d человек.\n\nGemini устал, вот сырые цифры.",
		date, len(entries), len(users),
	)
}
