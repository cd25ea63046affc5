package scheduler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/telegram-relay-bot/internal/models"
)

func entry(userID int64, msg string) models.JournalEntry {
	return models.JournalEntry{
		Timestamp: time.Now(),
		UserID:    userID,
		UserName:  fmt.Sprintf("User%d", userID),
		Message:   msg,
	}
}

func TestHourlyReportTextEmptyDay(t *testing.T) {
	got := hourlyReportText("14", nil)
	if got != "За этот час сообщений нет." {
		t.Fatalf("hourlyReportText() = %q, want the empty-day text", got)
	}
}

func TestHourlyReportTextCountsMessagesAndUsers(t *testing.T) {
	entries := []models.JournalEntry{
		entry(1, "привет всем"),
		entry(2, "как дела"),
		entry(1, "нормально"),
	}

	got := hourlyReportText("09", entries)

	if !strings.Contains(got, "Час 09:00") {
		t.Fatalf("report missing hour header:\n%s", got)
	}
	if !strings.Contains(got, "Сообщений за день: 3") {
		t.Fatalf("report missing message count:\n%s", got)
	}
	if !strings.Contains(got, "Активных юзеров: 2") {
		t.Fatalf("report missing distinct user count:\n%s", got)
	}
}

func TestTopicSampleSkipsMediaAndDeduplicates(t *testing.T) {
	entries := []models.JournalEntry{
		entry(1, "купил новую видеокарту вчера"),
		entry(2, "[медиа]"),
		entry(3, "купил новую видеокарту опять"),
		entry(4, "[голосовое]"),
		entry(5, "погода сегодня"),
	}

	topics := topicSample(entries)

	want := []string{"купил новую видеокарту", "погода сегодня"}
	if len(topics) != len(want) {
		t.Fatalf("topicSample() = %v, want %v", topics, want)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topics[%d] = %q, want %q", i, topics[i], want[i])
		}
	}
}

func TestTopicSampleUsesOnlyRecentMessagesAndCapsOutput(t *testing.T) {
	entries := make([]models.JournalEntry, 0, 40)
	for i := 0; i < 40; i++ {
		entries = append(entries, entry(int64(i), fmt.Sprintf("тема номер %d", i)))
	}

	topics := topicSample(entries)

	if len(topics) != topicSampleLimit {
		t.Fatalf("topicSample() returned %d topics, want %d", len(topics), topicSampleLimit)
	}
	// Only the last 20 messages are sampled
	if topics[0] != "тема номер 20" {
		t.Fatalf("topics[0] = %q, want the first of the last 20 messages", topics[0])
	}
}

func TestDailyFallbackText(t *testing.T) {
	entries := []models.JournalEntry{
		entry(1, "a"),
		entry(2, "b"),
		entry(1, "c"),
	}

	got := dailyFallbackText("2025-03-14", entries)

	if !strings.Contains(got, "2025-03-14") {
		t.Fatalf("fallback missing date:\n%s", got)
	}
	if !strings.Contains(got, "3 сообщений") {
		t.Fatalf("fallback missing message count:\n%s", got)
	}
	if !strings.Contains(got, "2 человек") {
		t.Fatalf("fallback missing user count:\n%s", got)
	}
}
