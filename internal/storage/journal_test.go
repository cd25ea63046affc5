package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
)

func TestJournalAppendAndReadDay(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, time.UTC, zerolog.Nop())

	ts := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	entry := models.JournalEntry{
		Timestamp: ts,
		UserID:    42,
		UserName:  "Full Name",
		Username:  "someuser",
		Message:   "hello",
	}

	if err := j.Append(entry); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	entries, err := j.ReadDay("2025-03-14")
	if err != nil {
		t.Fatalf("ReadDay() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ReadDay() returned %d entries, want 1", len(entries))
	}
	if entries[0].UserID != 42 || entries[0].Message != "hello" || entries[0].Username != "someuser" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestJournalPartitionsByDay(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, time.UTC, zerolog.Nop())

	day1 := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 15, 0, 1, 0, 0, time.UTC)

	if err := j.Append(models.JournalEntry{Timestamp: day1, UserID: 1, Message: "late"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := j.Append(models.JournalEntry{Timestamp: day2, UserID: 1, Message: "early"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	first, err := j.ReadDay("2025-03-14")
	if err != nil {
		t.Fatalf("ReadDay() error = %v", err)
	}
	second, err := j.ReadDay("2025-03-15")
	if err != nil {
		t.Fatalf("ReadDay() error = %v", err)
	}

	if len(first) != 1 || first[0].Message != "late" {
		t.Fatalf("day 1 entries = %+v, want single 'late'", first)
	}
	if len(second) != 1 || second[0].Message != "early" {
		t.Fatalf("day 2 entries = %+v, want single 'early'", second)
	}
}

func TestJournalReadDayAbsentFile(t *testing.T) {
	j := NewJournal(t.TempDir(), time.UTC, zerolog.Nop())

	entries, err := j.ReadDay("1999-01-01")
	if err != nil {
		t.Fatalf("ReadDay() error = %v, want nil for absent file", err)
	}
	if len(entries) != 0 {
		t.Fatalf("ReadDay() returned %d entries, want 0", len(entries))
	}
}

func TestJournalReadDaySkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, time.UTC, zerolog.Nop())

	content := `{"timestamp":"2025-03-14T10:00:00Z","user_id":1,"user_name":"A","message":"first"}
not json at all
{"timestamp":"2025-03-14T11:00:00Z","user_id":2,"user_name":"B","message":"second"}
`
	path := filepath.Join(dir, "dialogs_2025-03-14.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	entries, err := j.ReadDay("2025-03-14")
	if err != nil {
		t.Fatalf("ReadDay() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadDay() returned %d entries, want 2", len(entries))
	}
	if entries[0].Message != "first" || entries[1].Message != "second" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
