package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
)

// Journal is the append-only daily activity log.
// One JSON-lines file per calendar day, never mutated or compacted.
type Journal struct {
	dir      string
	timezone *time.Location
	logger   zerolog.Logger
}

// NewJournal creates a journal writing daily files under dir
func NewJournal(dir string, timezone *time.Location, logger zerolog.Logger) *Journal {
	return &Journal{
		dir:      dir,
		timezone: timezone,
		logger:   logger.With().Str("component", "storage").Logger(),
	}
}

// DayFile returns the path of the log file for a date (YYYY-MM-DD)
func (j *Journal) DayFile(date string) string {
	return filepath.Join(j.dir, fmt.Sprintf("dialogs_%s.json", date))
}

// Today returns the current date key in the journal's timezone
func (j *Journal) Today() string {
	return time.Now().In(j.timezone).Format("2006-01-02")
}

// Append writes one entry to the log file of the entry's calendar day
func (j *Journal) Append(entry models.JournalEntry) error {
	date := entry.Timestamp.In(j.timezone).Format("2006-01-02")

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	f, err := os.OpenFile(j.DayFile(date), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}

	j.logger.Debug().
		Int64("user_id", entry.UserID).
		Str("date", date).
		Msg("Journal entry written")

	return nil
}

// ReadDay reads all entries for a date (YYYY-MM-DD), oldest first.
// An absent file yields an empty slice; malformed lines are skipped.
func (j *Journal) ReadDay(date string) ([]models.JournalEntry, error) {
	f, err := os.Open(j.DayFile(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	defer f.Close()

	var entries []models.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry models.JournalEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			j.logger.Warn().
				Err(err).
				Str("date", date).
				Msg("Skipping malformed journal line")
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read journal file: %w", err)
	}

	return entries, nil
}
