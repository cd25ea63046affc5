package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Limiter counts privileged report requests per calendar day.
// The count only grows within a day; a new date key starts at zero.
type Limiter struct {
	mu         sync.Mutex
	timezone   *time.Location
	dailyLimit int
	counts     map[string]int
	logger     zerolog.Logger

	now func() time.Time // injectable clock for tests
}

// NewLimiter creates a daily request limiter
func NewLimiter(timezone string, dailyLimit int, logger zerolog.Logger) (*Limiter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	return &Limiter{
		timezone:   loc,
		dailyLimit: dailyLimit,
		counts:     make(map[string]int),
		logger:     logger.With().Str("component", "ratelimit").Logger(),
		now:        time.Now,
	}, nil
}

// Allow records one request against today's counter. It returns false,
// without incrementing, once the daily ceiling is reached.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	dateStr := l.now().In(l.timezone).Format("2006-01-02")

	if l.counts[dateStr] >= l.dailyLimit {
		l.logger.Warn().
			Str("date", dateStr).
			Int("limit", l.dailyLimit).
			Msg("Daily report limit reached")
		return false
	}

	l.counts[dateStr]++

	l.logger.Debug().
		Str("date", dateStr).
		Int("used", l.counts[dateStr]).
		Int("limit", l.dailyLimit).
		Msg("Report request counted")

	return true
}

// Used returns how many requests were counted for today
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	dateStr := l.now().In(l.timezone).Format("2006-01-02")
	return l.counts[dateStr]
}

// Limit returns the per-day ceiling
func (l *Limiter) Limit() int {
	return l.dailyLimit
}
