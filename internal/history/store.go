package history

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
)

// DefaultCapacity is the number of turns kept per user
const DefaultCapacity = 10

// Store keeps a bounded conversation buffer per user.
// Buffers are created lazily on first append and live only in memory.
type Store struct {
	mu       sync.Mutex
	capacity int
	buffers  map[int64][]models.Turn
	logger   zerolog.Logger
}

// NewStore creates a conversation store with the given per-user capacity
func NewStore(capacity int, logger zerolog.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Store{
		capacity: capacity,
		buffers:  make(map[int64][]models.Turn),
		logger:   logger.With().Str("component", "history").Logger(),
	}
}

// Turns returns a copy of the user's buffered turns, oldest first.
// A user without a buffer gets an empty slice.
func (s *Store) Turns(userID int64) []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buffers[userID]
	out := make([]models.Turn, len(buf))
	copy(out, buf)
	return out
}

// Append adds turns to the user's buffer in order, evicting the oldest
// turns once the buffer would exceed its capacity
func (s *Store) Append(userID int64, turns ...models.Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append(s.buffers[userID], turns...)
	if len(buf) > s.capacity {
		evicted := len(buf) - s.capacity
		buf = buf[evicted:]
		s.logger.Debug().
			Int64("user_id", userID).
			Int("evicted", evicted).
			Msg("Evicted oldest turns from buffer")
	}

	// Reslice into a fresh array so evicted turns can be collected
	s.buffers[userID] = append(make([]models.Turn, 0, len(buf)), buf...)
}

// Clear removes the user's buffer entirely
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buffers, userID)
	s.logger.Debug().Int64("user_id", userID).Msg("Conversation buffer cleared")
}

// Len returns the number of turns currently buffered for the user
func (s *Store) Len(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.buffers[userID])
}
