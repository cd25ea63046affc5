package history

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/telegram-relay-bot/internal/models"
)

func textTurn(role models.Role, s string) models.Turn {
	return models.Turn{Role: role, Parts: []models.Part{models.Text(s)}}
}

func turnText(t *testing.T, turn models.Turn) string {
	t.Helper()
	if len(turn.Parts) != 1 {
		t.Fatalf("turn has %d parts, want 1", len(turn.Parts))
	}
	text, ok := turn.Parts[0].(models.Text)
	if !ok {
		t.Fatalf("turn part is %T, want models.Text", turn.Parts[0])
	}
	return string(text)
}

func TestStoreNeverExceedsCapacity(t *testing.T) {
	s := NewStore(10, zerolog.Nop())

	for i := 0; i < 37; i++ {
		s.Append(1, textTurn(models.RoleUser, fmt.Sprintf("msg-%d", i)))
		if got := s.Len(1); got > 10 {
			t.Fatalf("buffer length = %d after %d appends, want <= 10", got, i+1)
		}
	}

	turns := s.Turns(1)
	if len(turns) != 10 {
		t.Fatalf("retained %d turns, want 10", len(turns))
	}

	// The retained turns must be exactly the most recent 10, in order
	for i, turn := range turns {
		want := fmt.Sprintf("msg-%d", 27+i)
		if got := turnText(t, turn); got != want {
			t.Fatalf("turns[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestStoreAppendMultipleKeepsOrder(t *testing.T) {
	s := NewStore(4, zerolog.Nop())

	s.Append(1, textTurn(models.RoleUser, "a"), textTurn(models.RoleBot, "b"))
	s.Append(1, textTurn(models.RoleUser, "c"), textTurn(models.RoleBot, "d"))
	s.Append(1, textTurn(models.RoleUser, "e"), textTurn(models.RoleBot, "f"))

	turns := s.Turns(1)
	want := []string{"c", "d", "e", "f"}
	if len(turns) != len(want) {
		t.Fatalf("retained %d turns, want %d", len(turns), len(want))
	}
	for i, w := range want {
		if got := turnText(t, turns[i]); got != w {
			t.Fatalf("turns[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestStoreClearYieldsEmptyBuffer(t *testing.T) {
	s := NewStore(10, zerolog.Nop())

	s.Append(7, textTurn(models.RoleUser, "hello"), textTurn(models.RoleBot, "hi"))
	if s.Len(7) != 2 {
		t.Fatalf("buffer length = %d, want 2", s.Len(7))
	}

	s.Clear(7)

	if got := s.Turns(7); len(got) != 0 {
		t.Fatalf("Turns after Clear returned %d turns, want 0", len(got))
	}
}

func TestStoreBuffersAreIndependentPerUser(t *testing.T) {
	s := NewStore(10, zerolog.Nop())

	s.Append(1, textTurn(models.RoleUser, "one"))
	s.Append(2, textTurn(models.RoleUser, "two"))
	s.Clear(1)

	if s.Len(1) != 0 {
		t.Fatalf("user 1 buffer length = %d, want 0", s.Len(1))
	}
	if s.Len(2) != 1 {
		t.Fatalf("user 2 buffer length = %d, want 1", s.Len(2))
	}
}

func TestStoreTurnsReturnsCopy(t *testing.T) {
	s := NewStore(10, zerolog.Nop())
	s.Append(1, textTurn(models.RoleUser, "original"))

	turns := s.Turns(1)
	turns[0] = textTurn(models.RoleUser, "mutated")

	if got := turnText(t, s.Turns(1)[0]); got != "original" {
		t.Fatalf("stored turn = %q, want %q", got, "original")
	}
}
