// Package conversation holds the append-only turn log of a session.
package conversation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"dzine-mind/internal/domain"
)

// Log is an ordered, append-only sequence of turns. It is safe for
// concurrent use; order of Append calls is the order of the log.
type Log struct {
	mu    sync.RWMutex
	turns []domain.Turn
	now   func() time.Time
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

var newTurnID = func() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// NewTurn appends a turn authored by speaker and returns it. The ID and
// timestamp are assigned here; CreatedAt never goes backwards relative to
// the previous turn.
func (l *Log) NewTurn(speaker domain.Speaker, text string, att *domain.Attachment) (domain.Turn, error) {
	if !speaker.Valid() {
		return domain.Turn{}, fmt.Errorf("conversation: invalid speaker %q", speaker)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	createdAt := l.now().UTC()
	if n := len(l.turns); n > 0 && createdAt.Before(l.turns[n-1].CreatedAt) {
		createdAt = l.turns[n-1].CreatedAt
	}

	t := domain.Turn{
		ID:         newTurnID(),
		Speaker:    speaker,
		Text:       text,
		Attachment: cloneAttachment(att),
		CreatedAt:  createdAt,
	}
	l.turns = append(l.turns, t)
	return cloneTurn(t), nil
}

// Append adds a fully formed turn. It rejects turns without an ID, duplicate
// IDs and timestamps older than the last turn.
func (l *Log) Append(t domain.Turn) error {
	if t.ID == "" {
		return errors.New("conversation: turn id is required")
	}
	if !t.Speaker.Valid() {
		return fmt.Errorf("conversation: invalid speaker %q", t.Speaker)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.turns {
		if existing.ID == t.ID {
			return fmt.Errorf("conversation: duplicate turn id %q", t.ID)
		}
	}
	if n := len(l.turns); n > 0 && t.CreatedAt.Before(l.turns[n-1].CreatedAt) {
		return errors.New("conversation: turn is older than the last turn")
	}
	l.turns = append(l.turns, cloneTurn(t))
	return nil
}

// Turns returns a snapshot of the log in order.
func (l *Log) Turns() []domain.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Turn, len(l.turns))
	for i, t := range l.turns {
		out[i] = cloneTurn(t)
	}
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

func cloneTurn(t domain.Turn) domain.Turn {
	t.Attachment = cloneAttachment(t.Attachment)
	return t
}

func cloneAttachment(a *domain.Attachment) *domain.Attachment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
