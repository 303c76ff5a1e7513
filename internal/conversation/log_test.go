package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dzine-mind/internal/domain"
)

func TestNewTurn_AppendsInOrder(t *testing.T) {
	l := NewLog()

	first, err := l.NewTurn(domain.SpeakerUser, "hello", nil)
	require.NoError(t, err)
	second, err := l.NewTurn(domain.SpeakerAssistant, "hi", nil)
	require.NoError(t, err)

	turns := l.Turns()
	require.Len(t, turns, 2)
	require.Equal(t, first.ID, turns[0].ID)
	require.Equal(t, second.ID, turns[1].ID)
	require.NotEqual(t, first.ID, second.ID)
	require.False(t, turns[1].CreatedAt.Before(turns[0].CreatedAt))
}

func TestNewTurn_ClockSkewKeepsTimestampsMonotonic(t *testing.T) {
	l := NewLog()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Minute)}
	l.now = func() time.Time {
		next := times[0]
		times = times[1:]
		return next
	}

	_, err := l.NewTurn(domain.SpeakerUser, "a", nil)
	require.NoError(t, err)
	second, err := l.NewTurn(domain.SpeakerAssistant, "b", nil)
	require.NoError(t, err)
	require.Equal(t, base, second.CreatedAt)
}

func TestNewTurn_InvalidSpeaker(t *testing.T) {
	l := NewLog()
	_, err := l.NewTurn(domain.Speaker("system"), "x", nil)
	require.Error(t, err)
	require.Zero(t, l.Len())
}

func TestNewTurn_IDsAreUnique(t *testing.T) {
	l := NewLog()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		turn, err := l.NewTurn(domain.SpeakerUser, fmt.Sprint(i), nil)
		require.NoError(t, err)
		require.False(t, seen[turn.ID])
		seen[turn.ID] = true
	}
}

func TestTurns_SnapshotIsDetached(t *testing.T) {
	l := NewLog()
	att := &domain.Attachment{MIMEType: "image/png", Data: "AAAA"}
	_, err := l.NewTurn(domain.SpeakerUser, "look", att)
	require.NoError(t, err)

	att.MIMEType = "image/jpeg"
	snap := l.Turns()
	require.Equal(t, "image/png", snap[0].Attachment.MIMEType)

	snap[0].Text = "changed"
	snap[0].Attachment.Data = "BBBB"
	again := l.Turns()
	require.Equal(t, "look", again[0].Text)
	require.Equal(t, "AAAA", again[0].Attachment.Data)
}

func TestAppend_Validates(t *testing.T) {
	l := NewLog()
	now := time.Now().UTC()

	require.Error(t, l.Append(domain.Turn{Speaker: domain.SpeakerUser}))
	require.Error(t, l.Append(domain.Turn{ID: "a", Speaker: "robot"}))

	require.NoError(t, l.Append(domain.Turn{ID: "a", Speaker: domain.SpeakerUser, CreatedAt: now}))
	require.Error(t, l.Append(domain.Turn{ID: "a", Speaker: domain.SpeakerUser, CreatedAt: now}))
	require.Error(t, l.Append(domain.Turn{ID: "b", Speaker: domain.SpeakerUser, CreatedAt: now.Add(-time.Second)}))
	require.Equal(t, 1, l.Len())
}
