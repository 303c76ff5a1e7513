package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dzine-mind/internal/attachment"
	"dzine-mind/internal/conversation"
	"dzine-mind/internal/domain"
)

// FailureReplyText is the assistant turn appended when a model call fails.
// It never carries the underlying cause.
const FailureReplyText = "**SYSTEM ERROR**: Connection to Design Mind™ Intelligence failed. Please verify API configuration."

type Converser interface {
	Converse(ctx context.Context, history []domain.Turn, mode domain.Mode, text string, att *domain.Attachment) (Reply, error)
}

type IncidentRecorder interface {
	RecordIncident(ctx context.Context, incident domain.Incident) error
}

// Outcome describes the turns appended by one accepted submission.
type Outcome struct {
	User   domain.Turn
	Reply  domain.Turn
	Failed bool
}

// State is a point-in-time copy of the session.
type State struct {
	ID        string        `json:"id"`
	Mode      domain.Mode   `json:"mode"`
	Pending   bool          `json:"pending"`
	LastError string        `json:"lastError,omitempty"`
	Turns     []domain.Turn `json:"turns"`
}

// Session owns the conversation log, the active mode and the single
// in-flight request slot.
type Session struct {
	id        string
	conv      Converser
	log       *conversation.Log
	incidents IncidentRecorder
	logger    *slog.Logger

	mu        sync.Mutex
	mode      domain.Mode
	pending   bool
	lastError string
}

type SessionOption func(*Session)

// WithIncidentRecorder records every failed model call.
func WithIncidentRecorder(r IncidentRecorder) SessionOption {
	return func(s *Session) {
		s.incidents = r
	}
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

var newSessionID = func() string {
	return uuid.NewString()
}

func NewSession(conv Converser, opts ...SessionOption) (*Session, error) {
	if conv == nil {
		return nil, errors.New("usecase: converser must not be nil")
	}
	s := &Session{
		id:     newSessionID(),
		conv:   conv,
		log:    conversation.NewLog(),
		logger: slog.Default(),
		mode:   domain.DefaultMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id)
	return s, nil
}

// Submit sends one user message. Empty submissions and submissions while a
// request is pending are rejected with ErrorPrecondition and leave the
// session untouched. Model failures are not returned: they become an
// assistant turn carrying FailureReplyText.
func (s *Session) Submit(ctx context.Context, text string, att *domain.Attachment) (Outcome, error) {
	if strings.TrimSpace(text) == "" && att == nil {
		return Outcome{}, newError(ErrorPrecondition, "empty_submission", nil)
	}
	if att != nil {
		if err := attachment.Validate(*att); err != nil {
			return Outcome{}, newError(ErrorInvalidInput, "invalid_attachment", err)
		}
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return Outcome{}, newError(ErrorPrecondition, "request_pending", nil)
	}
	history := s.log.Turns()
	userTurn, err := s.log.NewTurn(domain.SpeakerUser, text, att)
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, newError(ErrorInternal, "append_user_turn", err)
	}
	s.pending = true
	mode := s.mode
	s.mu.Unlock()

	defer s.settle()

	log := s.logger.With("turn_id", userTurn.ID, "mode", mode)
	log.Info("submission accepted", "has_attachment", att != nil)

	reply, convErr := s.conv.Converse(ctx, history, mode, text, att)
	if convErr != nil {
		return s.fail(ctx, log, userTurn, mode, convErr)
	}

	replyTurn, err := s.log.NewTurn(domain.SpeakerAssistant, reply.Text, reply.Attachment)
	if err != nil {
		return Outcome{}, newError(ErrorInternal, "append_reply_turn", err)
	}

	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()

	log.Info("submission completed", "reply_turn_id", replyTurn.ID, "model", reply.Model)
	return Outcome{User: userTurn, Reply: replyTurn}, nil
}

func (s *Session) fail(ctx context.Context, log *slog.Logger, userTurn domain.Turn, mode domain.Mode, cause error) (Outcome, error) {
	code := CodeOf(cause)
	log.Error("model request failed", "code", code, "error", cause)

	replyTurn, err := s.log.NewTurn(domain.SpeakerAssistant, FailureReplyText, nil)
	if err != nil {
		return Outcome{}, newError(ErrorInternal, "append_failure_turn", err)
	}

	s.mu.Lock()
	s.lastError = cause.Error()
	s.mu.Unlock()

	if s.incidents != nil {
		incident := domain.Incident{
			SessionID:  s.id,
			TurnID:     userTurn.ID,
			Mode:       mode,
			Code:       string(code),
			Cause:      cause.Error(),
			OccurredAt: time.Now().UTC(),
		}
		if err := s.incidents.RecordIncident(context.WithoutCancel(ctx), incident); err != nil {
			log.Warn("failed to record incident", "error", err)
		}
	}

	return Outcome{User: userTurn, Reply: replyTurn, Failed: true}, nil
}

func (s *Session) settle() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
}

// SetMode changes the active mode. It is rejected while a request is
// pending.
func (s *Session) SetMode(m domain.Mode) error {
	if !m.Valid() {
		return newError(ErrorInvalidInput, "unknown_mode", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return newError(ErrorPrecondition, "request_pending", nil)
	}
	s.mode = m
	return nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Mode() domain.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Session) Turns() []domain.Turn {
	return s.log.Turns()
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:        s.id,
		Mode:      s.mode,
		Pending:   s.pending,
		LastError: s.lastError,
		Turns:     s.log.Turns(),
	}
}
