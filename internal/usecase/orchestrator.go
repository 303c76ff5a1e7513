package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dzine-mind/internal/attachment"
	"dzine-mind/internal/domain"
	"dzine-mind/internal/modes"
)

const defaultRequestTimeout = 60 * time.Second

// Reply is the parsed result of a model call.
type Reply struct {
	Text       string
	Attachment *domain.Attachment
	Model      string
}

// OrchestratorConfig tunes model selection and request composition.
type OrchestratorConfig struct {
	TextModel         string
	ImageModel        string
	IncludeDirectives bool
	RequestTimeout    time.Duration
}

// Orchestrator turns session state into a model request and parses the
// response.
type Orchestrator struct {
	gen    domain.Generator
	cfg    OrchestratorConfig
	logger *slog.Logger
}

func NewOrchestrator(gen domain.Generator, cfg OrchestratorConfig, logger *slog.Logger) (*Orchestrator, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if strings.TrimSpace(cfg.TextModel) == "" {
		cfg.TextModel = DefaultTextModel
	}
	if strings.TrimSpace(cfg.ImageModel) == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{gen: gen, cfg: cfg, logger: logger}, nil
}

// SelectModel picks the model variant for a prompt.
func (o *Orchestrator) SelectModel(text string, hasAttachment bool) string {
	if wantsImageEdit(text, hasAttachment) {
		return o.cfg.ImageModel
	}
	return o.cfg.TextModel
}

// BuildRequest assembles the request Converse would send. history must not
// contain the new turn.
func (o *Orchestrator) BuildRequest(history []domain.Turn, mode domain.Mode, text string, att *domain.Attachment) domain.GenerateRequest {
	return domain.GenerateRequest{
		Model:             o.SelectModel(text, att != nil),
		SystemInstruction: modes.SystemInstruction(),
		Temperature:       samplingTemperature,
		History:           historyToContents(history),
		Message:           composeMessage(mode, text, att, o.cfg.IncludeDirectives),
	}
}

// Converse sends one user message with prior history and returns the parsed
// reply. It never retries.
func (o *Orchestrator) Converse(ctx context.Context, history []domain.Turn, mode domain.Mode, text string, att *domain.Attachment) (Reply, error) {
	if strings.TrimSpace(text) == "" && att == nil {
		return Reply{}, newError(ErrorPrecondition, "empty_submission", nil)
	}
	if !mode.Valid() {
		return Reply{}, newError(ErrorInvalidInput, "unknown_mode", nil)
	}
	if att != nil {
		if err := attachment.Validate(*att); err != nil {
			return Reply{}, newError(ErrorInvalidInput, "invalid_attachment", err)
		}
	}

	req := o.BuildRequest(history, mode, text, att)
	log := o.logger.With("model", req.Model, "mode", mode, "history_len", len(req.History))

	ctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	parts, err := o.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialMissing) {
			return Reply{}, newError(ErrorConfigurationMissing, "credential_missing", err)
		}
		return Reply{}, newError(ErrorRemoteFailure, "generate_failed", err)
	}

	reply, dropped := parseReply(parts)
	reply.Model = req.Model
	if dropped > 0 {
		log.Debug("discarded extra inline parts", "dropped", dropped)
	}
	log.Info("model reply received",
		"parts", len(parts),
		"has_attachment", reply.Attachment != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}
