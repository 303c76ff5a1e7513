// Package handler exposes one session over API Gateway proxy events.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"dzine-mind/internal/domain"
	"dzine-mind/internal/modes"
	"dzine-mind/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// SessionService is the session surface the handler drives.
type SessionService interface {
	Submit(ctx context.Context, text string, att *domain.Attachment) (usecase.Outcome, error)
	SetMode(m domain.Mode) error
	Snapshot() usecase.State
}

type Handler struct {
	session SessionService
	logger  *slog.Logger
}

func NewHandler(session SessionService) (*Handler, error) {
	if session == nil {
		return nil, errors.New("handler: session must not be nil")
	}
	return &Handler{session: session, logger: slog.Default()}, nil
}

type submitRequest struct {
	Text       string             `json:"text"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
}

type submitResponse struct {
	Turns  []domain.Turn `json:"turns"`
	Failed bool          `json:"failed"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type modeResponse struct {
	Mode domain.Mode `json:"mode"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

var newCorrelationID = func() string {
	return uuid.NewString()
}

// Handle routes one API Gateway request. Transport errors are always
// expressed as HTTP responses; the returned error is reserved for failures
// the runtime should see.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := headerValue(req.Headers, correlationHeader)
	if corrID == "" {
		corrID = newCorrelationID()
	}
	log := h.logger.With("correlation_id", corrID, "method", req.HTTPMethod, "path", req.Path)

	var resp events.APIGatewayProxyResponse
	switch route(req) {
	case "POST /turns":
		resp = h.submit(ctx, log, req.Body)
	case "GET /turns":
		resp = jsonResponse(http.StatusOK, h.session.Snapshot())
	case "PUT /mode":
		resp = h.setMode(log, req.Body)
	case "GET /modes":
		resp = jsonResponse(http.StatusOK, modes.Descriptors())
	default:
		resp = jsonResponse(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	}

	resp.Headers[correlationHeader] = corrID
	log.Info("request handled", "status", resp.StatusCode)
	return resp, nil
}

func (h *Handler) submit(ctx context.Context, log *slog.Logger, body string) events.APIGatewayProxyResponse {
	var in submitRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_body"})
	}

	out, err := h.session.Submit(ctx, in.Text, in.Attachment)
	if err != nil {
		return errorResult(log, err)
	}
	return jsonResponse(http.StatusOK, submitResponse{
		Turns:  []domain.Turn{out.User, out.Reply},
		Failed: out.Failed,
	})
}

func (h *Handler) setMode(log *slog.Logger, body string) events.APIGatewayProxyResponse {
	var in modeRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_body"})
	}
	m, err := modes.Parse(in.Mode)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "unknown_mode"})
	}
	if err := h.session.SetMode(m); err != nil {
		return errorResult(log, err)
	}
	return jsonResponse(http.StatusOK, modeResponse{Mode: m})
}

func errorResult(log *slog.Logger, err error) events.APIGatewayProxyResponse {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		log.Error("unexpected error", "error", err)
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)})
	}

	status := http.StatusInternalServerError
	switch ue.Code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorPrecondition:
		status = http.StatusBadRequest
		if ue.Reason == "request_pending" {
			status = http.StatusConflict
		}
	case usecase.ErrorConfigurationMissing, usecase.ErrorDeviceUnavailable:
		status = http.StatusServiceUnavailable
	case usecase.ErrorRemoteFailure:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "code", ue.Code, "reason", ue.Reason, "error", err)
	} else {
		log.Warn("request rejected", "code", ue.Code, "reason", ue.Reason)
	}
	return jsonResponse(status, errorResponse{Error: string(ue.Code), Reason: ue.Reason})
}

func route(req events.APIGatewayProxyRequest) string {
	path := strings.TrimRight(req.Path, "/")
	return strings.ToUpper(req.HTTPMethod) + " " + path
}

// headerValue looks a header up case-insensitively.
func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
