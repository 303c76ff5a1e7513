package domain

import (
	"context"
	"errors"
)

// Content roles understood by the remote model.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrCredentialMissing is returned by a Generator when no API credential is
// configured.
var ErrCredentialMissing = errors.New("model credential is not configured")

// Part is one element of a message: either a text fragment or an inline
// binary payload.
type Part struct {
	Text   string
	Inline *Attachment
}

// Content is a role-tagged sequence of parts.
type Content struct {
	Role  string
	Parts []Part
}

// GenerateRequest is the provider-agnostic request shape built by the
// orchestrator and consumed by model integrations.
type GenerateRequest struct {
	Model             string
	SystemInstruction string
	Temperature       float32
	History           []Content
	Message           []Part
}

// Generator invokes a remote model and returns the parts of its reply in
// order.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Part, error)
}
