// Package app wires configuration into a ready session for the process
// entry points.
package app

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"dzine-mind/internal/config"
	"dzine-mind/internal/integrations/gemini"
	"dzine-mind/internal/integrations/paramstore"
	"dzine-mind/internal/repository"
	"dzine-mind/internal/usecase"
)

// Components are the long-lived objects of one process.
type Components struct {
	Session   *usecase.Session
	Incidents *repository.Client // nil when INCIDENT_TABLE is unset
}

// Build creates the session and its collaborators. AWS clients are only
// created when the configuration asks for them.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Components, error) {
	var (
		ssmClient *paramstore.Client
		incidents *repository.Client
	)

	if cfg.NeedsAWS() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		if cfg.GeminiAPIKey == "" && cfg.ParamPrefix != "" {
			ssmClient, err = paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return nil, fmt.Errorf("app: create SSM client: %w", err)
			}
		}
		if cfg.IncidentTable != "" {
			incidents, err = repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.IncidentTable)
			if err != nil {
				return nil, fmt.Errorf("app: create incident log: %w", err)
			}
		}
	}

	opts := []gemini.Option{gemini.WithAPIKey(cfg.GeminiAPIKey)}
	if ssmClient != nil {
		opts = append(opts, gemini.WithParamStore(ssmClient, cfg.APIKeyParam()))
	}
	if cfg.GeminiBaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.GeminiBaseURL))
	}
	gen := gemini.NewClient(opts...)

	orch, err := usecase.NewOrchestrator(gen, usecase.OrchestratorConfig{
		TextModel:         cfg.TextModel,
		ImageModel:        cfg.ImageModel,
		IncludeDirectives: cfg.IncludeDirectives,
		RequestTimeout:    cfg.RequestTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("app: create orchestrator: %w", err)
	}

	sessOpts := []usecase.SessionOption{usecase.WithLogger(logger)}
	if incidents != nil {
		sessOpts = append(sessOpts, usecase.WithIncidentRecorder(incidents))
	}
	sess, err := usecase.NewSession(orch, sessOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: create session: %w", err)
	}

	logger.Info("session ready",
		"session_id", sess.ID(),
		"credential_source", credentialSource(cfg),
		"incident_log", incidents != nil,
	)
	return &Components{Session: sess, Incidents: incidents}, nil
}

func credentialSource(cfg config.Config) string {
	switch {
	case cfg.GeminiAPIKey != "":
		return "env"
	case cfg.ParamPrefix != "":
		return "ssm"
	default:
		return "none"
	}
}
