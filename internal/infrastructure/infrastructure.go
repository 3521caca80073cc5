// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, model runtime, CRM
// credentials) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/tbdc/leadscope/internal/analysis"
	"github.com/tbdc/leadscope/internal/config"
	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/pkg/database"
	"github.com/tbdc/leadscope/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, the model runtime, and CRM token management.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Tokens    *crm.TokenManager
	Runtime   *analysis.BedrockRuntime
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(cfg.Analysis.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config load failed: %w", err)
	}

	runtime := analysis.NewBedrockRuntime(
		bedrockruntime.NewFromConfig(awsCfg),
		&cfg.Analysis,
		logger,
	)

	tokens := crm.NewTokenManager(crm.NewExchanger(&cfg.CRM), &cfg.CRM, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Tokens:    tokens,
		Runtime:   runtime,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Tokens.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("token manager start failed: %w", err)
	}
	return nil
}
