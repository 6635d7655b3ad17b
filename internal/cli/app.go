package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pablasso/lexa/internal/config"
	"github.com/pablasso/lexa/internal/legal"
	"github.com/pablasso/lexa/internal/llm"
	"github.com/pablasso/lexa/internal/logging"
	"github.com/pablasso/lexa/internal/tool"
	"github.com/pablasso/lexa/internal/workflow"
)

// app is everything a command needs, built once from configuration.
type app struct {
	cfg          *config.Config
	logger       *zap.Logger
	registry     *tool.Registry
	orchestrator *workflow.Orchestrator
}

// loadApp reads configuration from the environment and .env files and
// builds the app.
func loadApp() (*app, error) {
	cfg, err := config.Load(envDir)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded",
		zap.String("app_env", cfg.AppEnv),
		zap.Strings("files", cfg.LoadedFiles))

	return newApp(cfg, logger)
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	gen, err := llm.FromConfig(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to configure LLM: %w", err)
	}

	opts := []legal.Option{legal.WithLogger(logger)}
	if gen != nil {
		opts = append(opts, legal.WithGenerator(gen))
		logger.Info("drafting refinement enabled", zap.String("generator", gen.Name()))
	}

	reg := tool.NewRegistry()
	if err := legal.RegisterAll(reg, opts...); err != nil {
		return nil, err
	}
	reg.Freeze()

	o, err := workflow.New(reg,
		workflow.WithLogger(logger),
		workflow.WithStageTimeout(cfg.StageTimeout),
		workflow.WithDocumentType(cfg.DocumentType),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		registry:     reg,
		orchestrator: o,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
