// Package config loads lexa settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pablasso/lexa/internal/llm"
)

// Environment keys.
const (
	EnvAppEnv       = "APP_ENV"
	EnvLLMProvider  = "LEXA_LLM_PROVIDER"
	EnvLLMModel     = "LEXA_LLM_MODEL"
	EnvLLMBaseURL   = "LEXA_LLM_BASE_URL"
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvStageTimeout = "LEXA_STAGE_TIMEOUT"
	EnvStatusAddr   = "LEXA_STATUS_ADDR"
	EnvDocumentType = "LEXA_DOCUMENT_TYPE"
	EnvLogLevel     = "LEXA_LOG_LEVEL"
	EnvLogFormat    = "LEXA_LOG_FORMAT"
	EnvLogFile      = "LEXA_LOG_FILE"
)

// Defaults.
const (
	DefaultStatusAddr   = ":8000"
	DefaultDocumentType = "legal_notice"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// Config is the resolved configuration.
type Config struct {
	AppEnv       string
	LLM          llm.Config
	StageTimeout time.Duration
	StatusAddr   string
	DocumentType string
	Log          LogConfig

	// LoadedFiles lists the .env files that were read, in order.
	LoadedFiles []string
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads .env and then .env.<APP_ENV> from dir (the working directory
// when dir is empty). Variables already set in the process environment
// win over .env; .env.<APP_ENV> overrides .env. Missing files are fine.
func Load(dir string) (*Config, error) {
	var loaded []string

	base := envPath(dir, ".env")
	if err := godotenv.Load(base); err == nil {
		loaded = append(loaded, base)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", base, err)
	}

	appEnv := os.Getenv(EnvAppEnv)
	if appEnv == "" {
		appEnv = "dev"
	}
	envFile := envPath(dir, ".env."+appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		loaded = append(loaded, envFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.AppEnv = appEnv
	cfg.LoadedFiles = loaded
	return cfg, nil
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv(EnvAppEnv, "dev"),
		LLM: llm.Config{
			Provider: getEnv(EnvLLMProvider, llm.ProviderNone),
			Model:    os.Getenv(EnvLLMModel),
			BaseURL:  os.Getenv(EnvLLMBaseURL),
			APIKey:   firstNonEmpty(os.Getenv(EnvGroqAPIKey), os.Getenv(EnvOpenAIAPIKey)),
		},
		StatusAddr:   getEnv(EnvStatusAddr, DefaultStatusAddr),
		DocumentType: getEnv(EnvDocumentType, DefaultDocumentType),
		Log: LogConfig{
			Level:  getEnv(EnvLogLevel, DefaultLogLevel),
			Format: getEnv(EnvLogFormat, DefaultLogFormat),
			File:   os.Getenv(EnvLogFile),
		},
	}

	if raw := os.Getenv(EnvStageTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvStageTimeout, raw, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid %s %q: must not be negative", EnvStageTimeout, raw)
		}
		cfg.StageTimeout = d
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case llm.ProviderNone, llm.ProviderOpenAI, llm.ProviderOllama, "groq":
	default:
		return nil, fmt.Errorf("invalid %s %q (expected none, openai or ollama)", EnvLLMProvider, cfg.LLM.Provider)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envPath(dir, name string) string {
	return filepath.Join(dir, name)
}
