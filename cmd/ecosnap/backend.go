package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Akshith040/EcoScan1/internal/completion"
	"github.com/Akshith040/EcoScan1/internal/completion/claude"
	"github.com/Akshith040/EcoScan1/internal/completion/gemini"
	"github.com/Akshith040/EcoScan1/internal/completion/ollama"
	"github.com/Akshith040/EcoScan1/internal/completion/openai"
	"github.com/Akshith040/EcoScan1/internal/config"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

const completionBaseDelay = 500 * time.Millisecond

// newCompletionClient builds the configured backend wrapped in retries and
// rate limiting. The returned func releases the backend's resources.
func newCompletionClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (completion.Client, func(), error) {
	var (
		base    completion.Client
		release = func() {}
	)
	switch cfg.CompletionBackend {
	case config.BackendGemini:
		c, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		base = c
		release = func() {
			if err := c.Close(); err != nil {
				logger.Error("failed to close gemini client", "error", err)
			}
		}
		logger.Info("using Gemini completion backend", "model", cfg.GeminiModel)
	case config.BackendClaude:
		base = claude.New(cfg.ClaudeAPIKey, cfg.ClaudeModel, "")
		logger.Info("using Claude completion backend", "model", cfg.ClaudeModel)
	case config.BackendOpenAI:
		base = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		logger.Info("using OpenAI completion backend", "model", cfg.OpenAIModel, "base_url", cfg.OpenAIBaseURL)
	case config.BackendOllama:
		base = ollama.New(cfg.OllamaHost, cfg.OllamaModel)
		logger.Info("using Ollama completion backend", "host", cfg.OllamaHost, "model", cfg.OllamaModel)
	default:
		return nil, nil, fmt.Errorf("unknown completion backend %q", cfg.CompletionBackend)
	}

	client := completion.WithLimit(
		completion.WithRetry(base, completion.RetryPolicy{
			Attempts:  cfg.CompletionAttempts,
			BaseDelay: completionBaseDelay,
			Timeout:   cfg.CompletionTimeout,
		}, logger),
		completion.LimitPolicy{
			RPS:         cfg.CompletionRPS,
			Burst:       cfg.CompletionMaxInFlight,
			MaxInFlight: cfg.CompletionMaxInFlight,
		},
	)
	return client, release, nil
}

// loadPrompts applies the prompts file, if any, over the built-in prompts.
func loadPrompts(cfg *config.Config) (*waste.Templates, error) {
	overrides, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}
	tmpl, err := waste.DefaultPrompts.With(overrides.Classify, overrides.Instructions).Parse()
	if err != nil {
		return nil, fmt.Errorf("invalid prompts in %s: %w", cfg.PromptsFile, err)
	}
	return tmpl, nil
}

// pipeline is the classifier and instruction generator sharing one client.
type pipeline struct {
	classifier *waste.Classifier
	generator  *waste.InstructionGenerator
	release    func()
}

func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	prompts, err := loadPrompts(cfg)
	if err != nil {
		return nil, err
	}
	client, release, err := newCompletionClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		classifier: waste.NewClassifier(client, prompts.Classify, logger),
		generator:  waste.NewInstructionGenerator(client, prompts.Instructions, logger),
		release:    release,
	}, nil
}
